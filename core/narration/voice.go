package narration

import "github.com/voyceradio/voyce-core/core/conversations"

// allowedVoices is the closed set the narration engine accepts for playback.
var allowedVoices = map[string]struct{}{
	"alloy":   {},
	"ash":     {},
	"ballad":  {},
	"coral":   {},
	"echo":    {},
	"sage":    {},
	"shimmer": {},
	"verse":   {},
	"marin":   {},
	"cedar":   {},
}

const defaultVoice = "marin"

// Voice maps a voice preset to the narration engine's playback voice.
func Voice(preset conversations.VoicePreset) string {
	switch conversations.NormalizePreset(string(preset)) {
	case conversations.PresetRadioCanchero:
		return "verse"
	case conversations.PresetPodcastStory:
		return "shimmer"
	}
	return defaultVoice
}

// SanitizeVoice collapses unknown voice names onto the default so a stale
// stored preference can never fail a session negotiation.
func SanitizeVoice(voice string) string {
	if _, ok := allowedVoices[voice]; ok {
		return voice
	}
	return defaultVoice
}
