// Package conversations holds the durable per-conversation state document and
// the per-user narration preferences, plus the stores that persist them.
//
// A conversation's state survives across stateless request/response cycles so
// that "la 2" resolves against the exact list the narrator last read out.
package conversations

type Mode string

const (
	ModeConversation Mode = "conversacion"
	ModePodcast      Mode = "podcast"
)

type VoicePreset string

const (
	PresetRadioPro      VoicePreset = "radio_pro"
	PresetRadioCanchero VoicePreset = "radio_canchero"
	PresetPodcastStory  VoicePreset = "podcast_story"
)

const (
	DefaultVoiceSpeed = 1.15
	MinVoiceSpeed     = 0.25
	MaxVoiceSpeed     = 1.5
)

// HeadlineRef is the minimal durable reference to a headline that was read
// out to the user. Index position within LastHeadlines is what an ordinal
// pick resolves against.
type HeadlineRef struct {
	ID     int64  `json:"id"`
	Source string `json:"source"`
	Title  string `json:"title"`
}

// State is the per-conversation state document.
//
// Sources nil means "mixed / no single source selected". The document is
// owned exclusively by its conversation and mutated only through merge
// patches.
type State struct {
	ConversationID string        `json:"conversationId"`
	Sources        []string      `json:"sources"`
	LastHeadlines  []HeadlineRef `json:"lastHeadlines"`
	Mode           Mode          `json:"mode"`
	VoicePreset    VoicePreset   `json:"voicePreset"`
}

// ChosenSource returns the single active source, or "" when mixed.
func (s State) ChosenSource() string {
	if len(s.Sources) == 0 {
		return ""
	}
	return s.Sources[0]
}

// Preference is the per-user narration preference. It seeds a new
// conversation's mode and preset on the first turn and outlives any single
// conversation.
type Preference struct {
	UserID      string      `json:"userId"`
	Mode        Mode        `json:"mode"`
	VoicePreset VoicePreset `json:"voicePreset"`
	VoiceSpeed  float64     `json:"voiceSpeed"`
	AutoListen  bool        `json:"autoListen"`
}

// DefaultPreference is what a user without a stored preference row gets.
func DefaultPreference(userID string) Preference {
	return Preference{
		UserID:      userID,
		Mode:        ModeConversation,
		VoicePreset: PresetRadioPro,
		VoiceSpeed:  DefaultVoiceSpeed,
		AutoListen:  true,
	}
}

// NewState creates a conversation state seeded from a user preference.
func NewState(conversationID string, pref Preference) State {
	return State{
		ConversationID: conversationID,
		Mode:           NormalizeMode(string(pref.Mode)),
		VoicePreset:    NormalizePreset(string(pref.VoicePreset)),
	}
}

// NormalizeMode folds any stored or spoken mode value into the closed set.
// Unknown values collapse to conversación, matching the standing default.
func NormalizeMode(v string) Mode {
	if Mode(v) == ModePodcast {
		return ModePodcast
	}
	return ModeConversation
}

// NormalizePreset folds any stored value into the closed preset set.
func NormalizePreset(v string) VoicePreset {
	switch VoicePreset(v) {
	case PresetRadioCanchero:
		return PresetRadioCanchero
	case PresetPodcastStory:
		return PresetPodcastStory
	}
	return PresetRadioPro
}

// ClampSpeed bounds a playback speed to what the narration engine accepts.
// Non-finite or zero values fall back to the default.
func ClampSpeed(speed float64) float64 {
	if speed != speed || speed == 0 { // NaN or unset
		return DefaultVoiceSpeed
	}
	if speed < MinVoiceSpeed {
		return MinVoiceSpeed
	}
	if speed > MaxVoiceSpeed {
		return MaxVoiceSpeed
	}
	return speed
}
