package narration

import (
	"strings"
	"testing"

	"github.com/voyceradio/voyce-core/core/conversations"
)

var allModes = []conversations.Mode{conversations.ModeConversation, conversations.ModePodcast}

var allPresets = []conversations.VoicePreset{
	conversations.PresetRadioPro,
	conversations.PresetRadioCanchero,
	conversations.PresetPodcastStory,
}

func TestBuildMatrixIsClosedAndDistinct(t *testing.T) {
	seen := map[string]string{}
	for _, mode := range allModes {
		for _, preset := range allPresets {
			key := string(mode) + "/" + string(preset)
			built := Build(mode, preset)
			if built == "" {
				t.Fatalf("expected non-empty instructions for %s", key)
			}
			if prior, dup := seen[built]; dup {
				t.Fatalf("expected distinct instructions, %s equals %s", key, prior)
			}
			seen[built] = key

			if Build(mode, preset) != built {
				t.Fatalf("expected deterministic build for %s", key)
			}
		}
	}
	if len(seen) != 6 {
		t.Fatalf("expected 6 fixed instruction strings, got %d", len(seen))
	}
}

func TestBuildAlwaysCarriesInvariantRules(t *testing.T) {
	for _, mode := range allModes {
		for _, preset := range allPresets {
			built := Build(mode, preset)
			for _, fragment := range []string{
				"NO inventes",
				"Nombrá SIEMPRE el diario",
				SourceQuestion,
			} {
				if !strings.Contains(built, fragment) {
					t.Fatalf("expected %s/%s instructions to contain %q", mode, preset, fragment)
				}
			}
		}
	}
}

func TestBuildModeLayer(t *testing.T) {
	conversational := Build(conversations.ModeConversation, conversations.PresetRadioPro)
	if !strings.Contains(conversational, "UNA sola pregunta concreta") {
		t.Fatalf("expected conversational closing-question rule, got %q", conversational)
	}

	podcast := Build(conversations.ModePodcast, conversations.PresetRadioPro)
	for _, step := range []string{"qué pasó", "contexto", "por qué importa", "qué mirar"} {
		if !strings.Contains(podcast, step) {
			t.Fatalf("expected podcast four-part structure to include %q", step)
		}
	}
}

func TestBuildPresetLayer(t *testing.T) {
	if !strings.Contains(Build(conversations.ModeConversation, conversations.PresetRadioCanchero), "RADIO CANCHERO") {
		t.Fatalf("expected canchero vocabulary layer")
	}
	if !strings.Contains(Build(conversations.ModeConversation, conversations.PresetPodcastStory), "PODCAST STORY") {
		t.Fatalf("expected story vocabulary layer")
	}
}

func TestBuildNormalizesUnknownValues(t *testing.T) {
	unknown := Build(conversations.Mode("whatever"), conversations.VoicePreset("nope"))
	standard := Build(conversations.ModeConversation, conversations.PresetRadioPro)
	if unknown != standard {
		t.Fatalf("expected unknown values to collapse to the defaults")
	}
}

func TestHeadlinesPerRead(t *testing.T) {
	if got := HeadlinesPerRead(conversations.ModePodcast); got != 7 {
		t.Fatalf("expected 7 in podcast mode, got %d", got)
	}
	if got := HeadlinesPerRead(conversations.ModeConversation); got != 5 {
		t.Fatalf("expected 5 in conversational mode, got %d", got)
	}
}

func TestExpansionSeconds(t *testing.T) {
	if min, max := ExpansionSeconds(conversations.ModePodcast); min != 60 || max != 120 {
		t.Fatalf("expected 60-120s in podcast mode, got %d-%d", min, max)
	}
	if min, max := ExpansionSeconds(conversations.ModeConversation); min != 30 || max != 60 {
		t.Fatalf("expected 30-60s in conversational mode, got %d-%d", min, max)
	}
}

func TestPromptsReferenceTheStandingQuestionVerbatim(t *testing.T) {
	for name, prompt := range map[string]string{
		"opening":         OpeningPrompt(false),
		"source question": SourceQuestionPrompt(),
		"refresh done":    RefreshDonePrompt(),
	} {
		if !strings.Contains(prompt, SourceQuestion) {
			t.Fatalf("expected %s prompt to carry the standing question verbatim, got %q", name, prompt)
		}
	}
}

func TestOpeningPromptGreetsOnlyWhenAsked(t *testing.T) {
	if !strings.Contains(OpeningPrompt(true), "Saludá UNA sola vez") {
		t.Fatalf("expected first-turn opening to greet once")
	}
	if !strings.HasPrefix(OpeningPrompt(false), "Sin saludar.") {
		t.Fatalf("expected later openings to skip the greeting")
	}
}

func TestNoHeadlinesPromptOffersRefreshWithoutSourceQuestion(t *testing.T) {
	prompt := NoHeadlinesPrompt()
	if !strings.Contains(prompt, "actualizar") {
		t.Fatalf("expected the empty-corpus prompt to offer a refresh, got %q", prompt)
	}
	if strings.Contains(prompt, SourceQuestion) {
		t.Fatalf("expected no source question on the empty-corpus branch, got %q", prompt)
	}
}

func TestVoiceMapping(t *testing.T) {
	if got := Voice(conversations.PresetRadioPro); got != "marin" {
		t.Fatalf("expected marin for radio_pro, got %q", got)
	}
	if got := Voice(conversations.PresetRadioCanchero); got != "verse" {
		t.Fatalf("expected verse for radio_canchero, got %q", got)
	}
	if got := Voice(conversations.PresetPodcastStory); got != "shimmer" {
		t.Fatalf("expected shimmer for podcast_story, got %q", got)
	}
}

func TestSanitizeVoice(t *testing.T) {
	if got := SanitizeVoice("verse"); got != "verse" {
		t.Fatalf("expected allowed voice to pass through, got %q", got)
	}
	if got := SanitizeVoice("robotron-9000"); got != "marin" {
		t.Fatalf("expected unknown voice to collapse to the default, got %q", got)
	}
	if got := SanitizeVoice(""); got != "marin" {
		t.Fatalf("expected empty voice to collapse to the default, got %q", got)
	}
}
