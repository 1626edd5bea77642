package intents

import (
	"testing"

	"github.com/voyceradio/voyce-core/core/conversations"
)

func TestResolveSourceAliases(t *testing.T) {
	testCases := []struct {
		utterance string
		expected  string
	}{
		{utterance: "dame los titulares de La Nación", expected: "La Nación"},
		{utterance: "la nacion por favor", expected: "La Nación"},
		{utterance: "quiero nación", expected: "La Nación"},
		{utterance: "Clarín", expected: "Clarín"},
		{utterance: "dame clarin", expected: "Clarín"},
		{utterance: "qué dice Ámbito hoy", expected: "Ámbito"},
		{utterance: "ambito financiero", expected: "Ámbito"},
		{utterance: "el cronista", expected: "El Cronista"},
		{utterance: "CRONISTA", expected: "El Cronista"},
		{utterance: "infobae", expected: "Infobae"},
		{utterance: "página 12", expected: "Página 12"},
		{utterance: "pagina12", expected: "Página 12"},
		{utterance: "dame p12", expected: "Página 12"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.utterance, func(t *testing.T) {
			intent := Resolve(testCase.utterance)
			pick, ok := intent.(PickSource)
			if !ok {
				t.Fatalf("expected PickSource, got %T", intent)
			}
			if pick.Source != testCase.expected {
				t.Fatalf("expected canonical source %q, got %q", testCase.expected, pick.Source)
			}
		})
	}
}

func TestResolveReturnsAtMostOneSource(t *testing.T) {
	// Two papers in one utterance: the alias-table order decides.
	intent := Resolve("dame clarin o infobae, lo que sea")
	pick, ok := intent.(PickSource)
	if !ok {
		t.Fatalf("expected PickSource, got %T", intent)
	}
	if pick.Source != "Clarín" {
		t.Fatalf("expected first table hit Clarín, got %q", pick.Source)
	}
}

func TestResolveChangeSourceBeatsSourceName(t *testing.T) {
	intent := Resolve("no me gusta Clarín, probemos otro")
	if _, ok := intent.(ChangeSource); !ok {
		t.Fatalf("expected ChangeSource, got %T", intent)
	}
}

func TestResolveTopOnlyWithoutSource(t *testing.T) {
	intent := Resolve("dame las principales")
	if _, ok := intent.(TopWithoutSource); !ok {
		t.Fatalf("expected TopWithoutSource, got %T", intent)
	}

	// A named source wins over the "principales" phrasing.
	intent = Resolve("dame las principales de Clarín")
	pick, ok := intent.(PickSource)
	if !ok {
		t.Fatalf("expected PickSource, got %T", intent)
	}
	if pick.Source != "Clarín" {
		t.Fatalf("expected Clarín, got %q", pick.Source)
	}
}

func TestResolveRefresh(t *testing.T) {
	for _, utterance := range []string{
		"actualizá", "refrescá las noticias", "recargá", "quiero nuevas noticias",
		"podés actualizar", "actualizame las noticias", "refrescame los titulares",
	} {
		if _, ok := Resolve(utterance).(Refresh); !ok {
			t.Fatalf("expected %q to resolve to Refresh, got %T", utterance, Resolve(utterance))
		}
	}
}

func TestResolveOrdinalPick(t *testing.T) {
	intent := Resolve("la 2")
	pick, ok := intent.(PickItem)
	if !ok {
		t.Fatalf("expected PickItem, got %T", intent)
	}
	if pick.Index == nil || *pick.Index != 1 {
		t.Fatalf("expected zero-based index 1, got %v", pick.Index)
	}
	if pick.ID != nil {
		t.Fatalf("expected no id, got %v", *pick.ID)
	}
}

func TestResolveOrdinalOutOfRange(t *testing.T) {
	if intent := Resolve("la 25"); intent != nil {
		t.Fatalf("expected ordinal out of range to resolve to nil, got %T", intent)
	}
	if intent := Resolve("el 0 me interesa"); intent != nil {
		t.Fatalf("expected ordinal 0 to resolve to nil, got %T", intent)
	}

	intent := Resolve("titular 20")
	pick, ok := intent.(PickItem)
	if !ok {
		t.Fatalf("expected PickItem for upper bound, got %T", intent)
	}
	if pick.Index == nil || *pick.Index != 19 {
		t.Fatalf("expected index 19, got %v", pick.Index)
	}
}

func TestResolveExplicitID(t *testing.T) {
	for _, utterance := range []string{"id 123", "id: 123", "id #123"} {
		intent := Resolve(utterance)
		pick, ok := intent.(PickItem)
		if !ok {
			t.Fatalf("expected PickItem for %q, got %T", utterance, intent)
		}
		if pick.ID == nil || *pick.ID != 123 {
			t.Fatalf("expected id 123 for %q, got %v", utterance, pick.ID)
		}
	}
}

func TestResolveExplicitIDWinsOverLaterOrdinal(t *testing.T) {
	intent := Resolve("id 123, la 2 no")
	pick, ok := intent.(PickItem)
	if !ok {
		t.Fatalf("expected PickItem, got %T", intent)
	}
	if pick.ID == nil || *pick.ID != 123 {
		t.Fatalf("expected explicit id to win, got id=%v index=%v", pick.ID, pick.Index)
	}
}

func TestResolveOrdinalWinsWhenItComesFirst(t *testing.T) {
	intent := Resolve("la 2, o el id 123")
	pick, ok := intent.(PickItem)
	if !ok {
		t.Fatalf("expected PickItem, got %T", intent)
	}
	if pick.Index == nil || *pick.Index != 1 {
		t.Fatalf("expected the leading ordinal to win, got id=%v index=%v", pick.ID, pick.Index)
	}
}

func TestResolveSetMode(t *testing.T) {
	intent := Resolve("pasá a modo podcast")
	mode, ok := intent.(SetMode)
	if !ok {
		t.Fatalf("expected SetMode, got %T", intent)
	}
	if mode.Mode != conversations.ModePodcast {
		t.Fatalf("expected podcast mode, got %q", mode.Mode)
	}

	intent = Resolve("volvé al modo conversación")
	mode, ok = intent.(SetMode)
	if !ok {
		t.Fatalf("expected SetMode, got %T", intent)
	}
	if mode.Mode != conversations.ModeConversation {
		t.Fatalf("expected conversation mode, got %q", mode.Mode)
	}
}

func TestResolveSetVoicePreset(t *testing.T) {
	testCases := []struct {
		utterance string
		expected  conversations.VoicePreset
	}{
		{utterance: "voz pro", expected: conversations.PresetRadioPro},
		{utterance: "estilo canchero", expected: conversations.PresetRadioCanchero},
		{utterance: "modo narrativo", expected: conversations.PresetPodcastStory},
	}
	for _, testCase := range testCases {
		intent := Resolve(testCase.utterance)
		preset, ok := intent.(SetVoicePreset)
		if !ok {
			t.Fatalf("expected SetVoicePreset for %q, got %T", testCase.utterance, intent)
		}
		if preset.Preset != testCase.expected {
			t.Fatalf("expected preset %q for %q, got %q", testCase.expected, testCase.utterance, preset.Preset)
		}
	}
}

func TestResolveUnrecognized(t *testing.T) {
	for _, utterance := range []string{"", "   ", "qué lindo día", "contame un chiste"} {
		if intent := Resolve(utterance); intent != nil {
			t.Fatalf("expected %q to resolve to nil, got %T", utterance, intent)
		}
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	utterance := "dame las principales de página 12"
	first := Resolve(utterance)
	for i := 0; i < 10; i++ {
		if Resolve(utterance) != first {
			t.Fatalf("expected identical resolution on every run")
		}
	}
}
