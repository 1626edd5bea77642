package conversations

import (
	"encoding/json"
	"testing"
)

func baseState() State {
	return State{
		ConversationID: "conv-1",
		Sources:        []string{"Clarín"},
		LastHeadlines:  []HeadlineRef{{ID: 1, Source: "Clarín", Title: "a"}},
		Mode:           ModeConversation,
		VoicePreset:    PresetRadioPro,
	}
}

func TestPatchAbsentFieldLeavesValueUntouched(t *testing.T) {
	state := baseState()
	patch := StatePatch{Mode: Set(ModePodcast)}
	patch.ApplyTo(&state)

	if state.Mode != ModePodcast {
		t.Fatalf("expected mode podcast, got %q", state.Mode)
	}
	if state.ChosenSource() != "Clarín" {
		t.Fatalf("expected absent sources field to leave value untouched, got %v", state.Sources)
	}
	if len(state.LastHeadlines) != 1 {
		t.Fatalf("expected lastHeadlines untouched, got %v", state.LastHeadlines)
	}
}

func TestPatchExplicitNullClearsField(t *testing.T) {
	state := baseState()
	patch := StatePatch{
		Sources:       Set[[]string](nil),
		LastHeadlines: Set[[]HeadlineRef](nil),
	}
	patch.ApplyTo(&state)

	if state.Sources != nil {
		t.Fatalf("expected sources cleared, got %v", state.Sources)
	}
	if state.LastHeadlines != nil {
		t.Fatalf("expected lastHeadlines cleared, got %v", state.LastHeadlines)
	}
	if state.Mode != ModeConversation {
		t.Fatalf("expected mode untouched, got %q", state.Mode)
	}
}

func TestPatchSequenceEqualsMergedPatch(t *testing.T) {
	a := StatePatch{Sources: Set([]string{"Infobae"})}
	b := StatePatch{Mode: Set(ModePodcast)}

	sequential := baseState()
	a.ApplyTo(&sequential)
	b.ApplyTo(&sequential)

	merged := baseState()
	Merge(a, b).ApplyTo(&merged)

	if sequential.Mode != merged.Mode || sequential.ChosenSource() != merged.ChosenSource() {
		t.Fatalf("expected sequential and merged application to agree, got %+v vs %+v", sequential, merged)
	}
}

func TestPatchIsIdempotent(t *testing.T) {
	patch := StatePatch{
		Sources:     Set([]string{"Ámbito"}),
		Mode:        Set(ModePodcast),
		VoicePreset: Set(PresetPodcastStory),
	}

	once := baseState()
	patch.ApplyTo(&once)

	twice := baseState()
	patch.ApplyTo(&twice)
	patch.ApplyTo(&twice)

	if once.ChosenSource() != twice.ChosenSource() || once.Mode != twice.Mode || once.VoicePreset != twice.VoicePreset {
		t.Fatalf("expected idempotent application, got %+v vs %+v", once, twice)
	}
}

func TestPatchLaterFieldWinsInMerge(t *testing.T) {
	a := StatePatch{Sources: Set([]string{"Clarín"})}
	b := StatePatch{Sources: Set[[]string](nil)}

	merged := Merge(a, b)
	state := baseState()
	merged.ApplyTo(&state)

	if state.Sources != nil {
		t.Fatalf("expected later patch's clear to win, got %v", state.Sources)
	}
}

func TestPatchMarshalOnlySetFields(t *testing.T) {
	patch := StatePatch{Mode: Set(ModePodcast)}

	raw, err := json.Marshal(patch)
	if err != nil {
		t.Fatalf("expected marshal to succeed, got %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("expected valid JSON, got %v", err)
	}
	if len(doc) != 1 {
		t.Fatalf("expected exactly one key, got %v", doc)
	}
	if doc["mode"] != "podcast" {
		t.Fatalf("expected mode key, got %v", doc)
	}
}

func TestPatchMarshalEmitsNullForClearedField(t *testing.T) {
	patch := StatePatch{Sources: Set[[]string](nil)}

	raw, err := json.Marshal(patch)
	if err != nil {
		t.Fatalf("expected marshal to succeed, got %v", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("expected valid JSON, got %v", err)
	}
	value, ok := doc["sources"]
	if !ok {
		t.Fatalf("expected sources key present, got %s", raw)
	}
	if string(value) != "null" {
		t.Fatalf("expected explicit null, got %s", value)
	}
}

func TestPatchIsZero(t *testing.T) {
	if !(StatePatch{}).IsZero() {
		t.Fatalf("expected empty patch to be zero")
	}
	if (StatePatch{Sources: Set[[]string](nil)}).IsZero() {
		t.Fatalf("expected a set-nil field to make the patch non-zero")
	}
}
