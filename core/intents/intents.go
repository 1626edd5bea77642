// Package intents classifies a transcribed utterance into at most one
// discrete command. Resolution is pure and deterministic: rules are evaluated
// top to bottom and the first match wins, so precedence between overlapping
// phrasings ("los principales de Clarín") is fixed by table order, not by
// regex luck.
package intents

import "github.com/voyceradio/voyce-core/core/conversations"

// Intent is one recognized command. Resolve returns nil when the utterance
// matches nothing, which callers treat as "let the current narration run".
type Intent interface {
	isIntent()
}

// ChangeSource rejects the current source selection ("otro diario",
// "ninguno") and sends the flow back to the standing source question.
type ChangeSource struct{}

// PickSource names one of the six fixed papers. Source is always the
// canonical name, never the surface form the user spoke.
type PickSource struct {
	Source string
}

// TopWithoutSource asks for the most important headlines without naming a
// paper.
type TopWithoutSource struct{}

// Refresh asks for the corpus to be re-ingested and re-read.
type Refresh struct{}

// PickItem selects a headline either by ordinal position in the last list
// read out (Index, zero-based) or by explicit id.
type PickItem struct {
	Index *int
	ID    *int64
}

// SetMode switches between conversational and podcast narration.
type SetMode struct {
	Mode conversations.Mode
}

// SetVoicePreset switches the narrator's voice styling.
type SetVoicePreset struct {
	Preset conversations.VoicePreset
}

func (ChangeSource) isIntent()     {}
func (PickSource) isIntent()       {}
func (TopWithoutSource) isIntent() {}
func (Refresh) isIntent()          {}
func (PickItem) isIntent()         {}
func (SetMode) isIntent()          {}
func (SetVoicePreset) isIntent()   {}
