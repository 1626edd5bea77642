package conversations

import "encoding/json"

// Field is a merge-patch field. An unset field leaves the prior value
// untouched; a set field overwrites it, including overwriting with the zero
// value. For the nilable fields (Sources, LastHeadlines) setting a nil value
// is the explicit "clear" that the merge semantics require.
type Field[T any] struct {
	set   bool
	value T
}

// Set marks the field as present with the given value.
func Set[T any](value T) Field[T] {
	return Field[T]{set: true, value: value}
}

func (f Field[T]) IsSet() bool { return f.set }
func (f Field[T]) Value() T    { return f.value }

// StatePatch is a merge patch over State. Only set fields are applied;
// null is a valid explicit value and is distinct from "field absent".
type StatePatch struct {
	Sources       Field[[]string]
	LastHeadlines Field[[]HeadlineRef]
	Mode          Field[Mode]
	VoicePreset   Field[VoicePreset]
}

// IsZero reports whether the patch carries no fields at all.
func (p StatePatch) IsZero() bool {
	return !p.Sources.set && !p.LastHeadlines.set && !p.Mode.set && !p.VoicePreset.set
}

// ApplyTo merges the patch into a state document in place.
func (p StatePatch) ApplyTo(s *State) {
	if p.Sources.set {
		s.Sources = p.Sources.value
	}
	if p.LastHeadlines.set {
		s.LastHeadlines = p.LastHeadlines.value
	}
	if p.Mode.set {
		s.Mode = p.Mode.value
	}
	if p.VoicePreset.set {
		s.VoicePreset = p.VoicePreset.value
	}
}

// Merge combines two patches into one; fields of b win over fields of a.
// For disjoint patches this is exactly "apply a then b".
func Merge(a, b StatePatch) StatePatch {
	merged := a
	if b.Sources.set {
		merged.Sources = b.Sources
	}
	if b.LastHeadlines.set {
		merged.LastHeadlines = b.LastHeadlines
	}
	if b.Mode.set {
		merged.Mode = b.Mode
	}
	if b.VoicePreset.set {
		merged.VoicePreset = b.VoicePreset
	}
	return merged
}

// MarshalJSON encodes only the set fields, emitting JSON null for a set-nil
// slice field. This is the wire shape the Postgres store concatenates onto
// the stored jsonb document.
func (p StatePatch) MarshalJSON() ([]byte, error) {
	doc := map[string]any{}
	if p.Sources.set {
		doc["sources"] = p.Sources.value
	}
	if p.LastHeadlines.set {
		doc["lastHeadlines"] = p.LastHeadlines.value
	}
	if p.Mode.set {
		doc["mode"] = p.Mode.value
	}
	if p.VoicePreset.set {
		doc["voicePreset"] = p.VoicePreset.value
	}
	return json.Marshal(doc)
}
