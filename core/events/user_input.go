package events

const (
	// KindUserTranscriptFinal identifies one complete transcribed utterance.
	KindUserTranscriptFinal Kind = "user_input.transcript_final"
)

// UserTranscriptFinal carries one complete transcribed utterance. The
// transport's own transcription produces it; the engine never sees raw user
// audio.
type UserTranscriptFinal struct {
	Base
	Transcript string
}

// NewUserTranscriptFinal creates a final transcript event.
func NewUserTranscriptFinal(transcript string) UserTranscriptFinal {
	return UserTranscriptFinal{Base: NewBase(KindUserTranscriptFinal), Transcript: transcript}
}
