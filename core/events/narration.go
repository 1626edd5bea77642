package events

const (
	// KindNarrationRequested identifies an issued narration request.
	KindNarrationRequested Kind = "narration.requested"
	// KindNarrationAudioFrame identifies a synthesized narration audio frame.
	KindNarrationAudioFrame Kind = "narration.audio_frame"
	// KindNarrationCompleted identifies the end of the in-flight narration.
	KindNarrationCompleted Kind = "narration.completed"
)

// NarrationRequested marks the engine issuing a narration request.
type NarrationRequested struct {
	Base
	Instructions string
}

// NewNarrationRequested creates a narration requested event.
func NewNarrationRequested(instructions string) NarrationRequested {
	return NarrationRequested{Base: NewBase(KindNarrationRequested), Instructions: instructions}
}

// NarrationAudioFrame carries one synthesized audio frame.
type NarrationAudioFrame struct {
	Base
	Audio []byte
}

// NewNarrationAudioFrame creates a narration audio frame event.
func NewNarrationAudioFrame(audio []byte) NarrationAudioFrame {
	return NarrationAudioFrame{Base: NewBase(KindNarrationAudioFrame), Audio: audio}
}

// NarrationCompleted marks the in-flight narration finishing. Transcript is
// the narrator-side transcript of what was actually spoken, when the
// transport reports one.
type NarrationCompleted struct {
	Base
	Transcript string
}

// NewNarrationCompleted creates a narration completed event.
func NewNarrationCompleted(transcript string) NarrationCompleted {
	return NarrationCompleted{Base: NewBase(KindNarrationCompleted), Transcript: transcript}
}
