// Package realtime defines the contracts between the orchestrator and the
// bidirectional media/control session it drives: credential minting, the
// session transport, and the outbound audio track abstraction.
package realtime

import (
	"context"
	"time"

	"github.com/voyceradio/voyce-core/core/audio"
	"github.com/voyceradio/voyce-core/core/events"
)

// Credential is the short-lived secret minted for one Connecting transition.
type Credential struct {
	Value     string
	ExpiresAt time.Time
}

// CredentialSource mints session credentials. Used exactly once per
// connection attempt; a mint failure aborts the attempt.
type CredentialSource interface {
	Mint(ctx context.Context, voice string, speed float64) (*Credential, error)
}

// AudioTrack is an outbound audio feed. Exactly one track feeds a live
// session at any moment: either the real microphone capture or the silence
// generator.
type AudioTrack interface {
	EncodingInfo() audio.EncodingInfo
	// Stream starts delivering frames to onAudio until ctx is cancelled.
	Stream(ctx context.Context, onAudio func(audio []byte)) error
	Close()
}

// Session is one live media+control session.
//
// Control-channel calls are delivered in strict program order: a context
// injection issued before a narration request is guaranteed to reach the
// narration engine first.
type Session interface {
	// ID is the session identity; stable for the session's whole life,
	// including across mute toggles.
	ID() string

	// UpdateInstructions replaces the standing session instruction set.
	UpdateInstructions(ctx context.Context, instructions string) error
	// InjectContext adds a system context block the narrator may use.
	InjectContext(ctx context.Context, text string) error
	// RequestNarration asks for one spoken response guided by the prompt.
	RequestNarration(ctx context.Context, prompt string) error
	// CancelNarration cancels the in-flight narration, if any.
	CancelNarration(ctx context.Context) error

	// ReplaceTrack swaps the outbound audio feed without renegotiating.
	ReplaceTrack(track AudioTrack) error

	Close() error
}

// SessionConfig carries the parameters negotiated when a session opens.
type SessionConfig struct {
	Instructions string
	Voice        string
	Speed        float64
	Encoding     audio.EncodingInfo

	// OnEvent receives every control event the transport emits. It is
	// invoked from the transport's reader goroutine and must not block.
	OnEvent func(events.Event)
}

type SessionOption func(*SessionConfig)

func WithInstructions(instructions string) SessionOption {
	return func(c *SessionConfig) { c.Instructions = instructions }
}

func WithVoice(voice string) SessionOption {
	return func(c *SessionConfig) { c.Voice = voice }
}

func WithSpeed(speed float64) SessionOption {
	return func(c *SessionConfig) { c.Speed = speed }
}

func WithEncodingInfo(encoding audio.EncodingInfo) SessionOption {
	return func(c *SessionConfig) { c.Encoding = encoding }
}

func WithEventCallback(onEvent func(events.Event)) SessionOption {
	return func(c *SessionConfig) { c.OnEvent = onEvent }
}

// Transport establishes live sessions against the narration engine.
type Transport interface {
	Connect(ctx context.Context, credential Credential, opts ...SessionOption) (Session, error)
}
