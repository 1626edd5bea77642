package orchestration

import (
	"time"

	"github.com/voyceradio/voyce-core/core/conversations"
	"github.com/voyceradio/voyce-core/core/headlines"
	"github.com/voyceradio/voyce-core/core/realtime"
)

type OrchestratorOption func(*Orchestrator)

func WithTransport(client realtime.Transport) OrchestratorOption {
	return func(o *Orchestrator) { o.transport = client }
}

func WithCredentialSource(client realtime.CredentialSource) OrchestratorOption {
	return func(o *Orchestrator) { o.credentials = client }
}

func WithHeadlineSource(client headlines.Source) OrchestratorOption {
	return func(o *Orchestrator) { o.corpus.set(client) }
}

func WithStore(client conversations.Store) OrchestratorOption {
	return func(o *Orchestrator) { o.store.set(client) }
}

func WithMicrophone(track realtime.AudioTrack) OrchestratorOption {
	return func(o *Orchestrator) { o.audio.setMicrophone(track) }
}

// WithMicrophoneSource lets the microphone track be acquired lazily, on
// first unmuted use.
func WithMicrophoneSource(factory func() (realtime.AudioTrack, error)) OrchestratorOption {
	return func(o *Orchestrator) { o.audio.setMicrophoneFactory(factory) }
}

func WithUserID(userID string) OrchestratorOption {
	return func(o *Orchestrator) { o.userID = userID }
}

func WithConversationID(conversationID string) OrchestratorOption {
	return func(o *Orchestrator) { o.conversationID = conversationID }
}

// WithClock overrides the time source used for day windowing.
func WithClock(clock func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) { o.clock = clock }
}

type StartOptions struct {
	onUserTranscript     func(transcript string)
	onNarrationAudio     func(audio []byte)
	onNarrationCompleted func(transcript string)
	onSessionError       func(code, message string)
}

type StartOption func(*StartOptions)

func OnUserTranscript(callback func(transcript string)) StartOption {
	return func(o *StartOptions) { o.onUserTranscript = callback }
}

func OnNarrationAudio(callback func(audio []byte)) StartOption {
	return func(o *StartOptions) { o.onNarrationAudio = callback }
}

func OnNarrationCompleted(callback func(transcript string)) StartOption {
	return func(o *StartOptions) { o.onNarrationCompleted = callback }
}

func OnSessionError(callback func(code, message string)) StartOption {
	return func(o *StartOptions) { o.onSessionError = callback }
}
