// Package orchestration drives the live dialogue between a listener and the
// news narrator: it owns the session state machine, runs the intent resolver
// over final transcripts, decides what context the narrator is allowed to
// see, and keeps the conversation state document in sync.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"go.opentelemetry.io/otel/codes"

	"github.com/voyceradio/voyce-core/core/conversations"
	"github.com/voyceradio/voyce-core/core/events"
	"github.com/voyceradio/voyce-core/core/headlines"
	"github.com/voyceradio/voyce-core/core/intents"
	"github.com/voyceradio/voyce-core/core/narration"
	"github.com/voyceradio/voyce-core/core/realtime"
)

// State is the orchestrator's lifecycle state. Muted is orthogonal and
// reported separately through IsMuted.
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateLive       State = "live"
)

var (
	ErrNoTransport     = errors.New("no session transport configured")
	ErrNoCredentials   = errors.New("no credential source configured")
	ErrSessionActive   = errors.New("a session is already active")
	ErrNoActiveSession = errors.New("no active session")
)

// globalGreeting is the app-session greeting latch: the narrator greets on
// the very first opening turn of the whole process and never again.
var globalGreeting greetingLatch

type greetingLatch struct {
	mu      sync.Mutex
	claimed bool
}

// claim reports whether the caller won the first-turn greeting.
func (g *greetingLatch) claim() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.claimed {
		return false
	}
	g.claimed = true
	return true
}

type Orchestrator struct {
	transport   realtime.Transport
	credentials realtime.CredentialSource
	corpus      corpusSource
	store       stateStore
	audio       audioSource

	clock          func() time.Time
	userID         string
	conversationID string
	greeter        *greetingLatch

	mu           sync.Mutex
	state        State
	session      realtime.Session
	runtime      *sessionRuntime
	baseContext  context.Context
	startOptions StartOptions

	convState  conversations.State
	preference conversations.Preference
	ranked     []headlines.Headline
	transcript []string
}

func NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		clock:          time.Now,
		conversationID: uuid.NewString(),
		greeter:        &globalGreeting,
		state:          StateIdle,
		baseContext:    context.Background(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start takes the engine Idle → Connecting → Live. Any failure while
// Connecting aborts back to Idle with a single error; no partial Live state
// is ever observable.
func (o *Orchestrator) Start(ctx context.Context, opts ...StartOption) error {
	ctx, span := tracer.Start(ctx, "orchestration.start")
	defer span.End()

	o.mu.Lock()
	if o.state != StateIdle {
		o.mu.Unlock()
		return ErrSessionActive
	}
	o.state = StateConnecting
	o.startOptions = StartOptions{}
	for _, opt := range opts {
		opt(&o.startOptions)
	}
	o.mu.Unlock()

	if err := o.connect(ctx); err != nil {
		o.mu.Lock()
		o.state = StateIdle
		o.session = nil
		o.runtime = nil
		o.mu.Unlock()

		span.RecordError(err)
		span.SetStatus(codes.Error, "connection attempt failed")
		return err
	}
	return nil
}

func (o *Orchestrator) connect(ctx context.Context) error {
	if o.transport == nil {
		return ErrNoTransport
	}
	if o.credentials == nil {
		return ErrNoCredentials
	}

	pref := o.store.loadPreference(ctx, o.userID)
	state := o.store.loadState(ctx, o.conversationID)
	if state == nil {
		fresh := conversations.NewState(o.conversationID, pref)
		state = &fresh
	}

	voice := narration.Voice(state.VoicePreset)
	speed := conversations.ClampSpeed(pref.VoiceSpeed)

	credential, err := o.credentials.Mint(ctx, voice, speed)
	if err != nil {
		return fmt.Errorf("failed to mint session credential: %w", err)
	}

	corpus := o.corpus.fetchToday(ctx)
	ranked := headlines.RankToday(corpus, o.clock().UTC())

	runtime := newSessionRuntime()
	session, err := o.transport.Connect(ctx, *credential,
		realtime.WithInstructions(narration.Build(state.Mode, state.VoicePreset)),
		realtime.WithVoice(voice),
		realtime.WithSpeed(speed),
		realtime.WithEncodingInfo(o.audio.encoding()),
		realtime.WithEventCallback(runtime.enqueue),
	)
	if err != nil {
		return fmt.Errorf("failed to negotiate session: %w", err)
	}

	if err := o.audio.attach(session); err != nil {
		session.Close()
		return fmt.Errorf("failed to attach outbound audio: %w", err)
	}

	o.mu.Lock()
	o.session = session
	o.runtime = runtime
	o.baseContext = ctx
	o.preference = pref
	o.convState = *state
	o.ranked = ranked
	o.transcript = nil
	o.state = StateLive
	o.mu.Unlock()

	runtime.start(func(event events.Event) { o.handleEvent(o.baseContext, event) })
	o.openingTurn(ctx)

	return nil
}

// openingTurn injects the allowed corpus and issues the very first narration
// request of the session.
func (o *Orchestrator) openingTurn(ctx context.Context) {
	o.mu.Lock()
	session := o.session
	ranked := o.ranked
	o.mu.Unlock()
	if session == nil {
		return
	}

	if len(ranked) == 0 {
		o.injectAndRequest(ctx, []string{narration.NoHeadlinesFact}, narration.NoHeadlinesPrompt(), conversations.StatePatch{})
		return
	}

	blocks := []string{"TITULARES DE HOY (TOP 30):\n" + headlines.FormatList(ranked, 30)}
	for _, source := range intents.CanonicalSources() {
		perSource := headlines.FilterBySource(ranked, source)
		if len(perSource) == 0 {
			continue
		}
		blocks = append(blocks, "TITULARES DE "+source+":\n"+headlines.FormatList(perSource, 10))
	}

	patch := conversations.StatePatch{
		LastHeadlines: conversations.Set(headlines.Refs(headlines.TopN(ranked, 30))),
	}
	o.injectAndRequest(ctx, blocks, narration.OpeningPrompt(o.greeter.claim()), patch)
}

// injectAndRequest runs one narration turn: state merge, context injections,
// then the request. Injections always precede the request on the control
// channel; the transport serializes writes so program order is wire order.
func (o *Orchestrator) injectAndRequest(ctx context.Context, contextBlocks []string, prompt string, patch conversations.StatePatch) {
	o.mu.Lock()
	session := o.session
	runtime := o.runtime
	if !patch.IsZero() {
		patch.ApplyTo(&o.convState)
	}
	o.mu.Unlock()
	if session == nil {
		return
	}

	o.store.mergeState(ctx, o.conversationID, patch)

	for _, block := range contextBlocks {
		if err := session.InjectContext(ctx, block); err != nil {
			logger.Error("Failed to inject narration context", "error", err)
			return
		}
	}

	runtime.setSpeaking(true)
	if err := session.RequestNarration(ctx, prompt); err != nil {
		runtime.setSpeaking(false)
		logger.Error("Failed to request narration", "error", err)
		return
	}
	runtime.enqueue(events.NewNarrationRequested(prompt))
}

func (o *Orchestrator) handleEvent(ctx context.Context, event events.Event) {
	o.mu.Lock()
	callbacks := o.startOptions
	o.mu.Unlock()

	switch e := event.(type) {
	case events.SessionConfigured:
		logger.Info("Session configured", "sessionID", e.SessionID)

	case events.UserTranscriptFinal:
		o.mu.Lock()
		o.transcript = append(o.transcript, e.Transcript)
		o.mu.Unlock()
		if callbacks.onUserTranscript != nil {
			callbacks.onUserTranscript(e.Transcript)
		}
		o.handleUtterance(ctx, e.Transcript)

	case events.NarrationRequested:
		logger.Debug("Narration requested", "instructions", e.Instructions)

	case events.NarrationAudioFrame:
		if callbacks.onNarrationAudio != nil {
			callbacks.onNarrationAudio(e.Audio)
		}

	case events.NarrationCompleted:
		o.mu.Lock()
		runtime := o.runtime
		o.mu.Unlock()
		runtime.setSpeaking(false)
		if callbacks.onNarrationCompleted != nil {
			callbacks.onNarrationCompleted(e.Transcript)
		}

	case events.SessionError:
		logger.Error("Session error", "code", e.Code, "message", e.Message)
		if callbacks.onSessionError != nil {
			callbacks.onSessionError(e.Code, e.Message)
		}
	}
}

// Stop takes the engine back to Idle. Safe to invoke in any state, and
// invoking it twice is a no-op the second time.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	session := o.session
	runtime := o.runtime
	o.session = nil
	o.runtime = nil
	o.transcript = nil
	o.state = StateIdle
	o.mu.Unlock()

	o.audio.release()

	if session != nil {
		if err := session.Close(); err != nil {
			logger.Error("Failed to close session", "error", err)
		}
	}
	if runtime != nil {
		runtime.end()
		runtime.awaitCompletion()
	}
}

// ToggleMute swaps the outbound track between microphone and true silence.
// The session, its identity and the control channel are untouched.
func (o *Orchestrator) ToggleMute() error {
	return o.SetMuted(!o.audio.isMuted())
}

func (o *Orchestrator) SetMuted(muted bool) error {
	o.mu.Lock()
	live := o.state == StateLive
	o.mu.Unlock()
	if !live {
		return ErrNoActiveSession
	}
	return o.audio.setActive(muted)
}

func (o *Orchestrator) IsMuted() bool { return o.audio.isMuted() }

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// SessionID reports the live session's identity, or "" when Idle.
func (o *Orchestrator) SessionID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return ""
	}
	return o.session.ID()
}

func (o *Orchestrator) IsSpeaking() bool {
	o.mu.Lock()
	runtime := o.runtime
	o.mu.Unlock()
	return runtime.isSpeaking()
}

// StateSnapshot returns a point-in-time deep copy of the conversation state.
func (o *Orchestrator) StateSnapshot() conversations.State {
	o.mu.Lock()
	defer o.mu.Unlock()

	var snapshot conversations.State
	if err := copier.CopyWithOption(&snapshot, &o.convState, copier.Option{DeepCopy: true}); err != nil {
		logger.Error("Failed to snapshot conversation state", "error", err)
		return o.convState
	}
	// The deep copy materializes nil slices as empty ones, but nil Sources
	// means "mixed / no single source selected" and must stay distinguishable
	// from an empty selection.
	if o.convState.Sources == nil {
		snapshot.Sources = nil
	}
	if o.convState.LastHeadlines == nil {
		snapshot.LastHeadlines = nil
	}
	return snapshot
}

// CorpusSnapshot returns a point-in-time deep copy of the ranked corpus the
// narrator is currently allowed to read from.
func (o *Orchestrator) CorpusSnapshot() []headlines.Headline {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ranked == nil {
		return nil
	}

	var snapshot []headlines.Headline
	if err := copier.CopyWithOption(&snapshot, &o.ranked, copier.Option{DeepCopy: true}); err != nil {
		logger.Error("Failed to snapshot corpus", "error", err)
		return nil
	}
	return snapshot
}
