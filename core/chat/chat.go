// Package chat is the text fallback for the live flow: the same resolver,
// ranking and state transitions, with the narration produced by a structured
// chat-completions call instead of the realtime engine.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/voyceradio/voyce-core/core/conversations"
	"github.com/voyceradio/voyce-core/core/headlines"
	"github.com/voyceradio/voyce-core/core/intents"
	"github.com/voyceradio/voyce-core/core/narration"
)

// Reply is the structured narration plan the LLM must return: the narration
// itself plus the single follow-up question.
type Reply struct {
	Say string `json:"say" jsonschema_description:"Narración para leer en voz alta, citando la fuente"`
	Ask string `json:"ask" jsonschema_description:"Exactamente una pregunta de seguimiento"`
}

// LLM produces a structured reply from a system prompt and a user turn.
type LLM interface {
	PromptStructured(ctx context.Context, systemPrompt, prompt string) (*Reply, error)
}

var ErrNoLLM = errors.New("no llm client configured")

type Engine struct {
	llm    LLM
	source headlines.Source
	store  conversations.Store
	clock  func() time.Time
}

type EngineOption func(*Engine)

func WithLLM(client LLM) EngineOption {
	return func(e *Engine) { e.llm = client }
}

func WithHeadlineSource(source headlines.Source) EngineOption {
	return func(e *Engine) { e.source = source }
}

func WithStore(store conversations.Store) EngineOption {
	return func(e *Engine) { e.store = store }
}

func WithClock(clock func() time.Time) EngineOption {
	return func(e *Engine) { e.clock = clock }
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{clock: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Respond runs one text turn. Store outages degrade the turn to stateless:
// the engine answers from defaults and falls back to the standing source
// question when it would have needed the lost state.
func (e *Engine) Respond(ctx context.Context, conversationID, userID, text string) (string, error) {
	ctx, span := tracer.Start(ctx, "chat.respond")
	defer span.End()

	if e.llm == nil {
		return "", ErrNoLLM
	}

	pref := e.loadPreference(ctx, userID)
	state := e.loadState(ctx, conversationID, pref)

	corpus := e.fetchToday(ctx)
	ranked := headlines.RankToday(corpus, e.clock().UTC())

	turn := e.planTurn(ctx, conversationID, pref, state, ranked, text)

	system := narration.Build(state.Mode, state.VoicePreset)
	if turn.context != "" {
		system += "\n\n" + turn.context
	}

	reply, err := e.llm.PromptStructured(ctx, system, turn.prompt)
	if err != nil {
		return "", fmt.Errorf("failed to produce reply: %w", err)
	}

	parts := make([]string, 0, 2)
	if say := strings.TrimSpace(reply.Say); say != "" {
		parts = append(parts, say)
	}
	if ask := strings.TrimSpace(reply.Ask); ask != "" {
		parts = append(parts, ask)
	}
	return strings.Join(parts, " "), nil
}

type plannedTurn struct {
	context string
	prompt  string
}

func (e *Engine) planTurn(ctx context.Context, conversationID string, pref conversations.Preference, state conversations.State, ranked []headlines.Headline, text string) plannedTurn {
	if len(ranked) == 0 {
		return plannedTurn{context: narration.NoHeadlinesFact, prompt: narration.NoHeadlinesPrompt()}
	}

	switch it := intents.Resolve(text).(type) {
	case intents.ChangeSource:
		e.mergeState(ctx, conversationID, conversations.StatePatch{
			Sources:       conversations.Set[[]string](nil),
			LastHeadlines: conversations.Set[[]conversations.HeadlineRef](nil),
		})
		return plannedTurn{prompt: narration.SourceQuestionPrompt()}

	case intents.PickSource:
		shown := headlines.TopN(headlines.FilterBySource(ranked, it.Source), narration.HeadlinesPerRead(state.Mode))
		e.mergeState(ctx, conversationID, conversations.StatePatch{
			Sources:       conversations.Set([]string{it.Source}),
			LastHeadlines: conversations.Set(headlines.Refs(shown)),
		})
		return plannedTurn{
			context: "TITULARES DE " + it.Source + ":\n" + headlines.FormatList(shown, len(shown)),
			prompt:  narration.SourceReadPrompt(state.Mode, it.Source, len(shown)),
		}

	case intents.TopWithoutSource:
		shown := headlines.TopN(ranked, 5)
		e.mergeState(ctx, conversationID, conversations.StatePatch{
			LastHeadlines: conversations.Set(headlines.Refs(shown)),
		})
		return plannedTurn{
			context: "TITULARES MAS IMPORTANTES DE HOY:\n" + headlines.FormatList(shown, len(shown)),
			prompt:  narration.TopFivePrompt(state.Mode),
		}

	case intents.Refresh:
		e.triggerReingest(ctx)
		e.mergeState(ctx, conversationID, conversations.StatePatch{
			Sources:       conversations.Set[[]string](nil),
			LastHeadlines: conversations.Set[[]conversations.HeadlineRef](nil),
		})
		return plannedTurn{
			context: "TITULARES DE HOY (ACTUALIZADOS):\n" + headlines.FormatList(ranked, 30),
			prompt:  narration.RefreshDonePrompt(),
		}

	case intents.PickItem:
		return e.planPick(ctx, state, it)

	case intents.SetMode:
		pref.Mode = conversations.NormalizeMode(string(it.Mode))
		e.savePreference(ctx, pref)
		e.mergeState(ctx, conversationID, conversations.StatePatch{Mode: conversations.Set(pref.Mode)})
		return plannedTurn{prompt: narration.SettingsChangedPrompt()}

	case intents.SetVoicePreset:
		pref.VoicePreset = conversations.NormalizePreset(string(it.Preset))
		e.savePreference(ctx, pref)
		e.mergeState(ctx, conversationID, conversations.StatePatch{VoicePreset: conversations.Set(pref.VoicePreset)})
		return plannedTurn{prompt: narration.SettingsChangedPrompt()}
	}

	// Unrecognized text falls back to the standing source question over the
	// full corpus.
	return plannedTurn{
		context: "TITULARES DE HOY (TOP 30):\n" + headlines.FormatList(ranked, 30),
		prompt:  narration.SourceQuestionPrompt(),
	}
}

func (e *Engine) planPick(ctx context.Context, state conversations.State, pick intents.PickItem) plannedTurn {
	var ref *conversations.HeadlineRef
	if pick.ID != nil {
		for i := range state.LastHeadlines {
			if state.LastHeadlines[i].ID == *pick.ID {
				ref = &state.LastHeadlines[i]
				break
			}
		}
	} else if pick.Index != nil && *pick.Index >= 0 && *pick.Index < len(state.LastHeadlines) {
		ref = &state.LastHeadlines[*pick.Index]
	}
	if ref == nil {
		return plannedTurn{prompt: narration.RepeatPickPrompt()}
	}

	if e.source == nil {
		return plannedTurn{prompt: narration.ArticleUnavailablePrompt()}
	}
	article, err := e.source.FetchArticle(ctx, ref.ID)
	if err != nil {
		logger.Error("Failed to fetch picked article", "id", ref.ID, "error", err)
		return plannedTurn{prompt: narration.ArticleUnavailablePrompt()}
	}

	return plannedTurn{
		context: headlines.FormatArticle(*article),
		prompt:  narration.ArticleExpansionPrompt(state.Mode),
	}
}

func (e *Engine) loadPreference(ctx context.Context, userID string) conversations.Preference {
	if e.store == nil {
		return conversations.DefaultPreference(userID)
	}
	pref, err := e.store.LoadPreference(ctx, userID)
	if err != nil || pref == nil {
		if err != nil {
			logger.Warn("Preference load failed, using defaults", "error", err)
		}
		return conversations.DefaultPreference(userID)
	}
	return *pref
}

func (e *Engine) loadState(ctx context.Context, conversationID string, pref conversations.Preference) conversations.State {
	if e.store == nil {
		return conversations.NewState(conversationID, pref)
	}
	state, err := e.store.LoadState(ctx, conversationID)
	if err != nil || state == nil {
		if err != nil {
			logger.Warn("State load failed, degrading to stateless turn", "error", err)
		}
		return conversations.NewState(conversationID, pref)
	}
	return *state
}

func (e *Engine) savePreference(ctx context.Context, pref conversations.Preference) {
	if e.store == nil {
		return
	}
	if err := e.store.SavePreference(ctx, pref); err != nil {
		logger.Warn("Preference save failed, change applies to this conversation only", "error", err)
	}
}

func (e *Engine) mergeState(ctx context.Context, conversationID string, patch conversations.StatePatch) {
	if e.store == nil || patch.IsZero() {
		return
	}
	if err := e.store.MergeState(ctx, conversationID, patch); err != nil {
		logger.Warn("State merge failed, turn stays stateless", "error", err)
	}
}

func (e *Engine) fetchToday(ctx context.Context) []headlines.Headline {
	if e.source == nil {
		return nil
	}
	corpus, err := e.source.FetchToday(ctx, 100)
	if err != nil {
		logger.Error("Failed to fetch today's corpus", "error", err)
		return nil
	}
	return corpus
}

func (e *Engine) triggerReingest(ctx context.Context) {
	if e.source == nil {
		return
	}
	if err := e.source.TriggerReingest(ctx); err != nil {
		logger.Error("Failed to trigger corpus reingestion", "error", err)
	}
}
