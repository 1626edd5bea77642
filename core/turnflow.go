package orchestration

import (
	"context"

	"github.com/voyceradio/voyce-core/core/conversations"
	"github.com/voyceradio/voyce-core/core/headlines"
	"github.com/voyceradio/voyce-core/core/intents"
	"github.com/voyceradio/voyce-core/core/narration"
)

// handleUtterance runs one user turn: resolve the intent and branch. Runs on
// the session event loop, so state reads and mutations are serialized.
func (o *Orchestrator) handleUtterance(ctx context.Context, transcript string) {
	ctx, span := tracer.Start(ctx, "orchestration.handle-utterance")
	defer span.End()

	intent := intents.Resolve(transcript)
	if intent == nil {
		return
	}

	o.mu.Lock()
	state := o.convState
	ranked := o.ranked
	o.mu.Unlock()

	switch it := intent.(type) {
	case intents.ChangeSource:
		o.changeSource(ctx)

	case intents.PickSource:
		o.pickSource(ctx, state, ranked, it.Source)

	case intents.TopWithoutSource:
		o.topWithoutSource(ctx, state, ranked)

	case intents.Refresh:
		o.refresh(ctx)

	case intents.PickItem:
		o.pickItem(ctx, state, it)

	case intents.SetMode:
		o.applySettings(ctx, it.Mode, state.VoicePreset)

	case intents.SetVoicePreset:
		o.applySettings(ctx, state.Mode, it.Preset)
	}
}

// changeSource drops the source selection and the last shown list, then
// re-asks the standing source question.
func (o *Orchestrator) changeSource(ctx context.Context) {
	patch := conversations.StatePatch{
		Sources:       conversations.Set[[]string](nil),
		LastHeadlines: conversations.Set[[]conversations.HeadlineRef](nil),
	}
	o.injectAndRequest(ctx, nil, narration.SourceQuestionPrompt(), patch)
}

func (o *Orchestrator) pickSource(ctx context.Context, state conversations.State, ranked []headlines.Headline, source string) {
	perSource := headlines.FilterBySource(ranked, source)
	if len(perSource) == 0 {
		patch := conversations.StatePatch{
			Sources:       conversations.Set([]string{source}),
			LastHeadlines: conversations.Set[[]conversations.HeadlineRef](nil),
		}
		o.injectAndRequest(ctx, []string{narration.NoHeadlinesFact}, narration.NoHeadlinesPrompt(), patch)
		return
	}

	shown := headlines.TopN(perSource, narration.HeadlinesPerRead(state.Mode))
	patch := conversations.StatePatch{
		Sources:       conversations.Set([]string{source}),
		LastHeadlines: conversations.Set(headlines.Refs(shown)),
	}
	block := "TITULARES DE " + source + ":\n" + headlines.FormatList(shown, len(shown))
	o.injectAndRequest(ctx, []string{block}, narration.SourceReadPrompt(state.Mode, source, len(shown)), patch)
}

func (o *Orchestrator) topWithoutSource(ctx context.Context, state conversations.State, ranked []headlines.Headline) {
	if len(ranked) == 0 {
		o.injectAndRequest(ctx, []string{narration.NoHeadlinesFact}, narration.NoHeadlinesPrompt(), conversations.StatePatch{})
		return
	}

	shown := headlines.TopN(ranked, 5)
	patch := conversations.StatePatch{
		LastHeadlines: conversations.Set(headlines.Refs(shown)),
	}
	block := "TITULARES MAS IMPORTANTES DE HOY:\n" + headlines.FormatList(shown, len(shown))
	o.injectAndRequest(ctx, []string{block}, narration.TopFivePrompt(state.Mode), patch)
}

// refresh triggers re-ingestion, re-fetches and re-ranks the corpus, then
// sends the flow back to the source question over the fresh list.
func (o *Orchestrator) refresh(ctx context.Context) {
	o.corpus.triggerReingest(ctx)

	corpus := o.corpus.fetchToday(ctx)
	ranked := headlines.RankToday(corpus, o.clock().UTC())

	o.mu.Lock()
	o.ranked = ranked
	o.mu.Unlock()

	patch := conversations.StatePatch{
		Sources:       conversations.Set[[]string](nil),
		LastHeadlines: conversations.Set[[]conversations.HeadlineRef](nil),
	}
	if len(ranked) == 0 {
		o.injectAndRequest(ctx, []string{narration.NoHeadlinesFact}, narration.NoHeadlinesPrompt(), patch)
		return
	}

	block := "TITULARES DE HOY (ACTUALIZADOS):\n" + headlines.FormatList(ranked, 30)
	o.injectAndRequest(ctx, []string{block}, narration.RefreshDonePrompt(), patch)
}

// pickItem resolves an ordinal or explicit id against the last list shown,
// fetches the full article and injects it as the only permissible content.
// An unresolvable pick or a failed fetch injects nothing; the narrator is
// asked for a different pick instead.
func (o *Orchestrator) pickItem(ctx context.Context, state conversations.State, pick intents.PickItem) {
	ref, ok := resolvePick(state.LastHeadlines, pick)
	if !ok {
		o.injectAndRequest(ctx, nil, narration.RepeatPickPrompt(), conversations.StatePatch{})
		return
	}

	article, err := o.corpus.fetchArticle(ctx, ref.ID)
	if err != nil {
		logger.Error("Failed to fetch picked article", "id", ref.ID, "error", err)
		o.injectAndRequest(ctx, nil, narration.ArticleUnavailablePrompt(), conversations.StatePatch{})
		return
	}

	o.injectAndRequest(ctx, []string{headlines.FormatArticle(*article)},
		narration.ArticleExpansionPrompt(state.Mode), conversations.StatePatch{})
}

func resolvePick(refs []conversations.HeadlineRef, pick intents.PickItem) (conversations.HeadlineRef, bool) {
	if pick.ID != nil {
		for _, ref := range refs {
			if ref.ID == *pick.ID {
				return ref, true
			}
		}
		return conversations.HeadlineRef{}, false
	}
	if pick.Index != nil && *pick.Index >= 0 && *pick.Index < len(refs) {
		return refs[*pick.Index], true
	}
	return conversations.HeadlineRef{}, false
}

// applySettings persists a mode or voice-preset change and re-sends the
// session instructions so the next narration already follows the new style.
func (o *Orchestrator) applySettings(ctx context.Context, mode conversations.Mode, preset conversations.VoicePreset) {
	mode = conversations.NormalizeMode(string(mode))
	preset = conversations.NormalizePreset(string(preset))

	o.mu.Lock()
	o.preference.Mode = mode
	o.preference.VoicePreset = preset
	pref := o.preference
	session := o.session
	o.mu.Unlock()

	o.store.savePreference(ctx, pref)

	if session != nil {
		if err := session.UpdateInstructions(ctx, narration.Build(mode, preset)); err != nil {
			logger.Error("Failed to update session instructions", "error", err)
		}
	}

	patch := conversations.StatePatch{
		Mode:        conversations.Set(mode),
		VoicePreset: conversations.Set(preset),
	}
	o.injectAndRequest(ctx, nil, narration.SettingsChangedPrompt(), patch)
}
