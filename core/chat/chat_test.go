package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/voyceradio/voyce-core/core/conversations"
	"github.com/voyceradio/voyce-core/core/headlines"
	"github.com/voyceradio/voyce-core/core/narration"
)

type fakeLLM struct {
	reply *Reply
	err   error

	mu      sync.Mutex
	systems []string
	prompts []string
}

func (f *fakeLLM) PromptStructured(_ context.Context, systemPrompt, prompt string) (*Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.systems = append(f.systems, systemPrompt)
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func (f *fakeLLM) last() (system, prompt string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.systems[len(f.systems)-1], f.prompts[len(f.prompts)-1]
}

type fakeSource struct {
	corpus     []headlines.Headline
	articles   map[int64]*headlines.Article
	articleErr error
	reingests  int
}

func (f *fakeSource) FetchToday(_ context.Context, _ int) ([]headlines.Headline, error) {
	return append([]headlines.Headline(nil), f.corpus...), nil
}

func (f *fakeSource) FetchArticle(_ context.Context, id int64) (*headlines.Article, error) {
	if f.articleErr != nil {
		return nil, f.articleErr
	}
	if article, ok := f.articles[id]; ok {
		return article, nil
	}
	return nil, headlines.ErrArticleNotFound
}

func (f *fakeSource) TriggerReingest(_ context.Context) error {
	f.reingests++
	return nil
}

var chatNow = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

func chatCorpus(n int) []headlines.Headline {
	sources := []string{"Clarín", "Infobae", "La Nación"}
	published := chatNow.Add(-time.Hour)
	corpus := make([]headlines.Headline, 0, n)
	for i := 0; i < n; i++ {
		corpus = append(corpus, headlines.Headline{
			ID:              int64(i + 1),
			Source:          sources[i%len(sources)],
			Title:           "titular",
			ImportanceScore: 100 - i,
			PublishedAt:     &published,
			FetchedAt:       published,
		})
	}
	return corpus
}

func newTestEngine(llm *fakeLLM, source *fakeSource, store conversations.Store) *Engine {
	return NewEngine(
		WithLLM(llm),
		WithHeadlineSource(source),
		WithStore(store),
		WithClock(func() time.Time { return chatNow }),
	)
}

func TestRespondWithoutLLMFails(t *testing.T) {
	e := NewEngine()
	if _, err := e.Respond(context.Background(), "c1", "u1", "hola"); !errors.Is(err, ErrNoLLM) {
		t.Fatalf("expected ErrNoLLM, got %v", err)
	}
}

func TestRespondJoinsSayAndAsk(t *testing.T) {
	llm := &fakeLLM{reply: &Reply{Say: "  Según Clarín, pasó algo.  ", Ask: "¿Querés otra?"}}
	e := newTestEngine(llm, &fakeSource{corpus: chatCorpus(3)}, conversations.NewMemoryStore())

	answer, err := e.Respond(context.Background(), "c1", "u1", "hola")
	if err != nil {
		t.Fatalf("expected a reply, got %v", err)
	}
	if answer != "Según Clarín, pasó algo. ¿Querés otra?" {
		t.Fatalf("unexpected answer %q", answer)
	}
}

func TestRespondEmptyCorpusOffersRefresh(t *testing.T) {
	llm := &fakeLLM{reply: &Reply{Say: "no hay nada"}}
	e := newTestEngine(llm, &fakeSource{}, conversations.NewMemoryStore())

	if _, err := e.Respond(context.Background(), "c1", "u1", "dame las principales"); err != nil {
		t.Fatalf("expected a reply, got %v", err)
	}

	system, prompt := llm.last()
	if !strings.Contains(system, narration.NoHeadlinesFact) {
		t.Fatalf("expected the empty-corpus fact in the system prompt, got %q", system)
	}
	if prompt != narration.NoHeadlinesPrompt() {
		t.Fatalf("expected the refresh offer, got %q", prompt)
	}
}

func TestRespondPickSourcePersistsSelection(t *testing.T) {
	llm := &fakeLLM{reply: &Reply{Say: "listo"}}
	store := conversations.NewMemoryStore()
	e := newTestEngine(llm, &fakeSource{corpus: chatCorpus(9)}, store)

	if _, err := e.Respond(context.Background(), "c1", "u1", "Clarín"); err != nil {
		t.Fatalf("expected a reply, got %v", err)
	}

	system, _ := llm.last()
	if !strings.Contains(system, "TITULARES DE Clarín:") {
		t.Fatalf("expected the Clarín block in the system prompt, got %q", system)
	}

	state, err := store.LoadState(context.Background(), "c1")
	if err != nil || state == nil {
		t.Fatalf("expected persisted state, got %v, %v", state, err)
	}
	if state.ChosenSource() != "Clarín" {
		t.Fatalf("expected Clarín selected, got %v", state.Sources)
	}
	for _, ref := range state.LastHeadlines {
		if ref.Source != "Clarín" {
			t.Fatalf("expected only Clarín refs, got %+v", ref)
		}
	}
}

func TestRespondOrdinalPickUsesRememberedList(t *testing.T) {
	llm := &fakeLLM{reply: &Reply{Say: "el artículo"}}
	store := conversations.NewMemoryStore()
	source := &fakeSource{
		corpus: chatCorpus(9),
		articles: map[int64]*headlines.Article{
			4: {ID: 4, Title: "titular", Source: "Clarín", Summary: "resumen", FullBody: "cuerpo"},
		},
	}
	e := newTestEngine(llm, source, store)

	if _, err := e.Respond(context.Background(), "c1", "u1", "Clarín"); err != nil {
		t.Fatalf("expected a reply, got %v", err)
	}
	// Clarín holds ids 1, 4, 7; "la 2" is index 1 of that list.
	if _, err := e.Respond(context.Background(), "c1", "u1", "la 2"); err != nil {
		t.Fatalf("expected a reply, got %v", err)
	}

	system, _ := llm.last()
	if !strings.Contains(system, "ARTÍCULO SELECCIONADO") {
		t.Fatalf("expected the article block, got %q", system)
	}
	if !strings.Contains(system, "cuerpo") {
		t.Fatalf("expected the article body, got %q", system)
	}
}

func TestRespondChangeSourceClearsState(t *testing.T) {
	llm := &fakeLLM{reply: &Reply{Say: "dale"}}
	store := conversations.NewMemoryStore()
	e := newTestEngine(llm, &fakeSource{corpus: chatCorpus(6)}, store)

	if _, err := e.Respond(context.Background(), "c1", "u1", "Infobae"); err != nil {
		t.Fatalf("expected a reply, got %v", err)
	}
	if _, err := e.Respond(context.Background(), "c1", "u1", "otro diario"); err != nil {
		t.Fatalf("expected a reply, got %v", err)
	}

	_, prompt := llm.last()
	if prompt != narration.SourceQuestionPrompt() {
		t.Fatalf("expected the standing source question, got %q", prompt)
	}

	state, err := store.LoadState(context.Background(), "c1")
	if err != nil || state == nil {
		t.Fatalf("expected persisted state, got %v, %v", state, err)
	}
	if state.Sources != nil || state.LastHeadlines != nil {
		t.Fatalf("expected cleared selection, got %+v", state)
	}
}

func TestRespondRefreshTriggersReingest(t *testing.T) {
	llm := &fakeLLM{reply: &Reply{Say: "actualizado"}}
	source := &fakeSource{corpus: chatCorpus(3)}
	e := newTestEngine(llm, source, conversations.NewMemoryStore())

	if _, err := e.Respond(context.Background(), "c1", "u1", "actualizá"); err != nil {
		t.Fatalf("expected a reply, got %v", err)
	}
	if source.reingests != 1 {
		t.Fatalf("expected one reingest, got %d", source.reingests)
	}
	_, prompt := llm.last()
	if prompt != narration.RefreshDonePrompt() {
		t.Fatalf("expected the refresh confirmation, got %q", prompt)
	}
}

func TestRespondArticleFailureRecoversWithoutContext(t *testing.T) {
	llm := &fakeLLM{reply: &Reply{Say: "probemos otra"}}
	store := conversations.NewMemoryStore()
	source := &fakeSource{corpus: chatCorpus(5), articleErr: errors.New("upstream down")}
	e := newTestEngine(llm, source, store)

	if _, err := e.Respond(context.Background(), "c1", "u1", "dame las principales"); err != nil {
		t.Fatalf("expected a reply, got %v", err)
	}
	if _, err := e.Respond(context.Background(), "c1", "u1", "la 1"); err != nil {
		t.Fatalf("expected a reply, got %v", err)
	}

	system, prompt := llm.last()
	if prompt != narration.ArticleUnavailablePrompt() {
		t.Fatalf("expected the pick-another recovery, got %q", prompt)
	}
	if strings.Contains(system, "ARTÍCULO SELECCIONADO") {
		t.Fatalf("expected no article block after a failed fetch, got %q", system)
	}
}

func TestRespondLLMFailureSurfaces(t *testing.T) {
	llm := &fakeLLM{err: errors.New("model overloaded")}
	e := newTestEngine(llm, &fakeSource{corpus: chatCorpus(2)}, conversations.NewMemoryStore())

	if _, err := e.Respond(context.Background(), "c1", "u1", "hola"); err == nil {
		t.Fatalf("expected the llm error to surface")
	}
}

func TestRespondSetModePersistsPreference(t *testing.T) {
	llm := &fakeLLM{reply: &Reply{Say: "listo"}}
	store := conversations.NewMemoryStore()
	e := newTestEngine(llm, &fakeSource{corpus: chatCorpus(3)}, store)

	if _, err := e.Respond(context.Background(), "c1", "u1", "pasá a modo podcast"); err != nil {
		t.Fatalf("expected a reply, got %v", err)
	}

	pref, err := store.LoadPreference(context.Background(), "u1")
	if err != nil || pref == nil {
		t.Fatalf("expected a persisted preference, got %v, %v", pref, err)
	}
	if pref.Mode != conversations.ModePodcast {
		t.Fatalf("expected the podcast mode persisted, got %q", pref.Mode)
	}

	state, err := store.LoadState(context.Background(), "c1")
	if err != nil || state == nil {
		t.Fatalf("expected persisted state, got %v, %v", state, err)
	}
	if state.Mode != conversations.ModePodcast {
		t.Fatalf("expected the state mode merged, got %q", state.Mode)
	}
}

func TestRespondSetVoicePresetPersistsPreference(t *testing.T) {
	llm := &fakeLLM{reply: &Reply{Say: "listo"}}
	store := conversations.NewMemoryStore()
	e := newTestEngine(llm, &fakeSource{corpus: chatCorpus(3)}, store)

	if _, err := e.Respond(context.Background(), "c1", "u1", "poné la voz canchera"); err != nil {
		t.Fatalf("expected a reply, got %v", err)
	}

	pref, err := store.LoadPreference(context.Background(), "u1")
	if err != nil || pref == nil {
		t.Fatalf("expected a persisted preference, got %v, %v", pref, err)
	}
	if pref.VoicePreset != conversations.PresetRadioCanchero {
		t.Fatalf("expected the canchero preset persisted, got %q", pref.VoicePreset)
	}
}

type unavailableStore struct{}

func (unavailableStore) LoadState(context.Context, string) (*conversations.State, error) {
	return nil, fmt.Errorf("%w: connection refused", conversations.ErrStoreUnavailable)
}

func (unavailableStore) MergeState(context.Context, string, conversations.StatePatch) error {
	return fmt.Errorf("%w: connection refused", conversations.ErrStoreUnavailable)
}

func (unavailableStore) LoadPreference(context.Context, string) (*conversations.Preference, error) {
	return nil, fmt.Errorf("%w: connection refused", conversations.ErrStoreUnavailable)
}

func (unavailableStore) SavePreference(context.Context, conversations.Preference) error {
	return fmt.Errorf("%w: connection refused", conversations.ErrStoreUnavailable)
}

func TestRespondStoreOutageDegradesToStatelessTurn(t *testing.T) {
	llm := &fakeLLM{reply: &Reply{Say: "dale", Ask: "¿de qué diario?"}}
	e := NewEngine(
		WithLLM(llm),
		WithHeadlineSource(&fakeSource{corpus: chatCorpus(4)}),
		WithStore(unavailableStore{}),
		WithClock(func() time.Time { return chatNow }),
	)

	answer, err := e.Respond(context.Background(), "c1", "u1", "hola")
	if err != nil {
		t.Fatalf("expected the outage not to fail the turn, got %v", err)
	}
	if answer == "" {
		t.Fatalf("expected an answer despite the outage")
	}

	_, prompt := llm.last()
	if prompt != narration.SourceQuestionPrompt() {
		t.Fatalf("expected the standing source question, got %q", prompt)
	}
}

func TestRespondWithoutStoreStaysStateless(t *testing.T) {
	llm := &fakeLLM{reply: &Reply{Say: "dale"}}
	e := NewEngine(
		WithLLM(llm),
		WithHeadlineSource(&fakeSource{corpus: chatCorpus(4)}),
		WithClock(func() time.Time { return chatNow }),
	)

	if _, err := e.Respond(context.Background(), "c1", "u1", "Clarín"); err != nil {
		t.Fatalf("expected a reply, got %v", err)
	}
	// Without a store the remembered list is lost, so an ordinal pick falls
	// back to asking the user to repeat.
	if _, err := e.Respond(context.Background(), "c1", "u1", "la 1"); err != nil {
		t.Fatalf("expected a reply, got %v", err)
	}
	_, prompt := llm.last()
	if prompt != narration.RepeatPickPrompt() {
		t.Fatalf("expected the repeat-pick recovery, got %q", prompt)
	}
}
