package orchestration

import (
	"context"

	"github.com/voyceradio/voyce-core/core/headlines"
)

const corpusFetchLimit = 100

// corpusSource is the nil-safe facade over the headline corpus collaborator.
// A missing or failing source yields an empty corpus, which the engine
// treats as the recognized no-headlines branch rather than an error.
type corpusSource struct {
	client headlines.Source
}

func (s *corpusSource) set(client headlines.Source) {
	if s == nil {
		return
	}
	s.client = client
}

func (s *corpusSource) fetchToday(ctx context.Context) []headlines.Headline {
	if s == nil || s.client == nil {
		return nil
	}

	corpus, err := s.client.FetchToday(ctx, corpusFetchLimit)
	if err != nil {
		logger.Error("Failed to fetch today's corpus", "error", err)
		return nil
	}
	return corpus
}

func (s *corpusSource) fetchArticle(ctx context.Context, id int64) (*headlines.Article, error) {
	if s == nil || s.client == nil {
		return nil, headlines.ErrArticleNotFound
	}
	return s.client.FetchArticle(ctx, id)
}

func (s *corpusSource) triggerReingest(ctx context.Context) {
	if s == nil || s.client == nil {
		return
	}

	if err := s.client.TriggerReingest(ctx); err != nil {
		logger.Error("Failed to trigger corpus reingestion", "error", err)
	}
}
