// Package headlines ranks and filters the daily headline corpus.
//
// The three list operations (RankToday, FilterBySource, TopN) are pure and
// produce byte-identical output for identical input; that determinism is what
// lets "la 3" resolve to the same item on both sides of a request boundary.
package headlines

import (
	"context"
	"errors"
	"time"
)

// Headline is a single candidate news item. It is owned by the ingestion
// collaborator and read-only to the engine; once ranked for a session the
// list is never reordered under the user.
type Headline struct {
	ID       int64  `json:"id"`
	Source   string `json:"source"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Link     string `json:"link"`
	Category string `json:"category"`

	// ImportanceScore is a signed integer heuristic; higher is more
	// important, absence defaults to 0.
	ImportanceScore int `json:"importance_score"`

	// PublishedAt is the publication instant when the upstream feed carried
	// one; FetchedAt (the ingestion instant) is the fallback.
	PublishedAt *time.Time `json:"published_at"`
	FetchedAt   time.Time  `json:"fetched_at"`
}

// Article is the full body of a chosen headline, fetched on demand. It is the
// only content the narrator may use when expanding a pick.
type Article struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Source      string     `json:"source"`
	Summary     string     `json:"summary"`
	FullBody    string     `json:"content"`
	Link        string     `json:"link"`
	PublishedAt *time.Time `json:"published_at"`
}

// ErrArticleNotFound is returned when no article exists for the requested id.
var ErrArticleNotFound = errors.New("article not found")

// Source is the headline corpus collaborator.
type Source interface {
	// FetchToday returns up to limit candidate headlines for the current day.
	FetchToday(ctx context.Context, limit int) ([]Headline, error)
	// FetchArticle returns the full article body for a headline id.
	FetchArticle(ctx context.Context, id int64) (*Article, error)
	// TriggerReingest asks the ingestion side to pull fresh headlines.
	TriggerReingest(ctx context.Context) error
}
