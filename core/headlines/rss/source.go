// Package rss implements the headline corpus source over the papers' public
// RSS feeds. Headline ids are stable FNV hashes of the item link, so the same
// item keeps the same id across refetches within a day.
package rss

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/http"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/voyceradio/voyce-core/core/headlines"
)

// Feed pairs a canonical source name with its RSS endpoint.
type Feed struct {
	Source string
	URL    string
}

// DefaultFeeds is the closed six-paper table the product reads from.
func DefaultFeeds() []Feed {
	return []Feed{
		{Source: "La Nación", URL: "https://www.lanacion.com.ar/arc/outboundfeeds/rss/"},
		{Source: "Clarín", URL: "https://www.clarin.com/rss/lo-ultimo/"},
		{Source: "Ámbito", URL: "https://www.ambito.com/rss/pages/home.xml"},
		{Source: "El Cronista", URL: "https://www.cronista.com/files/rss/news.xml"},
		{Source: "Infobae", URL: "https://www.infobae.com/arc/outboundfeeds/rss/"},
		{Source: "Página 12", URL: "https://www.pagina12.com.ar/rss/portada"},
	}
}

type Source struct {
	feeds      []Feed
	httpClient *http.Client
	parser     *gofeed.Parser
	now        func() time.Time

	mu sync.RWMutex
	// lastFetch keeps the most recent corpus so FetchArticle can resolve an
	// id back to its link without refetching every feed.
	lastFetch []headlines.Headline
}

var _ headlines.Source = (*Source)(nil)

type SourceOption func(*Source)

// WithHTTPClient replaces the default instrumented HTTP client.
func WithHTTPClient(client *http.Client) SourceOption {
	return func(s *Source) { s.httpClient = client }
}

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) SourceOption {
	return func(s *Source) { s.now = now }
}

func NewSource(feeds []Feed, opts ...SourceOption) *Source {
	if len(feeds) == 0 {
		feeds = DefaultFeeds()
	}

	s := &Source{
		feeds: feeds,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   15 * time.Second,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.parser = gofeed.NewParser()
	s.parser.Client = s.httpClient
	return s
}

func (s *Source) FetchToday(ctx context.Context, limit int) ([]headlines.Headline, error) {
	ctx, span := tracer.Start(ctx, "fetch today's headlines")
	defer span.End()
	span.SetAttributes(attribute.Int("request.limit", limit))

	fetchedAt := s.now().UTC()
	var corpus []headlines.Headline
	for _, feed := range s.feeds {
		items, err := s.fetchFeed(ctx, feed, fetchedAt)
		if err != nil {
			// One paper being down should not empty the whole corpus.
			logger.WarnContext(ctx, "feed fetch failed", "source", feed.Source, "error", err)
			span.RecordError(err)
			continue
		}
		corpus = append(corpus, items...)
	}

	ranked := headlines.RankToday(corpus, fetchedAt)
	if limit > 0 {
		ranked = headlines.TopN(ranked, limit)
	}

	s.mu.Lock()
	s.lastFetch = ranked
	s.mu.Unlock()

	span.SetAttributes(attribute.Int("response.headlines", len(ranked)))
	return ranked, nil
}

func (s *Source) fetchFeed(ctx context.Context, feed Feed, fetchedAt time.Time) ([]headlines.Headline, error) {
	parsed, err := s.parser.ParseURLWithContext(feed.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %q: %w", feed.Source, err)
	}

	items := make([]headlines.Headline, 0, len(parsed.Items))
	for i, item := range parsed.Items {
		if item == nil || item.Link == "" {
			continue
		}

		h := headlines.Headline{
			ID:      linkID(item.Link),
			Source:  feed.Source,
			Title:   item.Title,
			Summary: item.Description,
			Link:    item.Link,
			// Feeds list their lead stories first; position is the only
			// importance signal RSS gives us.
			ImportanceScore: len(parsed.Items) - i,
			FetchedAt:       fetchedAt,
		}
		if len(item.Categories) > 0 {
			h.Category = item.Categories[0]
		}
		if item.PublishedParsed != nil {
			published := item.PublishedParsed.UTC()
			h.PublishedAt = &published
		}
		items = append(items, h)
	}
	return items, nil
}

func (s *Source) FetchArticle(ctx context.Context, id int64) (*headlines.Article, error) {
	ctx, span := tracer.Start(ctx, "fetch article body")
	defer span.End()
	span.SetAttributes(attribute.Int64("article.id", id))

	s.mu.RLock()
	var headline *headlines.Headline
	for i := range s.lastFetch {
		if s.lastFetch[i].ID == id {
			h := s.lastFetch[i]
			headline = &h
			break
		}
	}
	s.mu.RUnlock()

	if headline == nil {
		return nil, headlines.ErrArticleNotFound
	}

	body, err := s.scrapeBody(ctx, headline.Link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("scrape article %d: %w", id, err)
	}

	return &headlines.Article{
		ID:          headline.ID,
		Title:       headline.Title,
		Source:      headline.Source,
		Summary:     headline.Summary,
		FullBody:    body,
		Link:        headline.Link,
		PublishedAt: headline.PublishedAt,
	}, nil
}

// TriggerReingest drops the id-resolution cache so the next FetchToday hits
// the feeds again. The feeds themselves are the source of truth; there is no
// separate ingestion job to poke.
func (s *Source) TriggerReingest(ctx context.Context) error {
	_, span := tracer.Start(ctx, "trigger reingest")
	defer span.End()

	s.mu.Lock()
	s.lastFetch = nil
	s.mu.Unlock()
	return nil
}

func linkID(link string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(link))
	// Mask the sign bit so ids stay positive in speech and SQL.
	return int64(h.Sum64() & (1<<63 - 1))
}
