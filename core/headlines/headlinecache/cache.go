// Package headlinecache is a Redis read-through cache in front of a headline
// source. Entries are keyed by civil day, so a cached corpus can never leak
// into the next day's window, and a reingest invalidates the day bucket.
package headlinecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"

	"github.com/voyceradio/voyce-core/core/headlines"
)

const keyPrefix = "voyce:headlines:"

type Cache struct {
	inner  headlines.Source
	client *redis.Client
	now    func() time.Time
}

var _ headlines.Source = (*Cache)(nil)

type Option func(*Cache)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func New(inner headlines.Source, client *redis.Client, opts ...Option) *Cache {
	c := &Cache{inner: inner, client: client, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) FetchToday(ctx context.Context, limit int) ([]headlines.Headline, error) {
	ctx, span := tracer.Start(ctx, "fetch today's headlines (cached)")
	defer span.End()

	key := c.dayKey()
	span.SetAttributes(attribute.String("cache.key", key))

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var cached []headlines.Headline
		if err := json.Unmarshal(raw, &cached); err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			if limit > 0 {
				cached = headlines.TopN(cached, limit)
			}
			return cached, nil
		}
		logger.WarnContext(ctx, "dropping undecodable cache entry", "key", key, "error", err)
	} else if !errors.Is(err, redis.Nil) {
		// A flaky cache must never take the corpus down with it.
		logger.WarnContext(ctx, "headline cache read failed", "error", err)
		span.RecordError(err)
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	fresh, err := c.inner.FetchToday(ctx, limit)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(fresh); err == nil {
		if err := c.client.Set(ctx, key, raw, c.ttlUntilDayEnd()).Err(); err != nil {
			logger.WarnContext(ctx, "headline cache write failed", "error", err)
			span.RecordError(err)
		}
	}
	return fresh, nil
}

func (c *Cache) FetchArticle(ctx context.Context, id int64) (*headlines.Article, error) {
	return c.inner.FetchArticle(ctx, id)
}

func (c *Cache) TriggerReingest(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "trigger reingest (cached)")
	defer span.End()

	if err := c.client.Del(ctx, c.dayKey()).Err(); err != nil {
		logger.WarnContext(ctx, "headline cache invalidation failed", "error", err)
		span.RecordError(err)
	}
	return c.inner.TriggerReingest(ctx)
}

func (c *Cache) dayKey() string {
	day := c.now().In(headlines.CivilZone).Format("2006-01-02")
	return fmt.Sprintf("%s%s", keyPrefix, day)
}

func (c *Cache) ttlUntilDayEnd() time.Duration {
	now := c.now().UTC()
	_, end := headlines.DayWindow(now)
	ttl := end.Sub(now)
	if ttl < time.Minute {
		ttl = time.Minute
	}
	return ttl
}
