// Package pricecache keeps fetched price history in a blob store so repeated
// backtests over the same range do not hit the upstream source again.
package pricecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/quantlab/internal/core"
)

// Source is the upstream price source, normally a collector.
type Source interface {
	Name() string
	FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) ([]core.OHLCV, error)
}

// Recorder receives cache and fetch outcomes. *metrics.Registry satisfies it.
type Recorder interface {
	RecordCacheLookup(hit bool)
	RecordPriceFetch(source string, err error)
}

type entry struct {
	FetchedAt time.Time    `json:"fetched_at"`
	Source    string       `json:"source"`
	Bars      []core.OHLCV `json:"bars"`
}

// Cache is a read-through cache in front of a Source. With a nil backend it
// passes every call through and only records fetch outcomes.
type Cache struct {
	source   Source
	backend  Backend
	ttl      time.Duration
	logger   *zap.Logger
	recorder Recorder
	now      func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL expires entries older than ttl. Zero keeps entries forever.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) {
		c.logger = l
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Cache) {
		c.recorder = r
	}
}

// New creates a cache in front of source.
func New(source Source, backend Backend, opts ...Option) *Cache {
	c := &Cache{
		source:  source,
		backend: backend,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name reports the upstream source name.
func (c *Cache) Name() string {
	return c.source.Name()
}

// Key returns the backend key for a request. Open-ended ranges use "open"
// and "latest" so they share one entry refreshed by the TTL.
func Key(source, symbol string, start, end time.Time, interval string) string {
	from, to := "open", "latest"
	if !start.IsZero() {
		from = start.UTC().Format("20060102")
	}
	if !end.IsZero() {
		to = end.UTC().Format("20060102")
	}
	if interval == "" {
		interval = "1d"
	}
	return fmt.Sprintf("history/%s/%s/%s/%s_%s.json",
		source, strings.ToUpper(symbol), interval, from, to)
}

// FetchHistory serves from the backend when a fresh entry exists and
// otherwise fetches from the source and stores the result. Backend failures
// are logged and never fail the fetch.
func (c *Cache) FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) ([]core.OHLCV, error) {
	if c.backend == nil {
		return c.fetch(ctx, symbol, start, end, interval)
	}

	key := Key(c.source.Name(), symbol, start, end, interval)
	if bars, ok := c.lookup(ctx, key); ok {
		c.recordLookup(true)
		c.logger.Debug("price cache hit", zap.String("key", key), zap.Int("bars", len(bars)))
		return bars, nil
	}
	c.recordLookup(false)

	bars, err := c.fetch(ctx, symbol, start, end, interval)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(entry{FetchedAt: c.now().UTC(), Source: c.source.Name(), Bars: bars})
	if err == nil {
		err = c.backend.Write(ctx, key, data)
	}
	if err != nil {
		c.logger.Warn("price cache write failed", zap.String("key", key), zap.Error(err))
	}
	return bars, nil
}

func (c *Cache) lookup(ctx context.Context, key string) ([]core.OHLCV, bool) {
	data, err := c.backend.Read(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.Warn("price cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.logger.Warn("price cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(e.FetchedAt) > c.ttl {
		return nil, false
	}
	if len(e.Bars) == 0 {
		return nil, false
	}
	return e.Bars, true
}

func (c *Cache) fetch(ctx context.Context, symbol string, start, end time.Time, interval string) ([]core.OHLCV, error) {
	bars, err := c.source.FetchHistory(ctx, symbol, start, end, interval)
	if c.recorder != nil {
		c.recorder.RecordPriceFetch(c.source.Name(), err)
	}
	return bars, err
}

func (c *Cache) recordLookup(hit bool) {
	if c.recorder != nil {
		c.recorder.RecordCacheLookup(hit)
	}
}

// Purge deletes every cached entry for source, or all entries when source is
// empty, and returns how many were removed.
func (c *Cache) Purge(ctx context.Context, source string) (int, error) {
	if c.backend == nil {
		return 0, nil
	}
	prefix := "history"
	if source != "" {
		prefix += "/" + source
	}
	keys, err := c.backend.List(ctx, prefix)
	if err != nil {
		return 0, err
	}
	for i, k := range keys {
		if err := c.backend.Delete(ctx, k); err != nil {
			return i, err
		}
	}
	return len(keys), nil
}
