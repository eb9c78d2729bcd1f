package pricecache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/quantlab/internal/core"
)

type countingSource struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *countingSource) Name() string { return "fake" }

func (s *countingSource) FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) ([]core.OHLCV, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []core.OHLCV{
		{Symbol: symbol, Close: 100, Time: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{Symbol: symbol, Close: 101, Time: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)},
	}, nil
}

type recorder struct {
	hits, misses, fetches, failures int
}

func (r *recorder) RecordCacheLookup(hit bool) {
	if hit {
		r.hits++
	} else {
		r.misses++
	}
}

func (r *recorder) RecordPriceFetch(source string, err error) {
	r.fetches++
	if err != nil {
		r.failures++
	}
}

func TestKey(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "history/yahoo/KO/1d/20200101_20240630.json", Key("yahoo", "ko", start, end, "1d"))
	assert.Equal(t, "history/yahoo/KO/1d/open_latest.json", Key("yahoo", "KO", time.Time{}, time.Time{}, ""))
}

func TestCache_ReadThrough(t *testing.T) {
	backend, err := NewLocalFS(t.TempDir())
	require.NoError(t, err)
	src := &countingSource{}
	rec := &recorder{}
	c := New(src, backend, WithRecorder(rec))
	ctx := context.Background()

	first, err := c.FetchHistory(ctx, "KO", time.Time{}, time.Time{}, "1d")
	require.NoError(t, err)
	second, err := c.FetchHistory(ctx, "KO", time.Time{}, time.Time{}, "1d")
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls, "second call should be served from cache")
	require.Len(t, second, len(first))
	assert.True(t, first[1].Time.Equal(second[1].Time))
	assert.Equal(t, first[1].Close, second[1].Close)
	assert.Equal(t, 1, rec.hits)
	assert.Equal(t, 1, rec.misses)
	assert.Equal(t, 1, rec.fetches)
	assert.Equal(t, "fake", c.Name())
}

func TestCache_TTLExpiry(t *testing.T) {
	backend, _ := NewLocalFS(t.TempDir())
	src := &countingSource{}
	c := New(src, backend, WithTTL(time.Hour))

	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	ctx := context.Background()
	_, err := c.FetchHistory(ctx, "KO", time.Time{}, time.Time{}, "1d")
	require.NoError(t, err)

	now = now.Add(30 * time.Minute)
	_, _ = c.FetchHistory(ctx, "KO", time.Time{}, time.Time{}, "1d")
	assert.Equal(t, 1, src.calls)

	now = now.Add(2 * time.Hour)
	_, _ = c.FetchHistory(ctx, "KO", time.Time{}, time.Time{}, "1d")
	assert.Equal(t, 2, src.calls, "stale entry should be refetched")
}

func TestCache_SourceErrorNotCached(t *testing.T) {
	backend, _ := NewLocalFS(t.TempDir())
	src := &countingSource{err: core.ErrCollectorFailed}
	rec := &recorder{}
	c := New(src, backend, WithRecorder(rec))

	_, err := c.FetchHistory(context.Background(), "KO", time.Time{}, time.Time{}, "1d")
	assert.True(t, errors.Is(err, core.ErrCollectorFailed))
	assert.Equal(t, 1, rec.failures)

	keys, _ := backend.List(context.Background(), "history")
	assert.Empty(t, keys)
}

func TestCache_NilBackendPassesThrough(t *testing.T) {
	src := &countingSource{}
	rec := &recorder{}
	c := New(src, nil, WithRecorder(rec))

	for i := 0; i < 2; i++ {
		_, err := c.FetchHistory(context.Background(), "KO", time.Time{}, time.Time{}, "1d")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, src.calls)
	assert.Equal(t, 0, rec.hits+rec.misses)

	n, err := c.Purge(context.Background(), "")
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestCache_Purge(t *testing.T) {
	backend, _ := NewLocalFS(t.TempDir())
	src := &countingSource{}
	c := New(src, backend)
	ctx := context.Background()

	c.FetchHistory(ctx, "KO", time.Time{}, time.Time{}, "1d")
	c.FetchHistory(ctx, "PEP", time.Time{}, time.Time{}, "1d")

	n, err := c.Purge(ctx, "fake")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	c.FetchHistory(ctx, "KO", time.Time{}, time.Time{}, "1d")
	assert.Equal(t, 3, src.calls)
}
