package timeline

import (
	"context"
	"time"

	"trackalign/internal/segmentcache"
	"trackalign/internal/span"
)

// CachedSource answers black segment requests from a segment cache, running
// Detect only for ranges the cache does not cover yet.
type CachedSource struct {
	Cache  *segmentcache.Cache
	Config segmentcache.Config
	Detect segmentcache.ComputeFunc
}

// Blacks implements Source.
func (s CachedSource) Blacks(ctx context.Context, rng span.Span) ([]span.Span, bool, error) {
	return s.Cache.Query(ctx, s.Config, rng, s.Detect)
}

// StaticSource serves a fixed list of black segments for a stream of length
// Total.
type StaticSource struct {
	Segments []span.Span
	Total    time.Duration
}

// Blacks implements Source.
func (s StaticSource) Blacks(_ context.Context, rng span.Span) ([]span.Span, bool, error) {
	if rng.Start >= s.Total {
		return nil, false, nil
	}
	return span.Clip(s.Segments, rng), true, nil
}

// FromBlacks builds a complete timeline of length total from known blacks.
func FromBlacks(blacks []span.Span, total time.Duration) (*Timeline, error) {
	tl := New(context.Background(), StaticSource{Segments: blacks, Total: total}, total, WithChunk(max(total, DefaultChunk)))
	if _, err := tl.All(); err != nil {
		return nil, err
	}
	return tl, nil
}
