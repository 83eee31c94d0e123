package segmentcache

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"trackalign/internal/logging"
	"trackalign/internal/span"
)

// ComputeFunc scans rng and returns the segments found inside it. rng.End may
// be span.Forever, meaning "until the end of the stream". ok is false when the
// stream ended before rng.Start, so nothing could be scanned.
type ComputeFunc func(ctx context.Context, rng span.Span) (segments []span.Span, ok bool, err error)

// Cache holds the range indexes of one input file, keyed by detector config.
type Cache struct {
	path    string
	logger  *slog.Logger
	mu      sync.Mutex
	indexes map[Config]*RangeIndex
	dirty   bool
}

// Open loads the cache stored at path. A missing file yields an empty cache;
// an unreadable one is logged and also yields an empty cache. An empty path
// keeps the cache in memory only.
func Open(path string, logger *slog.Logger) *Cache {
	logger = logging.NewComponentLogger(logger, "segmentcache")
	c := &Cache{
		path:    strings.TrimSpace(path),
		logger:  logger,
		indexes: make(map[Config]*RangeIndex),
	}
	if c.path == "" {
		return c
	}
	if err := c.load(); err != nil {
		logging.WarnWithContext(logger, "failed to load segment cache", "segmentcache_load_failed",
			logging.String("path", c.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete the cache file if this persists"),
			logging.String(logging.FieldImpact, "black segments will be detected again"))
		c.indexes = make(map[Config]*RangeIndex)
	}
	return c
}

// Path returns the backing file path.
func (c *Cache) Path() string {
	return c.path
}

// Query returns the segments inside rng for cfg, computing and caching only
// the parts of rng no cached range covers. ok is false when compute reports
// the stream exhausted before rng was satisfied.
func (c *Cache) Query(ctx context.Context, cfg Config, rng span.Span, compute ComputeFunc) ([]span.Span, bool, error) {
	if !rng.Valid() {
		return nil, false, fmt.Errorf("query %s: %w", rng, span.ErrInvalidSpan)
	}
	if compute == nil {
		return nil, false, fmt.Errorf("query %s: compute function is required", rng)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.index(cfg)
	if segments, ok := idx.allTime(); ok {
		return span.Clip(segments, rng), true, nil
	}

	filled := false
	for _, gap := range idx.gaps(rng) {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		c.logger.Debug("scanning uncovered range",
			logging.Stringer("config", cfg),
			logging.Stringer("range", gap))
		segments, ok, err := compute(ctx, gap)
		if err != nil {
			return nil, false, fmt.Errorf("compute %s: %w", gap, err)
		}
		if !ok {
			if !gap.Open() {
				c.logger.Debug("stream exhausted before range", logging.Stringer("range", gap))
				return nil, false, nil
			}
			segments = nil
		}
		idx.Insert(gap, segments)
		c.dirty = true
		filled = true
	}
	if filled && rng.Open() {
		idx.Simplify()
	}
	return idx.collect(rng), true, nil
}

// Simplify merges the ranges of every config.
func (c *Cache) Simplify() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, idx := range c.indexes {
		before := idx.Len()
		idx.Simplify()
		if idx.Len() != before {
			c.dirty = true
		}
	}
}

// Configs returns the cached detector configs in a stable order.
func (c *Cache) Configs() []Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sortedConfigs()
}

// Entries returns the ranges cached for cfg.
func (c *Cache) Entries(cfg Config) []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx, ok := c.indexes[cfg]
	if !ok {
		return nil
	}
	return idx.Entries()
}

func (c *Cache) index(cfg Config) *RangeIndex {
	idx, ok := c.indexes[cfg]
	if !ok {
		idx = &RangeIndex{}
		c.indexes[cfg] = idx
	}
	return idx
}

func (c *Cache) sortedConfigs() []Config {
	configs := make([]Config, 0, len(c.indexes))
	for cfg, idx := range c.indexes {
		if idx.Len() == 0 {
			continue
		}
		configs = append(configs, cfg)
	}
	slices.SortFunc(configs, func(a, b Config) int { return strings.Compare(a.String(), b.String()) })
	return configs
}

// gaps returns the sub-ranges of rng that no entry covers, in order.
func (x *RangeIndex) gaps(rng span.Span) []span.Span {
	var gaps []span.Span
	cursor := rng.Start
	for _, e := range x.entries {
		if cursor >= rng.End || e.Range.Start >= rng.End {
			break
		}
		if e.Range.End <= cursor {
			continue
		}
		if e.Range.Start > cursor {
			gaps = append(gaps, span.Span{Start: cursor, End: e.Range.Start})
		}
		cursor = e.Range.End
	}
	if cursor < rng.End {
		gaps = append(gaps, span.Span{Start: cursor, End: rng.End})
	}
	return gaps
}

// collect concatenates the segments of the entries covering rng. Where
// entries overlap the earlier one wins.
func (x *RangeIndex) collect(rng span.Span) []span.Span {
	out := []span.Span{}
	cursor := rng.Start
	for _, e := range x.entries {
		if cursor >= rng.End || e.Range.Start > cursor {
			break
		}
		if e.Range.End <= cursor {
			continue
		}
		out = append(out, span.Clip(e.Segments, span.Span{Start: cursor, End: rng.End})...)
		cursor = e.Range.End
	}
	return out
}
