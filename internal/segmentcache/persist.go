package segmentcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"trackalign/internal/fileutil"
	"trackalign/internal/logging"
	"trackalign/internal/span"
)

type fileConfig struct {
	PictureBlackRatio   float64       `json:"picture_black_ratio"`
	PixelBlackThreshold float64       `json:"pixel_black_threshold"`
	MinBlackDuration    time.Duration `json:"min_black_duration"`
}

// fileRange is null for the all-time key; End is null for an open tail.
type fileRange struct {
	Start time.Duration  `json:"start"`
	End   *time.Duration `json:"end"`
}

type fileEntry struct {
	Range    *fileRange  `json:"range"`
	Segments []span.Span `json:"segments"`
}

type fileIndex struct {
	Config fileConfig  `json:"config"`
	Ranges []fileEntry `json:"ranges"`
}

// Save writes the cache to disk when it changed since it was loaded.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.path == "" || !c.dirty {
		return nil
	}
	data, err := json.MarshalIndent(c.encode(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode segment cache: %w", err)
	}
	if err := fileutil.WriteFileAtomic(c.path, data); err != nil {
		return fmt.Errorf("persist segment cache: %w", err)
	}
	c.dirty = false
	c.logger.Debug("segment cache saved", logging.String("path", c.path))
	return nil
}

func (c *Cache) encode() []fileIndex {
	out := make([]fileIndex, 0, len(c.indexes))
	for _, cfg := range c.sortedConfigs() {
		idx := c.indexes[cfg]
		entry := fileIndex{
			Config: fileConfig{
				PictureBlackRatio:   cfg.PictureBlackRatio,
				PixelBlackThreshold: cfg.PixelBlackThreshold,
				MinBlackDuration:    cfg.MinBlackDuration,
			},
			Ranges: make([]fileEntry, 0, idx.Len()),
		}
		for _, e := range idx.entries {
			entry.Ranges = append(entry.Ranges, fileEntry{Range: encodeRange(e.Range), Segments: e.Segments})
		}
		out = append(out, entry)
	}
	return out
}

func encodeRange(rng span.Span) *fileRange {
	if rng == AllTime {
		return nil
	}
	out := &fileRange{Start: rng.Start}
	if !rng.Open() {
		end := rng.End
		out.End = &end
	}
	return out
}

func decodeRange(rng *fileRange) (span.Span, error) {
	if rng == nil {
		return AllTime, nil
	}
	end := span.Forever
	if rng.End != nil {
		end = *rng.End
	}
	return span.New(rng.Start, end)
}

func (c *Cache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache file: %w", err)
	}
	var stored []fileIndex
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}
	for _, file := range stored {
		cfg := Config(file.Config)
		if !cfg.Valid() {
			c.dropped("invalid detector config", cfg.String())
			continue
		}
		idx := c.index(cfg)
		for _, fe := range file.Ranges {
			rng, err := decodeRange(fe.Range)
			if err != nil {
				c.dropped(err.Error(), cfg.String())
				continue
			}
			if err := validateSegments(rng, fe.Segments); err != nil {
				c.dropped(err.Error(), cfg.String())
				continue
			}
			idx.Insert(rng, fe.Segments)
		}
	}
	return nil
}

func (c *Cache) dropped(reason, cfg string) {
	c.dirty = true
	logging.WarnWithContext(c.logger, "dropping malformed segment cache entry", "segmentcache_entry_invalid",
		logging.String("path", c.path),
		logging.String("config", cfg),
		logging.String("reason", reason),
		logging.String(logging.FieldErrorHint, "entry will be recomputed"),
		logging.String(logging.FieldImpact, "affected range is scanned again"))
}

func validateSegments(rng span.Span, segments []span.Span) error {
	var prevEnd time.Duration
	for i, s := range segments {
		if !s.Valid() || !rng.Contains(s) {
			return fmt.Errorf("segment %s outside range %s: %w", s, rng, span.ErrInvalidSpan)
		}
		if i > 0 && s.Start < prevEnd {
			return fmt.Errorf("segment %s overlaps its predecessor: %w", s, span.ErrInvalidSpan)
		}
		prevEnd = s.End
	}
	return nil
}
