package ffmpeg

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"time"

	"trackalign/internal/logging"
	"trackalign/internal/media"
	"trackalign/internal/segmentcache"
	"trackalign/internal/span"
)

var (
	blackLine = regexp.MustCompile(`black_start:\s*(-?[0-9.]+)\s+black_end:\s*(-?[0-9.]+)`)
	// progressFrame matches the frame counter of -progress output.
	progressFrame = regexp.MustCompile(`(?m)^frame=\s*([0-9]+)\s*$`)
)

// BlackDetector runs the blackdetect filter over time ranges of a video
// track.
type BlackDetector struct {
	binary string
	logger *slog.Logger
	run    commandRunner
}

// NewBlackDetector returns a detector invoking binary.
func NewBlackDetector(binary string, logger *slog.Logger) *BlackDetector {
	return &BlackDetector{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "blackdetect"),
		run:    defaultCommandRunner,
	}
}

// WithCommandRunner replaces the process runner, for tests.
func (d *BlackDetector) WithCommandRunner(r commandRunner) {
	if d != nil && r != nil {
		d.run = r
	}
}

// For returns the compute function scanning track with cfg. total is the
// probed stream duration; ranges starting at or past it report the stream
// exhausted. With total unknown (0) a range past the start reports the
// stream exhausted only when ffmpeg decoded no frame in it.
func (d *BlackDetector) For(track media.Track, cfg segmentcache.Config, total time.Duration) segmentcache.ComputeFunc {
	return func(ctx context.Context, rng span.Span) ([]span.Span, bool, error) {
		if total > 0 && rng.Start >= total {
			return nil, false, nil
		}
		blacks, frames, err := d.scan(ctx, track, cfg, rng)
		if err != nil {
			return nil, false, err
		}
		if total <= 0 && rng.Start > 0 && frames == 0 {
			d.logger.Debug("no frames decoded, stream ended",
				logging.String(logging.FieldTrack, track.String()),
				logging.String("range", rng.String()),
			)
			return nil, false, nil
		}
		return blacks, true, nil
	}
}

// Detect scans rng of track and returns the black segments found, in track
// time and clipped to rng.
func (d *BlackDetector) Detect(ctx context.Context, track media.Track, cfg segmentcache.Config, rng span.Span) ([]span.Span, error) {
	blacks, _, err := d.scan(ctx, track, cfg, rng)
	return blacks, err
}

// scan runs blackdetect over rng and also reports how many frames ffmpeg
// decoded there.
func (d *BlackDetector) scan(ctx context.Context, track media.Track, cfg segmentcache.Config, rng span.Span) ([]span.Span, int64, error) {
	if !cfg.Valid() {
		return nil, 0, fmt.Errorf("blackdetect: invalid thresholds %s", cfg)
	}
	if !rng.Valid() {
		return nil, 0, fmt.Errorf("blackdetect: %w: %s", span.ErrInvalidSpan, rng)
	}
	args := d.args(track, cfg, rng)
	started := time.Now()
	output, err := d.run(ctx, d.binary, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ffmpeg blackdetect %s: %w", rng, err)
	}
	blacks, err := parseBlacks(output, rng.Start)
	if err != nil {
		return nil, 0, err
	}
	frames := decodedFrames(output)
	blacks = span.Clip(blacks, rng)
	d.logger.Debug("black segments detected",
		logging.String(logging.FieldTrack, track.String()),
		logging.String("range", rng.String()),
		logging.Int("segments", len(blacks)),
		logging.Int("frames", int(frames)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return blacks, frames, nil
}

func (d *BlackDetector) args(track media.Track, cfg segmentcache.Config, rng span.Span) []string {
	args := []string{
		"-hide_banner",
		"-nostats",
		"-progress", "pipe:1",
		"-ss", seconds(rng.Start),
	}
	if !rng.Open() {
		args = append(args, "-t", seconds(rng.Duration()))
	}
	filter := fmt.Sprintf("blackdetect=d=%s:pic_th=%s:pix_th=%s",
		seconds(cfg.MinBlackDuration), formatFloat(cfg.PictureBlackRatio), formatFloat(cfg.PixelBlackThreshold))
	return append(args,
		"-i", track.Path,
		"-map", fmt.Sprintf("0:%d", track.Stream),
		"-vf", filter,
		"-an",
		"-sn",
		"-dn",
		"-f", "null",
		"-",
	)
}

// parseBlacks extracts black_start/black_end pairs. Input seeking resets
// timestamps, so every value is relative to offset.
func parseBlacks(output []byte, offset time.Duration) ([]span.Span, error) {
	var out []span.Span
	for _, m := range blackLine.FindAllSubmatch(output, -1) {
		start, err := strconv.ParseFloat(string(m[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("parse black_start %q: %w", m[1], err)
		}
		end, err := strconv.ParseFloat(string(m[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("parse black_end %q: %w", m[2], err)
		}
		s := span.Span{Start: offset + span.Seconds(max(start, 0)), End: offset + span.Seconds(max(end, 0))}
		if s.Valid() {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

// decodedFrames returns the highest frame count reported by -progress, or 0
// when ffmpeg reported none.
func decodedFrames(output []byte) int64 {
	var frames int64
	for _, m := range progressFrame.FindAllSubmatch(output, -1) {
		n, err := strconv.ParseInt(string(m[1]), 10, 64)
		if err == nil && n > frames {
			frames = n
		}
	}
	return frames
}
