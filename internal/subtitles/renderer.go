package subtitles

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"trackalign/internal/adjust"
	"trackalign/internal/logging"
	"trackalign/internal/media"
)

type commandRunner func(ctx context.Context, name string, args ...string) error

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Renderer re-times subtitle tracks. It implements adjust.Renderer.
// Standalone .srt files are read directly; embedded streams are first
// extracted to SRT with ffmpeg.
type Renderer struct {
	ffmpeg string
	logger *slog.Logger
	run    commandRunner
}

// NewRenderer returns a subtitle renderer using ffmpegBinary for extraction.
func NewRenderer(ffmpegBinary string, logger *slog.Logger) *Renderer {
	return &Renderer{
		ffmpeg: ffmpegBinary,
		logger: logging.NewComponentLogger(logger, "subtitle-render"),
		run:    defaultCommandRunner,
	}
}

// WithCommandRunner replaces the process runner, for tests.
func (r *Renderer) WithCommandRunner(run commandRunner) {
	if r != nil && run != nil {
		r.run = run
	}
}

// Extension implements adjust.Renderer.
func (r *Renderer) Extension(media.Track) string { return "srt" }

// Render implements adjust.Renderer.
func (r *Renderer) Render(ctx context.Context, track media.Track, data adjust.Data, dest string) error {
	if track.Kind != media.Subtitle {
		return fmt.Errorf("%w: %s", adjust.ErrUnsupportedTrack, track.Kind)
	}
	cues, err := r.load(ctx, track, dest)
	if err != nil {
		return err
	}
	before := len(cues)
	switch d := data.(type) {
	case adjust.Drift:
		cues = Scale(cues, d.Multiplier)
	case adjust.Stretch:
		cues = Scale(cues, d.Multiplier)
	case adjust.CutPlan:
		cues = ApplyCuts(cues, d.Cuts)
	default:
		return fmt.Errorf("render subtitles: unsupported adjustment %T", data)
	}
	r.logger.Debug("subtitles re-timed",
		logging.String(logging.FieldTrack, track.String()),
		logging.String("adjustment", data.Key()),
		logging.Int("cues_in", before),
		logging.Int("cues_out", len(cues)),
	)
	return WriteFile(dest, cues)
}

func (r *Renderer) load(ctx context.Context, track media.Track, dest string) ([]Cue, error) {
	if track.Standalone() && strings.EqualFold(filepath.Ext(track.Path), ".srt") {
		return ParseFile(track.Path)
	}
	extracted := strings.TrimSuffix(dest, filepath.Ext(dest)) + ".source.srt"
	defer os.Remove(extracted)
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", track.Path,
		"-map", fmt.Sprintf("0:%d", track.Stream),
		"-c:s", "srt",
		extracted,
	}
	if err := r.run(ctx, r.ffmpeg, args...); err != nil {
		return nil, fmt.Errorf("ffmpeg extract subtitles: %w", err)
	}
	return ParseFile(extracted)
}

// Open implements adjust.Renderer.
func (r *Renderer) Open(_ context.Context, path string, like media.Track) (media.Track, error) {
	if _, err := os.Stat(path); err != nil {
		return media.Track{}, fmt.Errorf("open rendered subtitles: %w", err)
	}
	out := like
	out.Path = path
	out.Stream = 0
	out.Codec = "subrip"
	return out, nil
}
