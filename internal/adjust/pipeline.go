package adjust

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"trackalign/internal/fileutil"
	"trackalign/internal/logging"
	"trackalign/internal/media"
)

// ErrEmptyOutput reports a render that exited cleanly without output.
var ErrEmptyOutput = errors.New("renderer produced no output")

// ErrUnsupportedTrack reports a track kind without a renderer.
var ErrUnsupportedTrack = errors.New("no renderer for track kind")

// RenderError wraps a renderer failure for one track and adjustment.
type RenderError struct {
	Track      media.Track
	Adjustment string
	Err        error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s (%s): %v", e.Track, e.Adjustment, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Renderer writes adjusted copies of one kind of track.
type Renderer interface {
	// Render writes track with data applied to dest.
	Render(ctx context.Context, track media.Track, data Data, dest string) error
	// Open returns the track handle for a rendered file.
	Open(ctx context.Context, path string, like media.Track) (media.Track, error)
	// Extension returns the file extension, without dot, for outputs of track.
	Extension(track media.Track) string
}

// Pipeline applies an ordered list of adjustments.
type Pipeline struct {
	nodes     []Node
	renderers map[media.Kind]Renderer
	dir       string
	logger    *slog.Logger
}

// NewPipeline returns a pipeline writing outputs below dir.
func NewPipeline(dir string, renderers map[media.Kind]Renderer, logger *slog.Logger, nodes ...Node) *Pipeline {
	return &Pipeline{
		nodes:     nodes,
		renderers: renderers,
		dir:       dir,
		logger:    logging.NewComponentLogger(logger, "adjust"),
	}
}

// Nodes returns the adjustments in application order.
func (p *Pipeline) Nodes() []Node {
	return append([]Node(nil), p.nodes...)
}

// Changes reports whether any adjustment would alter a track.
func (p *Pipeline) Changes() bool {
	for _, n := range p.nodes {
		if n.Valid() {
			return true
		}
	}
	return false
}

// Apply folds the adjustments over track. The boolean is false when no
// adjustment applied, in which case track is returned unchanged.
func (p *Pipeline) Apply(ctx context.Context, track media.Track) (media.Track, bool, error) {
	logger := logging.WithContext(ctx, p.logger).With(logging.String(logging.FieldTrack, track.String()))
	if !p.Changes() {
		return track, false, nil
	}
	renderer, ok := p.renderers[track.Kind]
	if !ok {
		return track, false, fmt.Errorf("%w: %s", ErrUnsupportedTrack, track.Kind)
	}

	current := track
	changed := false
	for _, node := range p.nodes {
		if !node.Valid() {
			logger.Debug("adjustment skipped", logging.String("adjustment", node.Key()))
			continue
		}
		dest, err := p.outputPath(current, node.Key(), renderer.Extension(current))
		if err != nil {
			return track, false, err
		}
		reuse, err := fileutil.NonEmpty(dest)
		if err != nil {
			return track, false, fmt.Errorf("check output %s: %w", dest, err)
		}
		if reuse {
			logger.Debug("reusing rendered output", logging.String("adjustment", node.Key()), logging.String("path", dest))
		} else {
			if err := p.render(ctx, renderer, current, node, dest); err != nil {
				return track, false, err
			}
			logger.Info("track adjusted", logging.String("adjustment", node.Key()), logging.String("path", dest))
		}
		next, err := renderer.Open(ctx, dest, current)
		if err != nil {
			return track, false, &RenderError{Track: current, Adjustment: node.Key(), Err: err}
		}
		current = next
		changed = true
	}
	return current, changed, nil
}

// render writes to a partial file first so an interrupted run never leaves a
// file that looks complete.
func (p *Pipeline) render(ctx context.Context, renderer Renderer, track media.Track, node Node, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	ext := filepath.Ext(dest)
	partial := strings.TrimSuffix(dest, ext) + ".partial" + ext
	_ = os.Remove(partial)
	if err := renderer.Render(ctx, track, node.Data(), partial); err != nil {
		_ = os.Remove(partial)
		return &RenderError{Track: track, Adjustment: node.Key(), Err: err}
	}
	ok, err := fileutil.NonEmpty(partial)
	if err != nil || !ok {
		_ = os.Remove(partial)
		if err == nil {
			err = ErrEmptyOutput
		}
		return &RenderError{Track: track, Adjustment: node.Key(), Err: err}
	}
	if err := os.Rename(partial, dest); err != nil {
		return fmt.Errorf("finalize output: %w", err)
	}
	return nil
}

func (p *Pipeline) outputPath(track media.Track, key, ext string) (string, error) {
	info, err := os.Stat(track.Path)
	if err != nil {
		return "", fmt.Errorf("stat track source: %w", err)
	}
	sum := sha256.Sum256(fmt.Appendf(nil, "%s\n%d\n%d\n%d\n%s", track.Path, track.Stream, info.Size(), info.ModTime().UnixNano(), key))
	base := strings.TrimSuffix(filepath.Base(track.Path), filepath.Ext(track.Path))
	name := fmt.Sprintf("%s.%d.%s.%s", base, track.Stream, hex.EncodeToString(sum[:8]), strings.TrimPrefix(ext, "."))
	return filepath.Join(p.dir, name), nil
}
