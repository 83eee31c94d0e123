package align

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"trackalign/internal/adjust"
	"trackalign/internal/cuts"
	"trackalign/internal/logging"
	"trackalign/internal/matcher"
	"trackalign/internal/media"
	"trackalign/internal/ratio"
	"trackalign/internal/segmentcache"
	"trackalign/internal/timeline"
)

// Detector builds black segment compute functions for video tracks.
type Detector interface {
	For(track media.Track, cfg segmentcache.Config, total time.Duration) segmentcache.ComputeFunc
}

// RunContext carries everything a run needs.
type RunContext struct {
	// OutputDir receives rendered tracks.
	OutputDir string
	// CachePath locates the segment cache of a file.
	CachePath func(*media.InputFile) string
	Detector  segmentcache.Config
	// Chunk is the timeline scan size; zero selects timeline.DefaultChunk.
	Chunk   time.Duration
	Matcher matcher.Options
	// ReviewAccuracy flags accepted alignments below it.
	ReviewAccuracy     float64
	KnownRatioMaxError time.Duration
	Renderers          map[media.Kind]adjust.Renderer
	Logger             *slog.Logger
}

// Engine computes adjustments between files.
type Engine struct {
	rc       RunContext
	detector Detector
	matcher  *matcher.Matcher
	caches   map[string]*segmentcache.Cache
	logger   *slog.Logger
}

// New returns an engine for rc. detector is only used in full mode.
func New(rc RunContext, detector Detector) *Engine {
	if rc.Logger == nil {
		rc.Logger = logging.NewNop()
	}
	return &Engine{
		rc:       rc,
		detector: detector,
		matcher:  matcher.New(rc.Matcher, rc.Logger),
		caches:   make(map[string]*segmentcache.Cache),
		logger:   logging.NewComponentLogger(rc.Logger, "align"),
	}
}

// Result is the outcome of ComputeAdjustments.
type Result struct {
	Mode  Mode
	Ratio ratio.Detection
	Cuts  cuts.Cuts
	// Accuracy is only set once an alignment ran; see Aligned.
	Accuracy matcher.Accuracy
	Matches  int
	// Aligned reports whether the matcher ran, including runs that were
	// rejected for low accuracy.
	Aligned bool
	// NeedsManualCheck is set when the alignment was accepted with an
	// accuracy below the review threshold.
	NeedsManualCheck bool

	rc *RunContext
}

// DetectRatio returns the ratio for mode. It fails with
// ratio.ErrDetectionImpossible when no strategy applies.
func (e *Engine) DetectRatio(ctx context.Context, input, target *media.InputFile, mode Mode) (ratio.Detection, error) {
	det, ok := ratio.Detect(input, target, mode.strategies(e.rc.KnownRatioMaxError)...)
	if !ok {
		return ratio.Detection{}, fmt.Errorf("%w: %s -> %s", ratio.ErrDetectionImpossible, filepath.Base(input.Path), filepath.Base(target.Path))
	}
	logging.WithContext(ctx, e.logger).Info("ratio detected",
		logging.String("input", filepath.Base(input.Path)),
		logging.String("target", filepath.Base(target.Path)),
		logging.String("mode", string(mode)),
		logging.String("strategy", det.Strategy),
		logging.String("ratio", det.Multiplier.String()),
	)
	return det, nil
}

// ComputeAdjustments derives the corrections mapping input onto target.
// Alignment failures are returned as *matcher.AlignmentError together with
// the partial result.
func (e *Engine) ComputeAdjustments(ctx context.Context, input, target *media.InputFile, mode Mode) (Result, error) {
	res := Result{Mode: mode, rc: &e.rc}
	det, err := e.DetectRatio(ctx, input, target, mode)
	if err != nil {
		return res, err
	}
	res.Ratio = det
	if mode != ModeFull {
		return res, nil
	}

	defer e.saveCaches(ctx)
	inTL, err := e.timeline(ctx, input)
	if err != nil {
		return res, err
	}
	targetTL, err := e.timeline(ctx, target)
	if err != nil {
		return res, err
	}

	alignment, err := e.matcher.Align(inTL.Scale(det.Multiplier), targetTL)
	res.Aligned = true
	res.Accuracy = alignment.Accuracy
	res.Matches = len(alignment.Matches)
	if err != nil {
		return res, err
	}
	res.Cuts = cuts.Plan(alignment.Matches)
	res.NeedsManualCheck = alignment.Accuracy.Score < e.rc.ReviewAccuracy

	logger := logging.WithContext(ctx, e.logger)
	if res.NeedsManualCheck {
		attrs := append(logging.DecisionAttrs("manual_check", "required", "accuracy below review threshold"),
			logging.Float64("accuracy", alignment.Accuracy.Score),
			logging.Float64("review_accuracy", e.rc.ReviewAccuracy),
			logging.String("input", filepath.Base(input.Path)),
			logging.String(logging.FieldImpact, "output timing may be off in places"),
			logging.String(logging.FieldErrorHint, "play the adjusted tracks against the target before use"),
		)
		logging.WarnWithContext(logger, "alignment needs manual check", "alignment_low_accuracy", attrs...)
	}
	logger.Info("adjustments computed",
		logging.String("input", filepath.Base(input.Path)),
		logging.String("cuts", res.Cuts.String()),
		logging.Float64("accuracy", alignment.Accuracy.Score),
		logging.Int("matches", res.Matches),
	)
	return res, nil
}

func (e *Engine) timeline(ctx context.Context, f *media.InputFile) (*timeline.Timeline, error) {
	if e.detector == nil {
		return nil, errors.New("full alignment requires a black segment detector")
	}
	video, ok := f.VideoTrack()
	if !ok {
		return nil, fmt.Errorf("%s has no video track to align on", filepath.Base(f.Path))
	}
	src := timeline.CachedSource{
		Cache:  e.cache(f),
		Config: e.rc.Detector,
		Detect: e.detector.For(video, e.rc.Detector, f.Duration()),
	}
	return timeline.New(ctx, src, f.Duration(), timeline.WithChunk(e.rc.Chunk)), nil
}

// cache returns the memoized segment cache of f.
func (e *Engine) cache(f *media.InputFile) *segmentcache.Cache {
	path := ""
	if e.rc.CachePath != nil {
		path = e.rc.CachePath(f)
	}
	key := f.Identity()
	if c, ok := e.caches[key]; ok {
		return c
	}
	c := segmentcache.Open(path, e.rc.Logger)
	e.caches[key] = c
	return c
}

// saveCaches persists every cache touched so far. Failures only cost
// detector time on the next run.
func (e *Engine) saveCaches(ctx context.Context) {
	for _, c := range e.caches {
		if c.Path() == "" {
			continue
		}
		if err := c.Save(); err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, e.logger), "segment cache not saved", "segmentcache_save_failed",
				logging.String("path", c.Path()),
				logging.Error(err),
				logging.String(logging.FieldImpact, "black segments will be detected again next run"),
				logging.String(logging.FieldErrorHint, "check permissions of the cache directory"),
			)
		}
	}
}

// Adjustments returns the pipeline applying the result: the ratio first,
// then the cut plan on the corrected timeline.
func (r Result) Adjustments() *adjust.Pipeline {
	var (
		nodes     []adjust.Node
		dir       string
		renderers map[media.Kind]adjust.Renderer
		logger    *slog.Logger
	)
	if r.rc != nil {
		dir, renderers, logger = r.rc.OutputDir, r.rc.Renderers, r.rc.Logger
	}
	if r.Mode == ModeStretch {
		nodes = append(nodes, adjust.NewStretch(ratio.StretchFactor{Multiplier: r.Ratio.Multiplier}))
	} else {
		nodes = append(nodes, adjust.NewDrift(ratio.LinearDrift{Multiplier: r.Ratio.Multiplier}))
	}
	if r.Mode == ModeFull {
		nodes = append(nodes, adjust.NewCutPlan(r.Cuts))
	}
	return adjust.NewPipeline(dir, renderers, logger, nodes...)
}
