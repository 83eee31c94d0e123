package matcher

import (
	"fmt"
	"log/slog"
	"time"

	"trackalign/internal/logging"
	"trackalign/internal/span"
	"trackalign/internal/timeline"
)

const (
	DefaultBootstrapTargetScenes = 3
	DefaultBootstrapInputOffsets = 3
)

// Options tunes the matcher. Zero values select the defaults.
type Options struct {
	// BootstrapTargetScenes is how many leading target scenes the bootstrap tries.
	BootstrapTargetScenes int
	// BootstrapInputOffsets is how many input starting points (skipping
	// scene/black pairs) are tried per target scene.
	BootstrapInputOffsets int
	// MinScore rejects alignments whose mean accuracy falls below it.
	MinScore float64
}

// Match pairs an input part with the target part it maps to. Both parts have
// the same kind.
type Match struct {
	Input  timeline.Part `json:"input"`
	Target timeline.Part `json:"target"`
}

// Alignment is the result of a successful Align.
type Alignment struct {
	Matches  []Match
	Accuracy Accuracy
	Steps    int
}

// Matcher aligns timelines. It holds no per-alignment state.
type Matcher struct {
	opts   Options
	logger *slog.Logger
}

// New returns a matcher with opts applied over the defaults.
func New(opts Options, logger *slog.Logger) *Matcher {
	if opts.BootstrapTargetScenes <= 0 {
		opts.BootstrapTargetScenes = DefaultBootstrapTargetScenes
	}
	if opts.BootstrapInputOffsets <= 0 {
		opts.BootstrapInputOffsets = DefaultBootstrapInputOffsets
	}
	return &Matcher{opts: opts, logger: logging.NewComponentLogger(logger, "matcher")}
}

// Align matches input against target. Both timelines must already be in the
// same time base. Failures are reported as *AlignmentError unless a timeline
// itself failed to build.
func (m *Matcher) Align(input, target *timeline.Timeline) (Alignment, error) {
	run, ok := m.align(input, target, 0)
	if err := firstErr(input.Err(), target.Err()); err != nil {
		return Alignment{}, fmt.Errorf("read timelines: %w", err)
	}
	if !ok {
		return Alignment{}, &AlignmentError{
			Reason: "no bootstrap match between the leading scenes",
			Input:  input.Snapshot(),
			Target: target.Snapshot(),
		}
	}

	var sum float64
	for _, score := range run.scores {
		sum += score
	}
	alignment := Alignment{
		Matches: run.matches,
		Steps:   len(run.scores),
		Accuracy: Accuracy{
			Score:     sum / float64(len(run.scores)),
			Offset:    run.offset,
			HasOffset: true,
		},
	}
	m.logger.Info("timelines aligned",
		logging.Float64("accuracy", alignment.Accuracy.Score),
		logging.Duration("offset", alignment.Accuracy.Offset),
		logging.Int("matches", len(alignment.Matches)),
		logging.Int("steps", alignment.Steps))

	if alignment.Accuracy.Score < m.opts.MinScore {
		return alignment, &AlignmentError{
			Reason:   "accuracy below threshold",
			Score:    alignment.Accuracy.Score,
			Matches:  len(alignment.Matches),
			MinScore: m.opts.MinScore,
			Input:    input.Snapshot(),
			Target:   target.Snapshot(),
		}
	}
	return alignment, nil
}

type run struct {
	matches []Match
	scores  []float64
	offset  time.Duration
}

func (r *run) add(matches []Match, acc Accuracy) {
	r.matches = append(r.matches, matches...)
	r.scores = append(r.scores, acc.Score)
}

func (m *Matcher) align(input, target *timeline.Timeline, depth int) (run, bool) {
	in, tgt := input.Cursor(), target.Cursor()
	boot, ok := m.bootstrap(in, tgt)
	if !ok {
		return run{}, false
	}

	var out run
	out.offset = boot.acc.Offset

	lead := m.alignLeading(input, target, boot.inputIndex, boot.targetIndex, depth)
	out.matches = append(out.matches, lead.matches...)
	out.scores = append(out.scores, lead.scores...)

	out.add(boot.matches, boot.acc)
	for {
		matches, acc, ok := matchNext(in, tgt)
		if !ok {
			break
		}
		out.add(matches, acc)
	}
	return out, true
}

// alignLeading pairs the black parts right before the bootstrap match and
// then aligns whatever precedes them. Anything that cannot be aligned there
// is dropped.
func (m *Matcher) alignLeading(input, target *timeline.Timeline, inIdx, tgtIdx, depth int) run {
	var out run
	if inIdx == 0 || tgtIdx == 0 {
		return out
	}
	inPart, _ := input.At(inIdx - 1)
	tgtPart, _ := target.At(tgtIdx - 1)
	if inPart.Kind != timeline.Black || tgtPart.Kind != timeline.Black {
		return out
	}
	if inIdx > 1 && tgtIdx > 1 {
		if sub, ok := m.align(input.Head(inIdx-1), target.Head(tgtIdx-1), depth+1); ok {
			out = sub
		} else {
			m.logger.Debug("leading parts left unaligned",
				logging.Int("input_parts", inIdx-1),
				logging.Int("target_parts", tgtIdx-1),
				logging.Int("depth", depth))
		}
	}
	out.add([]Match{{Input: inPart, Target: tgtPart}}, Perfect)
	return out
}

type bootstrapResult struct {
	matches     []Match
	acc         Accuracy
	inputIndex  int
	targetIndex int
	inputNext   int
	targetNext  int
}

// bootstrap searches the first target scenes and input offsets for the best
// single-step match and moves both cursors just past it.
func (m *Matcher) bootstrap(in, tgt *timeline.Cursor) (bootstrapResult, bool) {
	base := in.Index()
	if p, ok := in.Peek(); ok && p.Kind == timeline.Black {
		base++
	}

	var (
		best  bootstrapResult
		found bool
	)
	for _, ti := range leadingScenes(tgt.Timeline(), m.opts.BootstrapTargetScenes) {
		for skip := 0; skip < m.opts.BootstrapInputOffsets; skip++ {
			ii := base + 2*skip
			trialIn, trialTgt := in.Timeline().Cursor(), tgt.Timeline().Cursor()
			trialIn.Seek(ii)
			trialTgt.Seek(ti)
			matches, acc, ok := matchNext(trialIn, trialTgt)
			if !ok {
				continue
			}
			if found && acc.Score <= best.acc.Score {
				continue
			}
			best = bootstrapResult{
				matches:     matches,
				acc:         acc,
				inputIndex:  ii,
				targetIndex: ti,
				inputNext:   trialIn.Index(),
				targetNext:  trialTgt.Index(),
			}
			found = true
		}
	}
	if !found {
		m.logger.Debug("bootstrap found no candidate", logging.Args(logging.DecisionAttrs("bootstrap", "failed", "no scene pair matched")...)...)
		return best, false
	}
	attrs := append(logging.DecisionAttrs("bootstrap", "matched", "highest accuracy candidate"),
		logging.Int("input_index", best.inputIndex),
		logging.Int("target_index", best.targetIndex),
		logging.Float64("accuracy", best.acc.Score),
		logging.Duration("offset", best.acc.Offset))
	m.logger.Debug("bootstrap match selected", logging.Args(attrs...)...)
	in.Seek(best.inputNext)
	tgt.Seek(best.targetNext)
	return best, true
}

func leadingScenes(tl *timeline.Timeline, limit int) []int {
	var out []int
	for i := 0; len(out) < limit; i++ {
		p, ok := tl.At(i)
		if !ok {
			break
		}
		if p.Kind == timeline.Scene {
			out = append(out, i)
		}
	}
	return out
}

// matchNext consumes the next target part and the input parts that match it.
// On a kind mismatch or exhaustion both cursors are left unchanged.
func matchNext(in, tgt *timeline.Cursor) ([]Match, Accuracy, bool) {
	inStart, tgtStart := in.Index(), tgt.Index()
	tp, ok := tgt.Next()
	if !ok {
		return nil, Accuracy{}, false
	}
	ip, ok := in.Next()
	if !ok || ip.Kind != tp.Kind {
		in.Seek(inStart)
		tgt.Seek(tgtStart)
		return nil, Accuracy{}, false
	}
	if tp.Kind == timeline.Black {
		return []Match{{Input: ip, Target: tp}}, Perfect, true
	}

	want := tp.Span.Duration()
	scenes := []timeline.Part{ip}
	got := ip.Span.Duration()
	for got < want {
		mark := in.Index()
		b, okBlack := in.Next()
		s, okScene := in.Next()
		if !okBlack || !okScene || b.Kind != timeline.Black || s.Kind != timeline.Scene {
			in.Seek(mark)
			break
		}
		scenes = append(scenes, s)
		got += s.Span.Duration()
	}
	if n := len(scenes); n > 1 {
		last := scenes[n-1].Span.Duration()
		if absDuration(got-last-want) < absDuration(got-want) {
			scenes = scenes[:n-1]
			got -= last
			in.Previous()
			in.Previous()
		}
	}

	matches := make([]Match, 0, len(scenes))
	pos := tp.Span.Start
	for i, s := range scenes {
		end := pos + s.Span.Duration()
		if i == len(scenes)-1 {
			end = tp.Span.End
		}
		matches = append(matches, Match{Input: s, Target: timeline.Part{Kind: timeline.Scene, Span: span.Span{Start: pos, End: end}}})
		pos = end
	}
	return matches, sceneAccuracy(got-want, tp.Span.Start-scenes[0].Span.Start), true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
