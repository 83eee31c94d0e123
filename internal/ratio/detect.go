package ratio

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// ErrDetectionImpossible reports that no strategy could establish a ratio.
var ErrDetectionImpossible = errors.New("ratio detection impossible")

// Media exposes the metadata ratio detection reads.
type Media interface {
	// Duration returns the stream duration, or 0 when unknown.
	Duration() time.Duration
	// Framerate returns the video framerate when known.
	Framerate() (float64, bool)
}

// Strategy is one ratio detection heuristic. The set is closed: None,
// ByFramerate and ByDuration.
type Strategy interface {
	Name() string
	detect(input, target Media) (Multiplier, bool)
}

// Detection is the outcome of a successful Detect call.
type Detection struct {
	Multiplier Multiplier
	Strategy   string
}

// Detect tries strategies in order and returns the first applicable result.
func Detect(input, target Media, strategies ...Strategy) (Detection, bool) {
	for _, strategy := range strategies {
		if strategy == nil {
			continue
		}
		if m, ok := strategy.detect(input, target); ok {
			return Detection{Multiplier: m, Strategy: strategy.Name()}, true
		}
	}
	return Detection{}, false
}

// None always yields the identity multiplier.
type None struct{}

func (None) Name() string { return "none" }

func (None) detect(Media, Media) (Multiplier, bool) { return Identity, true }

// ByFramerate derives the ratio from input/target framerates. With KnownOnly
// the precise ratio snaps to the nearest entry of Known.
type ByFramerate struct {
	KnownOnly bool
}

func (s ByFramerate) Name() string {
	if s.KnownOnly {
		return "framerate_known"
	}
	return "framerate"
}

func (s ByFramerate) detect(input, target Media) (Multiplier, bool) {
	inRate, ok := input.Framerate()
	if !ok || inRate <= 0 {
		return Multiplier{}, false
	}
	targetRate, ok := target.Framerate()
	if !ok || targetRate <= 0 {
		return Multiplier{}, false
	}
	precise, err := OfDurationMultiplier(decimal.NewFromFloat(inRate).Div(decimal.NewFromFloat(targetRate)))
	if err != nil {
		return Multiplier{}, false
	}
	if !s.KnownOnly {
		return precise, true
	}
	return nearestKnown(precise), true
}

// nearestKnown has no acceptance bound: the closest entry always wins.
func nearestKnown(precise Multiplier) Multiplier {
	best := Identity
	bestDiff := decimal.Decimal{}
	for i, candidate := range Known() {
		diff := candidate.Speed().Sub(precise.Speed()).Abs()
		if i == 0 || diff.LessThan(bestDiff) {
			best, bestDiff = candidate, diff
		}
	}
	return best
}

// ByDuration derives the ratio from input/target durations. With KnownOnly
// it picks the Known entry whose predicted duration lands closest to the
// target, rejecting candidates off by more than MaxError.
type ByDuration struct {
	KnownOnly bool
	MaxError  time.Duration
}

func (s ByDuration) Name() string {
	if s.KnownOnly {
		return "duration_known"
	}
	return "duration"
}

func (s ByDuration) detect(input, target Media) (Multiplier, bool) {
	inDur, targetDur := input.Duration(), target.Duration()
	if inDur <= 0 || targetDur <= 0 {
		return Multiplier{}, false
	}
	if !s.KnownOnly {
		m, err := OfSpeedMultiplier(decimal.NewFromInt(int64(inDur)).Div(decimal.NewFromInt(int64(targetDur))))
		if err != nil {
			return Multiplier{}, false
		}
		return m, true
	}

	var (
		best    Multiplier
		bestErr = time.Duration(math.MaxInt64)
		found   bool
	)
	for _, candidate := range Known() {
		predicted := candidate.ScaleDuration(inDur)
		diff := predicted - targetDur
		if diff < 0 {
			diff = -diff
		}
		if diff > s.MaxError || diff >= bestErr {
			continue
		}
		best, bestErr, found = candidate, diff, true
	}
	return best, found
}

// Standard framerates seen across releases, as exact fractions.
var (
	film  = decimal.NewFromInt(24000).Div(decimal.NewFromInt(1001))
	cine  = decimal.NewFromInt(24)
	pal   = decimal.NewFromInt(25)
	rates = []decimal.Decimal{film, cine, pal}
)

// Known returns the historically common ratios: identity plus every
// pairing of 23.976, 24 and 25 fps, ordered identity first.
func Known() []Multiplier {
	out := []Multiplier{Identity}
	for _, in := range rates {
		for _, target := range rates {
			if in.Equal(target) {
				continue
			}
			m, err := OfDurationMultiplier(in.Div(target))
			if err != nil {
				continue
			}
			out = append(out, m)
		}
	}
	return out
}
