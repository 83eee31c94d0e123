// Package span provides the half-open time interval used throughout the
// alignment engine to describe black segments, scenes, cache ranges and cuts.
package span

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Forever marks an open-ended span end ("until the end of the stream").
const Forever = time.Duration(math.MaxInt64)

// ErrInvalidSpan reports a span whose bounds violate 0 <= start < end.
var ErrInvalidSpan = errors.New("invalid span")

// Span is a half-open interval [Start, End) of track time.
type Span struct {
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
}

// New validates and returns a span.
func New(start, end time.Duration) (Span, error) {
	if start < 0 || end <= start {
		return Span{}, fmt.Errorf("%w: [%s, %s)", ErrInvalidSpan, start, end)
	}
	return Span{Start: start, End: end}, nil
}

// Must is New for literals known to be valid; it panics otherwise.
func Must(start, end time.Duration) Span {
	s, err := New(start, end)
	if err != nil {
		panic(err)
	}
	return s
}

// Valid reports whether the span satisfies its invariants.
func (s Span) Valid() bool {
	return s.Start >= 0 && s.End > s.Start
}

// Open reports whether the span extends to the end of the stream.
func (s Span) Open() bool {
	return s.End == Forever
}

// Duration returns End-Start, or Forever for open spans.
func (s Span) Duration() time.Duration {
	if s.Open() {
		return Forever
	}
	return s.End - s.Start
}

// Middle returns the midpoint of a bounded span.
func (s Span) Middle() time.Duration {
	return s.Start + s.Duration()/2
}

// FirstHalf returns [Start, Middle).
func (s Span) FirstHalf() Span {
	return Span{Start: s.Start, End: s.Middle()}
}

// SecondHalf returns [Middle, End).
func (s Span) SecondHalf() Span {
	return Span{Start: s.Middle(), End: s.End}
}

// Contains reports whether other lies entirely inside s.
func (s Span) Contains(other Span) bool {
	return other.Start >= s.Start && other.End <= s.End
}

// Intersects reports whether the two spans share any time.
func (s Span) Intersects(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// RestrictIn clips s to bounds. The boolean is false when nothing remains.
func (s Span) RestrictIn(bounds Span) (Span, bool) {
	out := Span{Start: max(s.Start, bounds.Start), End: min(s.End, bounds.End)}
	if out.End <= out.Start {
		return Span{}, false
	}
	return out, true
}

// Shift moves both bounds by offset. Open ends stay open.
func (s Span) Shift(offset time.Duration) Span {
	out := Span{Start: s.Start + offset, End: s.End}
	if !s.Open() {
		out.End = s.End + offset
	}
	return out
}

// Scale multiplies both bounds by factor. Open ends stay open.
func (s Span) Scale(factor float64) Span {
	out := Span{Start: scale(s.Start, factor), End: s.End}
	if !s.Open() {
		out.End = scale(s.End, factor)
	}
	return out
}

func (s Span) String() string {
	if s.Open() {
		return fmt.Sprintf("[%s, ∞)", s.Start)
	}
	return fmt.Sprintf("[%s, %s)", s.Start, s.End)
}

func scale(d time.Duration, factor float64) time.Duration {
	return time.Duration(math.Round(float64(d) * factor))
}

// Seconds converts a float number of seconds to a Duration rounded to the
// nearest microsecond, the precision detectors report at.
func Seconds(value float64) time.Duration {
	return time.Duration(math.Round(value*1e6)) * time.Microsecond
}

// Clip restricts each span to bounds and drops those left empty.
func Clip(spans []Span, bounds Span) []Span {
	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		if clipped, ok := s.RestrictIn(bounds); ok {
			out = append(out, clipped)
		}
	}
	return out
}
