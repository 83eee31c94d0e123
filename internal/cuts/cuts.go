// Package cuts describes how to rebuild a track on another timeline: which
// source intervals to copy to which target positions, and where silence or
// empty time has to be injected in between.
package cuts

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"trackalign/internal/span"
)

// Part is one step of a rendered plan: a Cut or an Empty. The set is closed.
type Part interface {
	isPart()
	// Length returns the target time the part occupies, or span.Forever.
	Length() time.Duration
}

// Cut copies Source to the target timeline starting at TargetStart.
type Cut struct {
	Source      span.Span     `json:"source"`
	TargetStart time.Duration `json:"target_start"`
}

func (Cut) isPart() {}

// Length implements Part.
func (c Cut) Length() time.Duration { return c.Source.Duration() }

// Target returns the span the cut occupies on the target timeline.
func (c Cut) Target() span.Span {
	return c.Source.Shift(c.Offset())
}

// Offset returns TargetStart - Source.Start.
func (c Cut) Offset() time.Duration {
	return c.TargetStart - c.Source.Start
}

// Unbounded reports whether the cut copies until the end of the source.
func (c Cut) Unbounded() bool {
	return c.Source.Open()
}

func (c Cut) String() string {
	return fmt.Sprintf("%s->%s", c.Source, c.TargetStart)
}

// Empty is target time with no source data.
type Empty struct {
	Duration time.Duration
}

func (Empty) isPart() {}

// Length implements Part.
func (e Empty) Length() time.Duration { return e.Duration }

// Cuts is an ordered, normalized list of cuts. The zero value is the
// identity plan.
type Cuts struct {
	cuts []Cut
}

// New normalizes cuts: zero-length cuts are dropped, a cut overlapping the
// next one on the target timeline is shortened, and contiguous cuts with the
// same offset are merged.
func New(list ...Cut) Cuts {
	out := make([]Cut, 0, len(list))
	for _, c := range list {
		if !c.Source.Valid() {
			continue
		}
		if n := len(out); n > 0 {
			prev := &out[n-1]
			if prevEnd := prev.Target().End; prevEnd > c.TargetStart {
				prev.Source.End = prev.Source.Start + (c.TargetStart - prev.TargetStart)
				if !prev.Source.Valid() {
					out = out[:n-1]
				}
			}
		}
		if n := len(out); n > 0 {
			prev := &out[n-1]
			if prev.Source.End == c.Source.Start && prev.Offset() == c.Offset() {
				prev.Source.End = c.Source.End
				continue
			}
		}
		out = append(out, c)
	}
	return Cuts{cuts: out}
}

// List returns a copy of the cuts.
func (c Cuts) List() []Cut {
	return append([]Cut(nil), c.cuts...)
}

// Len returns the number of cuts.
func (c Cuts) Len() int {
	return len(c.cuts)
}

// OptionalOffset returns the plan as a single offset when it consists of
// exactly one unbounded cut.
func (c Cuts) OptionalOffset() (time.Duration, bool) {
	if len(c.cuts) != 1 || !c.cuts[0].Unbounded() {
		return 0, false
	}
	return c.cuts[0].Offset(), true
}

// IsIdentity reports whether applying the plan changes nothing.
func (c Cuts) IsIdentity() bool {
	if len(c.cuts) == 0 {
		return true
	}
	return len(c.cuts) == 1 && c.cuts[0].Source == span.Span{Start: 0, End: span.Forever} && c.cuts[0].TargetStart == 0
}

// Parts returns the cuts in target order with an Empty for every positive
// gap before a cut, including one before the first cut.
func (c Cuts) Parts() []Part {
	parts := make([]Part, 0, 2*len(c.cuts))
	var pos time.Duration
	for _, cut := range c.cuts {
		if cut.TargetStart > pos {
			parts = append(parts, Empty{Duration: cut.TargetStart - pos})
		}
		parts = append(parts, cut)
		if cut.Unbounded() {
			break
		}
		pos = cut.Target().End
	}
	return parts
}

// Key returns a stable textual form for cache keys.
func (c Cuts) Key() string {
	var b strings.Builder
	for i, cut := range c.cuts {
		if i > 0 {
			b.WriteByte(';')
		}
		fmt.Fprintf(&b, "%d-%d@%d", cut.Source.Start, cut.Source.End, cut.TargetStart)
	}
	return b.String()
}

func (c Cuts) String() string {
	if offset, ok := c.OptionalOffset(); ok {
		return "offset " + offset.String()
	}
	parts := make([]string, len(c.cuts))
	for i, cut := range c.cuts {
		parts[i] = cut.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// MarshalJSON encodes the cut list.
func (c Cuts) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.List())
}

// UnmarshalJSON decodes and normalizes a cut list.
func (c *Cuts) UnmarshalJSON(data []byte) error {
	var list []Cut
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*c = New(list...)
	return nil
}
