package segmentcache

import (
	"slices"

	"trackalign/internal/span"
)

// AllTime is the key of a range that covers the whole stream.
var AllTime = span.Span{Start: 0, End: span.Forever}

// Entry pairs a scanned range with the segments detected inside it.
type Entry struct {
	Range    span.Span
	Segments []span.Span
}

func (e Entry) clone() Entry {
	return Entry{Range: e.Range, Segments: slices.Clone(e.Segments)}
}

// RangeIndex keeps entries ordered by range start, wider ranges first on ties.
type RangeIndex struct {
	entries []Entry
}

// Entries returns a copy of the ordered entries.
func (x *RangeIndex) Entries() []Entry {
	out := make([]Entry, len(x.entries))
	for i, e := range x.entries {
		out[i] = e.clone()
	}
	return out
}

// Len returns the number of stored ranges.
func (x *RangeIndex) Len() int {
	return len(x.entries)
}

// Insert stores segments for rng, clipped to it.
func (x *RangeIndex) Insert(rng span.Span, segments []span.Span) {
	entry := Entry{Range: rng, Segments: span.Clip(segments, rng)}
	i, _ := slices.BinarySearchFunc(x.entries, entry, compareEntries)
	x.entries = slices.Insert(x.entries, i, entry)
}

// allTime returns the segments of the all-time entry when present.
func (x *RangeIndex) allTime() ([]span.Span, bool) {
	for _, e := range x.entries {
		if e.Range == AllTime {
			return e.Segments, true
		}
	}
	return nil, false
}

// Simplify drops ranges contained in others and concatenates overlapping or
// adjacent ranges into one. Segments are never merged with each other, so
// every query answers identically before and after. Simplify is idempotent.
func (x *RangeIndex) Simplify() {
	slices.SortStableFunc(x.entries, compareEntries)
	out := make([]Entry, 0, len(x.entries))
	for _, e := range x.entries {
		if n := len(out); n > 0 {
			last := &out[n-1]
			if last.Range.Contains(e.Range) {
				continue
			}
			if e.Range.Start <= last.Range.End {
				tail := span.Span{Start: last.Range.End, End: e.Range.End}
				last.Segments = append(last.Segments, span.Clip(e.Segments, tail)...)
				last.Range.End = e.Range.End
				continue
			}
		}
		out = append(out, e.clone())
	}
	x.entries = out
}

func compareEntries(a, b Entry) int {
	switch {
	case a.Range.Start < b.Range.Start:
		return -1
	case a.Range.Start > b.Range.Start:
		return 1
	case a.Range.End > b.Range.End:
		return -1
	case a.Range.End < b.Range.End:
		return 1
	}
	return 0
}
