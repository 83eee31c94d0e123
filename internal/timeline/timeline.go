package timeline

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"trackalign/internal/ratio"
	"trackalign/internal/span"
)

const (
	// DefaultChunk is how much of the stream one Source call scans.
	DefaultChunk = 5 * time.Minute
	// chunkJoinTolerance joins black runs split by a chunk boundary.
	chunkJoinTolerance = 50 * time.Millisecond
)

// Source yields the black segments detected inside rng, in order. ok is
// false once the stream ended before rng.Start.
type Source interface {
	Blacks(ctx context.Context, rng span.Span) (blacks []span.Span, ok bool, err error)
}

// generator produces the next parts of a timeline. more is false once the
// timeline is complete.
type generator interface {
	next() (parts []Part, more bool, err error)
}

// Timeline is a lazily produced, append-only sequence of parts.
type Timeline struct {
	gen   generator
	parts []Part
	done  bool
	err   error
	total time.Duration
}

// Option tunes a detected timeline.
type Option func(*detected)

// WithChunk sets the scan chunk size.
func WithChunk(chunk time.Duration) Option {
	return func(d *detected) {
		if chunk > 0 {
			d.chunk = chunk
		}
	}
}

// New returns a timeline built from src. total is the stream duration, or 0
// when unknown, in which case no trailing scene is produced. ctx is used for
// every Source call the timeline makes; a cancelled context ends the
// timeline with Err set.
func New(ctx context.Context, src Source, total time.Duration, opts ...Option) *Timeline {
	d := &detected{ctx: ctx, src: src, total: total, chunk: DefaultChunk}
	for _, opt := range opts {
		opt(d)
	}
	return &Timeline{gen: d, total: total}
}

// FromParts returns a complete timeline over parts after validating them.
func FromParts(parts []Part) (*Timeline, error) {
	if err := Validate(parts); err != nil {
		return nil, err
	}
	var total time.Duration
	if n := len(parts); n > 0 {
		total = parts[n-1].Span.End
	}
	return &Timeline{parts: slices.Clone(parts), done: true, total: total}, nil
}

// At returns part i, producing parts as needed.
func (t *Timeline) At(i int) (Part, bool) {
	if i < 0 {
		return Part{}, false
	}
	for len(t.parts) <= i && !t.done {
		t.pull()
	}
	if i >= len(t.parts) {
		return Part{}, false
	}
	return t.parts[i], true
}

// Err returns the error that ended production early, if any.
func (t *Timeline) Err() error {
	return t.err
}

// Total returns the known stream duration, or 0.
func (t *Timeline) Total() time.Duration {
	return t.total
}

// Snapshot returns a copy of the parts produced so far.
func (t *Timeline) Snapshot() []Part {
	return slices.Clone(t.parts)
}

// All produces every remaining part and returns the full sequence.
func (t *Timeline) All() ([]Part, error) {
	for !t.done {
		t.pull()
	}
	return t.Snapshot(), t.err
}

// Cursor returns a cursor positioned before the first part.
func (t *Timeline) Cursor() *Cursor {
	return &Cursor{tl: t}
}

func (t *Timeline) pull() {
	parts, more, err := t.gen.next()
	t.parts = append(t.parts, parts...)
	if err != nil {
		t.err = err
		t.done = true
		return
	}
	if !more {
		t.done = true
	}
}

// Scale maps every part through m, turning input time into target time.
func (t *Timeline) Scale(m ratio.Multiplier) *Timeline {
	if m.IsIdentity() {
		return t
	}
	total := t.total
	if total > 0 {
		total = m.ScaleDuration(total)
	}
	return &Timeline{total: total, gen: &mapped{parent: t, limit: -1, fn: func(_ int, p Part) []Part {
		return []Part{{Kind: p.Kind, Span: span.Span{Start: m.ScaleDuration(p.Span.Start), End: m.ScaleDuration(p.Span.End)}}}
	}}}
}

// Shift delays every part by offset. A leading scene gets a synthetic black
// part of length offset in front of it; a leading black part is extended.
func (t *Timeline) Shift(offset time.Duration) (*Timeline, error) {
	if offset < 0 {
		return nil, fmt.Errorf("shift by %s: offset must not be negative", offset)
	}
	if offset == 0 {
		return t, nil
	}
	total := t.total
	if total > 0 {
		total += offset
	}
	return &Timeline{total: total, gen: &mapped{parent: t, limit: -1, fn: func(i int, p Part) []Part {
		if i > 0 {
			return []Part{{Kind: p.Kind, Span: p.Span.Shift(offset)}}
		}
		if p.Kind == Black {
			return []Part{{Kind: Black, Span: span.Span{Start: 0, End: p.Span.End + offset}}}
		}
		return []Part{
			{Kind: Black, Span: span.Span{Start: 0, End: offset}},
			{Kind: p.Kind, Span: p.Span.Shift(offset)},
		}
	}}}, nil
}

// Head returns a timeline limited to the first n parts.
func (t *Timeline) Head(n int) *Timeline {
	return &Timeline{gen: &mapped{parent: t, limit: max(n, 0), fn: func(_ int, p Part) []Part {
		return []Part{p}
	}}}
}

// mapped derives parts from a parent timeline one parent part at a time.
type mapped struct {
	parent *Timeline
	fn     func(i int, p Part) []Part
	limit  int // negative for no limit
	i      int
}

func (m *mapped) next() ([]Part, bool, error) {
	if m.limit >= 0 && m.i >= m.limit {
		return nil, false, nil
	}
	p, ok := m.parent.At(m.i)
	if !ok {
		return nil, false, m.parent.Err()
	}
	out := m.fn(m.i, p)
	m.i++
	return out, true, nil
}

// detected builds parts from a Source chunk by chunk.
type detected struct {
	ctx   context.Context
	src   Source
	total time.Duration
	chunk time.Duration

	pos  time.Duration
	end  time.Duration
	open *span.Span
	out  []Part
}

func (d *detected) next() ([]Part, bool, error) {
	d.out = nil
	if d.total > 0 && d.pos >= d.total {
		d.finish()
		return d.out, false, nil
	}
	if err := d.ctx.Err(); err != nil {
		return nil, false, err
	}
	rng := span.Span{Start: d.pos, End: d.pos + d.chunk}
	blacks, ok, err := d.src.Blacks(d.ctx, rng)
	if err != nil {
		return nil, false, fmt.Errorf("detect blacks in %s: %w", rng, err)
	}
	if !ok {
		d.finish()
		return d.out, false, nil
	}
	slices.SortFunc(blacks, func(a, b span.Span) int { return cmp.Compare(a.Start, b.Start) })
	for _, b := range blacks {
		if d.total > 0 {
			var inside bool
			if b, inside = b.RestrictIn(span.Span{Start: 0, End: d.total}); !inside {
				continue
			}
		}
		if d.open != nil && b.Start <= d.open.End+chunkJoinTolerance {
			d.open.End = max(d.open.End, b.End)
			continue
		}
		d.flush()
		d.open = &span.Span{Start: b.Start, End: b.End}
	}
	if d.open != nil && d.open.End < rng.End-chunkJoinTolerance {
		d.flush()
	}
	d.pos = rng.End
	return d.out, true, nil
}

// flush emits the pending black run, preceded by the scene before it.
func (d *detected) flush() {
	if d.open == nil {
		return
	}
	b := *d.open
	d.open = nil
	if d.end == 0 && b.Start <= chunkJoinTolerance {
		b.Start = 0
	}
	if d.end > 0 && b.Start <= d.end {
		return
	}
	if b.Start > d.end {
		d.out = append(d.out, Part{Kind: Scene, Span: span.Span{Start: d.end, End: b.Start}})
	}
	d.out = append(d.out, Part{Kind: Black, Span: b})
	d.end = b.End
}

func (d *detected) finish() {
	d.flush()
	if d.total > d.end {
		d.out = append(d.out, Part{Kind: Scene, Span: span.Span{Start: d.end, End: d.total}})
		d.end = d.total
	}
}
