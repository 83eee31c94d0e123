package timeline

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"trackalign/internal/ratio"
	"trackalign/internal/span"
)

func sec(v float64) time.Duration { return span.Seconds(v) }

func scene(a, b float64) Part { return Part{Kind: Scene, Span: span.Must(sec(a), sec(b))} }

func black(a, b float64) Part { return Part{Kind: Black, Span: span.Must(sec(a), sec(b))} }

func blacks(pairs ...[2]float64) []span.Span {
	out := make([]span.Span, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, span.Must(sec(p[0]), sec(p[1])))
	}
	return out
}

type countingSource struct {
	StaticSource
	calls int
}

func (s *countingSource) Blacks(ctx context.Context, rng span.Span) ([]span.Span, bool, error) {
	s.calls++
	return s.StaticSource.Blacks(ctx, rng)
}

func mustAll(t *testing.T, tl *Timeline) []Part {
	t.Helper()
	parts, err := tl.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if err := Validate(parts); err != nil {
		t.Fatalf("timeline invariant broken: %v (%v)", err, parts)
	}
	return parts
}

func TestEdgeRules(t *testing.T) {
	tests := []struct {
		name   string
		blacks []span.Span
		total  float64
		want   []Part
	}{
		{
			name:   "leading black touches zero",
			blacks: blacks([2]float64{0, 2}),
			total:  10,
			want:   []Part{black(0, 2), scene(2, 10)},
		},
		{
			name:   "leading scene before first black",
			blacks: blacks([2]float64{3, 4}),
			total:  10,
			want:   []Part{scene(0, 3), black(3, 4), scene(4, 10)},
		},
		{
			name:   "black reaching the end",
			blacks: blacks([2]float64{3, 4}, [2]float64{9, 10}),
			total:  10,
			want:   []Part{scene(0, 3), black(3, 4), scene(4, 9), black(9, 10)},
		},
		{
			name:   "black past total is clipped",
			blacks: blacks([2]float64{3, 4}, [2]float64{9, 12}),
			total:  10,
			want:   []Part{scene(0, 3), black(3, 4), scene(4, 9), black(9, 10)},
		},
		{
			name:   "no blacks",
			blacks: nil,
			total:  10,
			want:   []Part{scene(0, 10)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl, err := FromBlacks(tt.blacks, sec(tt.total))
			if err != nil {
				t.Fatalf("FromBlacks: %v", err)
			}
			if got := mustAll(t, tl); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("parts = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChunkBoundaryMergesBlackRun(t *testing.T) {
	src := StaticSource{Segments: blacks([2]float64{100, 101}, [2]float64{295, 305}, [2]float64{450, 451}), Total: sec(600)}
	tl := New(context.Background(), src, sec(600), WithChunk(300*time.Second))

	want := []Part{
		scene(0, 100), black(100, 101), scene(101, 295), black(295, 305),
		scene(305, 450), black(450, 451), scene(451, 600),
	}
	if got := mustAll(t, tl); !reflect.DeepEqual(got, want) {
		t.Fatalf("parts = %v, want %v", got, want)
	}
}

func TestChunkBoundaryToleratesSmallGap(t *testing.T) {
	src := StaticSource{Segments: blacks([2]float64{290, 299.98}, [2]float64{300, 310}), Total: sec(600)}
	tl := New(context.Background(), src, sec(600), WithChunk(300*time.Second))

	want := []Part{scene(0, 290), black(290, 310), scene(310, 600)}
	if got := mustAll(t, tl); !reflect.DeepEqual(got, want) {
		t.Fatalf("parts = %v, want %v", got, want)
	}
}

func TestUnknownTotalOmitsTrailingScene(t *testing.T) {
	src := StaticSource{Segments: blacks([2]float64{100, 101}, [2]float64{450, 451}), Total: sec(600)}
	tl := New(context.Background(), src, 0, WithChunk(300*time.Second))

	want := []Part{scene(0, 100), black(100, 101), scene(101, 450), black(450, 451)}
	if got := mustAll(t, tl); !reflect.DeepEqual(got, want) {
		t.Fatalf("parts = %v, want %v", got, want)
	}
}

func TestCursorNavigation(t *testing.T) {
	tl, err := FromBlacks(blacks([2]float64{3, 4}), sec(10))
	if err != nil {
		t.Fatalf("FromBlacks: %v", err)
	}
	c := tl.Cursor()

	if p, ok := c.Peek(); !ok || p != scene(0, 3) {
		t.Fatalf("Peek = %v %v", p, ok)
	}
	if p, _ := c.Next(); p != scene(0, 3) {
		t.Fatalf("Next = %v", p)
	}
	if p, _ := c.Next(); p != black(3, 4) {
		t.Fatalf("Next = %v", p)
	}
	if p, ok := c.Previous(); !ok || p != black(3, 4) {
		t.Fatalf("Previous = %v %v", p, ok)
	}
	fork := *c
	fork.Next()
	fork.Next()
	if c.Index() != 1 || fork.Index() != 3 {
		t.Fatalf("fork moved original: %d %d", c.Index(), fork.Index())
	}
	if !fork.Done() {
		t.Fatal("fork should be exhausted")
	}
	if _, ok := fork.Next(); ok {
		t.Fatal("Next past the end should fail")
	}
	c.Seek(2)
	if p, _ := c.Peek(); p != scene(4, 10) {
		t.Fatalf("Seek(2) peek = %v", p)
	}
	c.Reset()
	if _, ok := c.Previous(); ok {
		t.Fatal("Previous at start should fail")
	}
}

func TestReplayDoesNotRescan(t *testing.T) {
	src := &countingSource{StaticSource: StaticSource{Segments: blacks([2]float64{100, 101}, [2]float64{450, 451}), Total: sec(600)}}
	tl := New(context.Background(), src, sec(600), WithChunk(300*time.Second))

	c := tl.Cursor()
	if p, _ := c.Next(); p != scene(0, 100) {
		t.Fatalf("first part = %v", p)
	}
	if src.calls != 1 {
		t.Fatalf("expected lazy production after one chunk, got %d calls", src.calls)
	}
	for pass := 0; pass < 2; pass++ {
		c.Reset()
		for !c.Done() {
			c.Next()
		}
	}
	if src.calls != 2 {
		t.Fatalf("expected 2 source calls, got %d", src.calls)
	}
}

func TestCancelledContextSetsErr(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tl := New(ctx, StaticSource{Total: sec(600)}, sec(600))
	if _, ok := tl.At(0); ok {
		t.Fatal("expected no parts")
	}
	if !errors.Is(tl.Err(), context.Canceled) {
		t.Fatalf("Err = %v", tl.Err())
	}
}

func TestScale(t *testing.T) {
	tl, err := FromBlacks(blacks([2]float64{0, 2}), sec(10))
	if err != nil {
		t.Fatalf("FromBlacks: %v", err)
	}
	m, err := ratio.FromDuration(1.043)
	if err != nil {
		t.Fatal(err)
	}
	scaled := tl.Scale(m)
	want := []Part{black(0, 2.086), scene(2.086, 10.43)}
	if got := mustAll(t, scaled); !reflect.DeepEqual(got, want) {
		t.Fatalf("scaled = %v, want %v", got, want)
	}
	if scaled.Total() != sec(10.43) {
		t.Fatalf("scaled total = %s", scaled.Total())
	}
	if tl.Scale(ratio.Identity) != tl {
		t.Fatal("identity scale should return the same timeline")
	}
}

func TestShift(t *testing.T) {
	leadingScene, _ := FromBlacks(blacks([2]float64{3, 4}), sec(10))
	shifted, err := leadingScene.Shift(2 * time.Second)
	if err != nil {
		t.Fatalf("Shift: %v", err)
	}
	want := []Part{black(0, 2), scene(2, 5), black(5, 6), scene(6, 12)}
	if got := mustAll(t, shifted); !reflect.DeepEqual(got, want) {
		t.Fatalf("shifted = %v, want %v", got, want)
	}

	leadingBlack, _ := FromBlacks(blacks([2]float64{0, 2}), sec(10))
	shifted, err = leadingBlack.Shift(time.Second)
	if err != nil {
		t.Fatalf("Shift: %v", err)
	}
	want = []Part{black(0, 3), scene(3, 11)}
	if got := mustAll(t, shifted); !reflect.DeepEqual(got, want) {
		t.Fatalf("shifted = %v, want %v", got, want)
	}

	if _, err := leadingBlack.Shift(-time.Second); err == nil {
		t.Fatal("expected error for negative shift")
	}
}

func TestHead(t *testing.T) {
	tl, _ := FromBlacks(blacks([2]float64{3, 4}, [2]float64{6, 7}), sec(10))
	if got := mustAll(t, tl.Head(2)); !reflect.DeepEqual(got, []Part{scene(0, 3), black(3, 4)}) {
		t.Fatalf("Head(2) = %v", got)
	}
	if got := mustAll(t, tl.Head(0)); len(got) != 0 {
		t.Fatalf("Head(0) = %v", got)
	}
}

func TestFromPartsRejectsBrokenInvariants(t *testing.T) {
	cases := map[string][]Part{
		"not at zero": {scene(1, 3)},
		"same kind":   {scene(0, 3), scene(3, 4)},
		"gap":         {scene(0, 3), black(4, 5)},
	}
	for name, parts := range cases {
		if _, err := FromParts(parts); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := FromParts([]Part{black(0, 1), scene(1, 5)}); err != nil {
		t.Fatalf("valid parts rejected: %v", err)
	}
}
