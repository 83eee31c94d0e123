package matcher

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"trackalign/internal/span"
	"trackalign/internal/timeline"
)

func sec(v float64) time.Duration { return span.Seconds(v) }

func scene(a, b float64) timeline.Part {
	return timeline.Part{Kind: timeline.Scene, Span: span.Must(sec(a), sec(b))}
}

func black(a, b float64) timeline.Part {
	return timeline.Part{Kind: timeline.Black, Span: span.Must(sec(a), sec(b))}
}

func mustTimeline(t *testing.T, parts ...timeline.Part) *timeline.Timeline {
	t.Helper()
	tl, err := timeline.FromParts(parts)
	if err != nil {
		t.Fatalf("FromParts: %v", err)
	}
	return tl
}

func cursorsAt(in, tgt *timeline.Timeline, i, j int) (*timeline.Cursor, *timeline.Cursor) {
	ic, tc := in.Cursor(), tgt.Cursor()
	ic.Seek(i)
	tc.Seek(j)
	return ic, tc
}

func TestLeadingBlackAndSceneAlignPerfectly(t *testing.T) {
	input := mustTimeline(t, black(0, 2), scene(2, 10))
	target := mustTimeline(t, black(0, 2), scene(2, 10))

	got, err := New(Options{}, nil).Align(input, target)
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	want := []Match{
		{Input: black(0, 2), Target: black(0, 2)},
		{Input: scene(2, 10), Target: scene(2, 10)},
	}
	if !reflect.DeepEqual(got.Matches, want) {
		t.Fatalf("matches = %v, want %v", got.Matches, want)
	}
	if got.Accuracy.Score != 100 || got.Accuracy.Offset != 0 {
		t.Fatalf("accuracy = %v", got.Accuracy)
	}
}

func TestSceneLongerThanTargetIsNotAccumulated(t *testing.T) {
	input := mustTimeline(t, black(0, 2), scene(2, 10), black(10, 11), scene(11, 20))
	target := mustTimeline(t, black(0, 2), scene(2, 9), black(9, 10), scene(10, 19))

	in, tgt := cursorsAt(input, target, 1, 1)
	matches, acc, ok := matchNext(in, tgt)
	if !ok {
		t.Fatal("expected a match")
	}
	if want := []Match{{Input: scene(2, 10), Target: scene(2, 9)}}; !reflect.DeepEqual(matches, want) {
		t.Fatalf("matches = %v, want %v", matches, want)
	}
	if acc.Score != 98 {
		t.Fatalf("score = %v, want 98", acc.Score)
	}
	if in.Index() != 2 || tgt.Index() != 2 {
		t.Fatalf("cursors at %d/%d, want 2/2", in.Index(), tgt.Index())
	}
}

func TestSceneAccumulationSplitsTarget(t *testing.T) {
	input := mustTimeline(t, scene(0, 3), black(3, 4), scene(4, 8), black(8, 9), scene(9, 20))
	target := mustTimeline(t, scene(0, 7), black(7, 8), scene(8, 19))

	in, tgt := cursorsAt(input, target, 0, 0)
	matches, acc, ok := matchNext(in, tgt)
	if !ok {
		t.Fatal("expected a match")
	}
	want := []Match{
		{Input: scene(0, 3), Target: scene(0, 3)},
		{Input: scene(4, 8), Target: scene(3, 7)},
	}
	if !reflect.DeepEqual(matches, want) {
		t.Fatalf("matches = %v, want %v", matches, want)
	}
	if acc.Score != 100 || acc.Offset != 0 {
		t.Fatalf("accuracy = %v", acc)
	}
	if in.Index() != 3 {
		t.Fatalf("input cursor at %d, want 3", in.Index())
	}
}

func TestOverAccumulatedSceneIsRewound(t *testing.T) {
	input := mustTimeline(t, scene(0, 3), black(3, 4), scene(4, 13), black(13, 14), scene(14, 20))
	target := mustTimeline(t, scene(0, 4), black(4, 5), scene(5, 20))

	in, tgt := cursorsAt(input, target, 0, 0)
	matches, acc, ok := matchNext(in, tgt)
	if !ok {
		t.Fatal("expected a match")
	}
	if want := []Match{{Input: scene(0, 3), Target: scene(0, 4)}}; !reflect.DeepEqual(matches, want) {
		t.Fatalf("matches = %v, want %v", matches, want)
	}
	if acc.Score != 98 {
		t.Fatalf("score = %v, want 98", acc.Score)
	}
	if p, _ := in.Peek(); p != black(3, 4) {
		t.Fatalf("input cursor should rewind to the skipped black, at %v", p)
	}
}

func TestKindMismatchLeavesCursors(t *testing.T) {
	input := mustTimeline(t, scene(0, 3), black(3, 4))
	target := mustTimeline(t, black(0, 1), scene(1, 4))

	in, tgt := cursorsAt(input, target, 0, 0)
	if _, _, ok := matchNext(in, tgt); ok {
		t.Fatal("expected mismatch")
	}
	if in.Index() != 0 || tgt.Index() != 0 {
		t.Fatalf("cursors moved to %d/%d", in.Index(), tgt.Index())
	}
}

func TestBlackMatchIsPerfectRegardlessOfDuration(t *testing.T) {
	input := mustTimeline(t, black(0, 1), scene(1, 4))
	target := mustTimeline(t, black(0, 3), scene(3, 6))

	in, tgt := cursorsAt(input, target, 0, 0)
	_, acc, ok := matchNext(in, tgt)
	if !ok || acc != Perfect {
		t.Fatalf("accuracy = %v ok=%v", acc, ok)
	}
}

func TestAlignSkipsLeadingInputContent(t *testing.T) {
	input := mustTimeline(t, scene(0, 5), black(5, 6), scene(6, 16), black(16, 17), scene(17, 30), black(30, 31), scene(31, 40))
	target := mustTimeline(t, scene(0, 10), black(10, 11), scene(11, 24), black(24, 25), scene(25, 34))

	got, err := New(Options{}, nil).Align(input, target)
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	want := []Match{
		{Input: scene(6, 16), Target: scene(0, 10)},
		{Input: black(16, 17), Target: black(10, 11)},
		{Input: scene(17, 30), Target: scene(11, 24)},
		{Input: black(30, 31), Target: black(24, 25)},
		{Input: scene(31, 40), Target: scene(25, 34)},
	}
	if !reflect.DeepEqual(got.Matches, want) {
		t.Fatalf("matches = %v, want %v", got.Matches, want)
	}
	if got.Accuracy.Score != 100 || got.Accuracy.Offset != -6*time.Second {
		t.Fatalf("accuracy = %v", got.Accuracy)
	}
}

func TestAlignRecoversLeadingParts(t *testing.T) {
	input := mustTimeline(t, scene(0, 7), black(7, 8), scene(8, 18), black(18, 19), scene(19, 33))
	target := mustTimeline(t, scene(0, 4), black(4, 5), scene(5, 15), black(15, 16), scene(16, 30))

	got, err := New(Options{}, nil).Align(input, target)
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	want := []Match{
		{Input: scene(0, 7), Target: scene(0, 4)},
		{Input: black(7, 8), Target: black(4, 5)},
		{Input: scene(8, 18), Target: scene(5, 15)},
		{Input: black(18, 19), Target: black(15, 16)},
		{Input: scene(19, 33), Target: scene(16, 30)},
	}
	if !reflect.DeepEqual(got.Matches, want) {
		t.Fatalf("matches = %v, want %v", got.Matches, want)
	}
	if math.Abs(got.Accuracy.Score-98.8) > 1e-9 {
		t.Fatalf("score = %v, want 98.8", got.Accuracy.Score)
	}
	if got.Accuracy.Offset != -3*time.Second {
		t.Fatalf("offset = %s", got.Accuracy.Offset)
	}
}

func TestAlignIsDeterministic(t *testing.T) {
	build := func() (*timeline.Timeline, *timeline.Timeline) {
		return mustTimeline(t, scene(0, 7), black(7, 8), scene(8, 18), black(18, 19), scene(19, 33)),
			mustTimeline(t, scene(0, 4), black(4, 5), scene(5, 15), black(15, 16), scene(16, 30))
	}
	m := New(Options{}, nil)
	first, err := m.Align(build())
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := m.Align(build())
		if err != nil {
			t.Fatalf("Align: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %+v vs %+v", i, again, first)
		}
	}
}

func TestAlignFailsWithoutBootstrap(t *testing.T) {
	input := mustTimeline(t, black(0, 10))
	target := mustTimeline(t, scene(0, 4), black(4, 5), scene(5, 10))

	_, err := New(Options{}, nil).Align(input, target)
	if !errors.Is(err, ErrAlignmentFailed) {
		t.Fatalf("expected ErrAlignmentFailed, got %v", err)
	}
	var alignErr *AlignmentError
	if !errors.As(err, &alignErr) {
		t.Fatalf("expected *AlignmentError, got %T", err)
	}
	if len(alignErr.Input) != 1 || len(alignErr.Target) != 3 {
		t.Fatalf("diagnostic timelines = %v / %v", alignErr.Input, alignErr.Target)
	}
}

func TestAlignRejectsLowAccuracy(t *testing.T) {
	input := mustTimeline(t, scene(0, 10))
	target := mustTimeline(t, scene(0, 30))

	got, err := New(Options{MinScore: 80}, nil).Align(input, target)
	var alignErr *AlignmentError
	if !errors.As(err, &alignErr) {
		t.Fatalf("expected *AlignmentError, got %v", err)
	}
	if alignErr.Score != 60 || got.Accuracy.Score != 60 {
		t.Fatalf("score = %v / %v, want 60", alignErr.Score, got.Accuracy.Score)
	}
}

func TestBootstrapWindowIsTunable(t *testing.T) {
	input := mustTimeline(t, scene(0, 5), black(5, 6), scene(6, 16), black(16, 17), scene(17, 30))
	target := mustTimeline(t, scene(0, 10), black(10, 11), scene(11, 24))

	got, err := New(Options{BootstrapTargetScenes: 1, BootstrapInputOffsets: 1}, nil).Align(input, target)
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if first := got.Matches[0]; first.Input != scene(0, 5) {
		t.Fatalf("single-candidate bootstrap should start at the first input scene, got %v", first)
	}
}
