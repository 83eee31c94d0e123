package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"trackalign/internal/logging"
	"trackalign/internal/media"
	"trackalign/internal/segmentcache"
	"trackalign/internal/span"
	"trackalign/internal/timeline"
)

var testConfig = segmentcache.Config{PictureBlackRatio: 0.98, PixelBlackThreshold: 0.1, MinBlackDuration: 100 * time.Millisecond}

type recordedCall struct {
	name string
	args []string
}

func fakeRunner(output string, err error, calls *[]recordedCall) commandRunner {
	return func(_ context.Context, name string, args ...string) ([]byte, error) {
		*calls = append(*calls, recordedCall{name: name, args: append([]string(nil), args...)})
		return []byte(output), err
	}
}

func argAfter(args []string, flag string) string {
	i := slices.Index(args, flag)
	if i < 0 || i+1 >= len(args) {
		return ""
	}
	return args[i+1]
}

func TestDetectParsesAndOffsetsSegments(t *testing.T) {
	var calls []recordedCall
	output := strings.Join([]string{
		"Input #0, matroska,webm, from 'movie.mkv':",
		"[blackdetect @ 0x5588] black_start:120.25 black_end:121 black_duration:0.75",
		"[blackdetect @ 0x5588] black_start:0 black_end:1.5 black_duration:1.5",
	}, "\n")
	d := NewBlackDetector("ffmpeg", logging.NewNop())
	d.WithCommandRunner(fakeRunner(output, nil, &calls))

	track := media.Track{Path: "/media/movie.mkv", Stream: 0, Kind: media.Video}
	got, err := d.Detect(context.Background(), track, testConfig, span.Must(300*time.Second, 600*time.Second))
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	want := []span.Span{
		span.Must(300*time.Second, 301500*time.Millisecond),
		span.Must(420250*time.Millisecond, 421*time.Second),
	}
	if !slices.Equal(got, want) {
		t.Fatalf("segments = %v, want %v", got, want)
	}

	if len(calls) != 1 || calls[0].name != "ffmpeg" {
		t.Fatalf("unexpected calls %+v", calls)
	}
	args := calls[0].args
	if argAfter(args, "-ss") != "300.000" || argAfter(args, "-t") != "300.000" {
		t.Fatalf("unexpected seek args %v", args)
	}
	if argAfter(args, "-map") != "0:0" {
		t.Fatalf("unexpected map %v", args)
	}
	if got := argAfter(args, "-vf"); got != "blackdetect=d=0.100:pic_th=0.98:pix_th=0.1" {
		t.Fatalf("unexpected filter %q", got)
	}
	if args[len(args)-1] != "-" || argAfter(args, "-f") != "null" {
		t.Fatalf("expected null muxer, got %v", args)
	}
}

func TestDetectOpenRangeOmitsDuration(t *testing.T) {
	var calls []recordedCall
	d := NewBlackDetector("ffmpeg", logging.NewNop())
	d.WithCommandRunner(fakeRunner("", nil, &calls))

	track := media.Track{Path: "movie.mkv", Kind: media.Video}
	if _, err := d.Detect(context.Background(), track, testConfig, span.Span{Start: time.Minute, End: span.Forever}); err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if slices.Contains(calls[0].args, "-t") {
		t.Fatalf("open range should not limit duration: %v", calls[0].args)
	}
}

func TestDetectClipsToRange(t *testing.T) {
	var calls []recordedCall
	d := NewBlackDetector("ffmpeg", logging.NewNop())
	d.WithCommandRunner(fakeRunner("black_start:9.5 black_end:11 black_duration:1.5", nil, &calls))

	got, err := d.Detect(context.Background(), media.Track{Path: "a.mkv"}, testConfig, span.Must(0, 10*time.Second))
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if len(got) != 1 || got[0] != span.Must(9500*time.Millisecond, 10*time.Second) {
		t.Fatalf("segments = %v", got)
	}
}

func TestDetectRejectsInvalidInput(t *testing.T) {
	d := NewBlackDetector("ffmpeg", logging.NewNop())
	d.WithCommandRunner(func(context.Context, string, ...string) ([]byte, error) {
		t.Fatal("runner should not be called")
		return nil, nil
	})
	if _, err := d.Detect(context.Background(), media.Track{}, segmentcache.Config{}, span.Must(0, time.Second)); err == nil {
		t.Fatal("expected error for invalid thresholds")
	}
	if _, err := d.Detect(context.Background(), media.Track{}, testConfig, span.Span{Start: 5, End: 5}); !errors.Is(err, span.ErrInvalidSpan) {
		t.Fatalf("expected ErrInvalidSpan, got %v", err)
	}
}

func TestDetectPropagatesRunnerError(t *testing.T) {
	var calls []recordedCall
	d := NewBlackDetector("ffmpeg", logging.NewNop())
	boom := errors.New("exit status 1")
	d.WithCommandRunner(fakeRunner("", boom, &calls))
	if _, err := d.Detect(context.Background(), media.Track{}, testConfig, span.Must(0, time.Second)); !errors.Is(err, boom) {
		t.Fatalf("expected runner error, got %v", err)
	}
}

func TestForReportsExhaustionPastTotal(t *testing.T) {
	var calls []recordedCall
	d := NewBlackDetector("ffmpeg", logging.NewNop())
	d.WithCommandRunner(fakeRunner("", nil, &calls))
	compute := d.For(media.Track{Path: "a.mkv"}, testConfig, 400*time.Second)

	if _, ok, err := compute(context.Background(), span.Span{Start: 400 * time.Second, End: span.Forever}); err != nil || ok {
		t.Fatalf("expected exhaustion, got ok=%v err=%v", ok, err)
	}
	if len(calls) != 0 {
		t.Fatalf("ffmpeg should not run past the end, got %d calls", len(calls))
	}
	if _, ok, err := compute(context.Background(), span.Must(0, 300*time.Second)); err != nil || !ok {
		t.Fatalf("expected data, got ok=%v err=%v", ok, err)
	}
}

func TestForUnknownTotalUsesDecodedFrames(t *testing.T) {
	var calls []recordedCall
	d := NewBlackDetector("ffmpeg", logging.NewNop())
	output := "frame=0\nprogress=continue\nframe=7192\nprogress=end\n"
	d.WithCommandRunner(fakeRunner(output, nil, &calls))
	compute := d.For(media.Track{Path: "a.mkv"}, testConfig, 0)

	if _, ok, err := compute(context.Background(), span.Must(5*time.Minute, 10*time.Minute)); err != nil || !ok {
		t.Fatalf("a range with decoded frames but no blacks is not the end: ok=%v err=%v", ok, err)
	}
	if argAfter(calls[0].args, "-progress") != "pipe:1" {
		t.Fatalf("expected progress reporting, got %v", calls[0].args)
	}

	d.WithCommandRunner(fakeRunner("frame=0\nprogress=end\n", nil, &calls))
	if _, ok, err := compute(context.Background(), span.Must(20*time.Minute, 25*time.Minute)); err != nil || ok {
		t.Fatalf("expected exhaustion when nothing was decoded, got ok=%v err=%v", ok, err)
	}
	if _, ok, _ := compute(context.Background(), span.Must(0, time.Minute)); !ok {
		t.Fatal("first range should never be exhausted")
	}
}

// computeSource serves a timeline from a compute function.
type computeSource segmentcache.ComputeFunc

func (s computeSource) Blacks(ctx context.Context, rng span.Span) ([]span.Span, bool, error) {
	return s(ctx, rng)
}

func TestUnknownTotalTimelineSurvivesChunkWithoutBlacks(t *testing.T) {
	end := 20 * time.Minute
	blacks := []span.Span{
		span.Must(time.Minute, time.Minute+time.Second),
		span.Must(12*time.Minute, 12*time.Minute+2*time.Second),
	}
	d := NewBlackDetector("ffmpeg", logging.NewNop())
	d.WithCommandRunner(func(_ context.Context, _ string, args ...string) ([]byte, error) {
		startSec, _ := strconv.ParseFloat(argAfter(args, "-ss"), 64)
		lengthSec, _ := strconv.ParseFloat(argAfter(args, "-t"), 64)
		rng := span.Must(span.Seconds(startSec), span.Seconds(startSec+lengthSec))
		if rng.Start >= end {
			return []byte("frame=0\nprogress=end\n"), nil
		}
		var b strings.Builder
		for _, black := range span.Clip(blacks, rng) {
			fmt.Fprintf(&b, "[blackdetect @ 0x1] black_start:%.3f black_end:%.3f\n",
				(black.Start - rng.Start).Seconds(), (black.End - rng.Start).Seconds())
		}
		b.WriteString("frame=7500\nprogress=end\n")
		return []byte(b.String()), nil
	})

	src := computeSource(d.For(media.Track{Path: "a.mkv"}, testConfig, 0))
	tl := timeline.New(context.Background(), src, 0, timeline.WithChunk(5*time.Minute))
	got, err := tl.All()
	if err != nil {
		t.Fatalf("All returned error: %v", err)
	}
	want := []timeline.Part{
		{Kind: timeline.Scene, Span: span.Must(0, time.Minute)},
		{Kind: timeline.Black, Span: blacks[0]},
		{Kind: timeline.Scene, Span: span.Must(blacks[0].End, blacks[1].Start)},
		{Kind: timeline.Black, Span: blacks[1]},
	}
	if !slices.Equal(got, want) {
		t.Fatalf("parts = %v, want %v", got, want)
	}
}
