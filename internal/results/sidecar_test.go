package results_test

import (
	"path/filepath"
	"testing"
	"time"

	"trackalign/internal/matcher"
	"trackalign/internal/results"
	"trackalign/internal/span"
	"trackalign/internal/timeline"
)

func TestWriteFailureRoundTrip(t *testing.T) {
	dir := t.TempDir()
	alignErr := &matcher.AlignmentError{
		Reason:   "accuracy below minimum",
		Score:    42.5,
		MinScore: 50,
		Matches:  3,
		Input: []timeline.Part{
			{Span: span.Must(0, 2*time.Second), Kind: timeline.Black},
			{Span: span.Must(2*time.Second, 10*time.Second), Kind: timeline.Scene},
		},
		Target: []timeline.Part{
			{Span: span.Must(0, 12*time.Second), Kind: timeline.Scene},
		},
	}
	f := results.NewFailure("run-9", "/in/Movie.Name.mkv", "/target.mkv", alignErr)

	path, err := results.WriteFailure(dir, f)
	if err != nil {
		t.Fatalf("WriteFailure returned error: %v", err)
	}
	if want := filepath.Join(dir, "Movie.Name.alignment-error.json"); path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}

	back, err := results.ReadFailure(path)
	if err != nil {
		t.Fatalf("ReadFailure returned error: %v", err)
	}
	if back.Reason != alignErr.Reason || back.Score != 42.5 || back.Matches != 3 || back.RunID != "run-9" {
		t.Fatalf("unexpected failure %+v", back)
	}
	if len(back.InputParts) != 2 || back.InputParts[0].Kind != timeline.Black || back.TargetParts[0].Span.End != 12*time.Second {
		t.Fatalf("unexpected parts %+v / %+v", back.InputParts, back.TargetParts)
	}
}
