package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"trackalign/internal/fileutil"
	"trackalign/internal/matcher"
	"trackalign/internal/timeline"
)

const sidecarSuffix = ".alignment-error.json"

// Failure is the diagnostic payload written for a failed alignment.
type Failure struct {
	RunID       string          `json:"run_id"`
	Input       string          `json:"input"`
	Target      string          `json:"target"`
	Reason      string          `json:"reason"`
	Score       float64         `json:"score"`
	MinScore    float64         `json:"min_score"`
	Matches     int             `json:"matches"`
	InputParts  []timeline.Part `json:"input_parts"`
	TargetParts []timeline.Part `json:"target_parts"`
	RecordedAt  time.Time       `json:"recorded_at"`
}

// NewFailure captures an alignment error for input and target.
func NewFailure(runID, input, target string, err *matcher.AlignmentError) Failure {
	f := Failure{RunID: runID, Input: input, Target: target, RecordedAt: time.Now().UTC()}
	if err != nil {
		f.Reason = err.Reason
		f.Score = err.Score
		f.MinScore = err.MinScore
		f.Matches = err.Matches
		f.InputParts = err.Input
		f.TargetParts = err.Target
	}
	return f
}

// SidecarPath returns where the failure record for input lives inside dir.
func SidecarPath(dir, input string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(dir, base+sidecarSuffix)
}

// WriteFailure writes f next to the outputs in dir and returns the path.
func WriteFailure(dir string, f Failure) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create sidecar directory: %w", err)
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode alignment failure: %w", err)
	}
	path := SidecarPath(dir, f.Input)
	if err := fileutil.WriteFileAtomic(path, data); err != nil {
		return "", fmt.Errorf("write alignment failure: %w", err)
	}
	return path, nil
}

// ReadFailure loads a sidecar written by WriteFailure.
func ReadFailure(path string) (Failure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Failure{}, fmt.Errorf("read alignment failure: %w", err)
	}
	var f Failure
	if err := json.Unmarshal(data, &f); err != nil {
		return Failure{}, fmt.Errorf("decode alignment failure: %w", err)
	}
	return f, nil
}
