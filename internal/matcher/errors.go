package matcher

import (
	"errors"
	"fmt"

	"trackalign/internal/timeline"
)

// ErrAlignmentFailed matches every *AlignmentError.
var ErrAlignmentFailed = errors.New("alignment failed")

// AlignmentError reports an alignment that could not be established or was
// not accurate enough. It carries both timelines as far as they were read.
type AlignmentError struct {
	Reason   string
	Score    float64
	Input    []timeline.Part
	Target   []timeline.Part
	Matches  int
	MinScore float64
}

func (e *AlignmentError) Error() string {
	if e.Matches > 0 {
		return fmt.Sprintf("alignment failed: %s (%.1f%% over %d matches, minimum %.1f%%)", e.Reason, e.Score, e.Matches, e.MinScore)
	}
	return "alignment failed: " + e.Reason
}

// Is reports whether target is ErrAlignmentFailed.
func (e *AlignmentError) Is(target error) bool {
	return target == ErrAlignmentFailed
}
