package results

import (
	"errors"
	"time"

	"trackalign/internal/matcher"
)

// Status is the outcome of one alignment.
type Status string

const (
	// StatusAligned means the result met the review threshold.
	StatusAligned Status = "aligned"
	// StatusReview means the result was applied but its accuracy is low
	// enough to warrant a manual check.
	StatusReview Status = "needs_review"
	// StatusFailed means no usable mapping was found.
	StatusFailed Status = "failed"
)

// Statuses lists every status in report order.
func Statuses() []Status {
	return []Status{StatusAligned, StatusReview, StatusFailed}
}

// FailureStatus maps an alignment error to the status persisted for it.
// Alignment failures are recorded for review; anything else failed outright.
func FailureStatus(err error) Status {
	if errors.Is(err, matcher.ErrAlignmentFailed) {
		return StatusReview
	}
	return StatusFailed
}

// Record is one row of the ledger.
type Record struct {
	ID            string
	RunID         string
	InputPath     string
	TargetPath    string
	Mode          string
	Status        Status
	Ratio         string
	RatioStrategy string
	CutsJSON      string
	Accuracy      int
	TracksWritten int
	ErrorMessage  string
	SidecarPath   string
	CreatedAt     time.Time
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Status Status
	RunID  string
	Limit  int
}
