package matcher

import (
	"fmt"
	"math"
	"time"
)

// Accuracy scores one match step, or a whole alignment, from 0 to 100.
type Accuracy struct {
	Score float64
	// Offset is target start minus input start for the matched scene.
	Offset    time.Duration
	HasOffset bool
}

// Perfect is the accuracy of a match that cannot be wrong.
var Perfect = Accuracy{Score: 100}

func sceneAccuracy(err, offset time.Duration) Accuracy {
	score := math.Max(0, 100-math.Abs(err.Seconds())*2)
	return Accuracy{Score: score, Offset: offset, HasOffset: true}
}

func (a Accuracy) String() string {
	if !a.HasOffset {
		return fmt.Sprintf("%.1f%%", a.Score)
	}
	return fmt.Sprintf("%.1f%% (offset %s)", a.Score, a.Offset)
}
