package adjust

import (
	"trackalign/internal/cuts"
	"trackalign/internal/ratio"
)

// Data is the payload of an adjustment: Drift, Stretch or CutPlan.
type Data interface {
	isData()
	// Key identifies the payload in output cache keys.
	Key() string
}

// Drift compensates a frame rate difference.
type Drift struct {
	ratio.LinearDrift
}

// Stretch compensates a duration difference.
type Stretch struct {
	ratio.StretchFactor
}

// CutPlan rebuilds the track from the listed cuts.
type CutPlan struct {
	cuts.Cuts
}

func (Drift) isData()   {}
func (Stretch) isData() {}
func (CutPlan) isData() {}

func (d Drift) Key() string   { return "drift" + d.Speed().StringFixed(ratio.Precision) }
func (s Stretch) Key() string { return "stretch" + s.Speed().StringFixed(ratio.Precision) }
func (c CutPlan) Key() string { return "cuts:" + c.Cuts.Key() }

// Node is an adjustment with its type parameter erased.
type Node interface {
	Data() Data
	Valid() bool
	Key() string
}

// Adjustment wraps a payload with the predicate deciding whether applying it
// changes the track.
type Adjustment[T Data] struct {
	Payload T
	IsValid func(T) bool
}

// Data implements Node.
func (a Adjustment[T]) Data() Data { return a.Payload }

// Valid implements Node.
func (a Adjustment[T]) Valid() bool {
	return a.IsValid == nil || a.IsValid(a.Payload)
}

// Key implements Node.
func (a Adjustment[T]) Key() string { return a.Payload.Key() }

// NewDrift returns a drift adjustment, invalid for the identity ratio.
func NewDrift(d ratio.LinearDrift) Adjustment[Drift] {
	return Adjustment[Drift]{Payload: Drift{d}, IsValid: func(d Drift) bool { return !d.IsIdentity() }}
}

// NewStretch returns a stretch adjustment, invalid for the identity ratio.
func NewStretch(s ratio.StretchFactor) Adjustment[Stretch] {
	return Adjustment[Stretch]{Payload: Stretch{s}, IsValid: func(s Stretch) bool { return !s.IsIdentity() }}
}

// NewCutPlan returns a cut adjustment, invalid when the plan changes nothing
// or reduces to a zero offset.
func NewCutPlan(c cuts.Cuts) Adjustment[CutPlan] {
	return Adjustment[CutPlan]{Payload: CutPlan{c}, IsValid: func(c CutPlan) bool {
		if offset, ok := c.OptionalOffset(); ok {
			return offset != 0
		}
		return !c.IsIdentity()
	}}
}
