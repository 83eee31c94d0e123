package cuts

import (
	"trackalign/internal/matcher"
	"trackalign/internal/span"
	"trackalign/internal/timeline"
)

// Plan converts matched parts into cuts. Black segments absorb differences:
// a shorter input black is split at its middle and its halves pinned to both
// ends of the target black, a longer one keeps half the target duration from
// each end. Scenes are copied whole. The last cut runs to the end of the
// source.
func Plan(matches []matcher.Match) Cuts {
	list := make([]Cut, 0, len(matches)+1)
	for _, m := range matches {
		in, tgt := m.Input.Span, m.Target.Span
		if m.Input.Kind != timeline.Black {
			list = append(list, Cut{Source: in, TargetStart: tgt.Start})
			continue
		}
		if in.Duration() < tgt.Duration() {
			second := in.SecondHalf()
			list = append(list,
				Cut{Source: in.FirstHalf(), TargetStart: tgt.Start},
				Cut{Source: second, TargetStart: tgt.End - second.Duration()})
			continue
		}
		half := tgt.Duration() / 2
		list = append(list,
			Cut{Source: span.Span{Start: in.Start, End: in.Start + half}, TargetStart: tgt.Start},
			Cut{Source: span.Span{Start: in.End - (tgt.Duration() - half), End: in.End}, TargetStart: tgt.Start + half})
	}
	plan := New(list...)
	if n := len(plan.cuts); n > 0 {
		plan.cuts[n-1].Source.End = span.Forever
	}
	return plan
}
