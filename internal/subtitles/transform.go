package subtitles

import (
	"sort"
	"time"

	"trackalign/internal/cuts"
	"trackalign/internal/ratio"
	"trackalign/internal/span"
)

// Scale maps every cue timestamp through m.
func Scale(cues []Cue, m ratio.Multiplier) []Cue {
	out := make([]Cue, len(cues))
	for i, cue := range cues {
		cue.Start = m.ScaleDuration(cue.Start)
		cue.End = m.ScaleDuration(cue.End)
		out[i] = cue
	}
	return out
}

// ApplyCuts rebuilds cues on the target timeline of plan. Each cue keeps the
// portion overlapping every cut, shifted by that cut's offset. A cue with no
// duration survives when its start lies inside a cut. A plan that reduces to
// a single offset shifts every cue, like the container re-time used for
// audio; cues pushed before zero are trimmed or dropped.
func ApplyCuts(cues []Cue, plan cuts.Cuts) []Cue {
	if offset, ok := plan.OptionalOffset(); ok {
		return shiftCues(cues, offset)
	}
	list := plan.List()
	var out []Cue
	for _, cue := range cues {
		for _, cut := range list {
			if piece, ok := mapCue(cue, cut); ok {
				out = append(out, piece)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func mapCue(cue Cue, cut cuts.Cut) (Cue, bool) {
	if cue.End <= cue.Start {
		if cue.Start < cut.Source.Start || cue.Start >= cut.Source.End {
			return Cue{}, false
		}
		cue.Start += cut.Offset()
		cue.End = cue.Start
		return cue, true
	}
	clipped, ok := span.Span{Start: cue.Start, End: cue.End}.RestrictIn(cut.Source)
	if !ok {
		return Cue{}, false
	}
	shifted := clipped.Shift(cut.Offset())
	cue.Start, cue.End = shifted.Start, shifted.End
	return cue, true
}

func shiftCues(cues []Cue, offset time.Duration) []Cue {
	out := make([]Cue, 0, len(cues))
	for _, cue := range cues {
		cue.Start += offset
		cue.End += offset
		if cue.End < 0 || (cue.End == 0 && cue.Start < 0) {
			continue
		}
		cue.Start = max(cue.Start, 0)
		out = append(out, cue)
	}
	return out
}
