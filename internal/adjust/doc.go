// Package adjust applies timing corrections to tracks.
//
// A Pipeline is an ordered list of adjustments (drift, stretch, cut plan).
// Apply folds them over a track, skipping adjustments that would not change
// anything, and hands each remaining one to the Renderer registered for the
// track's kind. Outputs are content addressed: the file name carries a hash
// of the input file identity and the adjustment key, so an existing,
// non-empty output is reused instead of rendered again.
package adjust
