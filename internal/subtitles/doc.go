// Package subtitles reads and writes SubRip (SRT) files and re-times their
// cues so a subtitle track from one release lines up with another.
//
// Ratio adjustments scale every cue. Cut plans keep the part of each cue that
// lies inside a cut, remapped by that cut's offset; a cue crossing a cut
// boundary is split and cues falling between cuts are discarded.
package subtitles
