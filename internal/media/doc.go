// Package media models the files and tracks the aligner reads and writes.
//
// An InputFile is one probed container: its duration, video frame rate and
// the audio and subtitle tracks it carries. Tracks are immutable handles;
// adjusting one produces a new Track pointing at a new file. Library probes
// each path once and hands out the memoized InputFile afterwards.
package media
