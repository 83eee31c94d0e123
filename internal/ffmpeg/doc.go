// Package ffmpeg drives the ffmpeg binary for the two jobs that touch media
// samples: black segment detection on video tracks and rendering adjusted
// audio tracks.
//
// Both components shell out through an injectable command runner so tests
// can assert the generated arguments and feed canned output back without an
// ffmpeg install.
package ffmpeg
