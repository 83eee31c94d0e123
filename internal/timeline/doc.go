// Package timeline turns detected black segments into an alternating
// sequence of Scene and Black parts covering a video from t=0.
//
// A Timeline is built lazily: parts are produced on demand, chunk by chunk,
// from a Source, and appended to an arena that is never truncated. Cursors
// index into that arena, so rewinding and replaying never triggers detection
// again. Scale, Shift and Head return derived timelines with their own arenas.
//
// Timelines and cursors are not safe for concurrent use.
package timeline
