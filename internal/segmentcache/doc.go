// Package segmentcache persists black-segment detector results per input
// file so repeated runs never rescan video that was already analyzed.
//
// Results are partitioned by detector Config. Within one config a RangeIndex
// maps the time ranges that were scanned to the segments found inside them.
// Query answers arbitrary, possibly open-ended, ranges by reusing cached
// ranges and invoking the caller's compute function only for uncovered gaps.
// An open-ended range that reaches the end of the stream is stored under the
// all-time key [0, span.Forever), which later queries clip without scanning.
//
// Malformed persisted entries are logged and dropped; the affected ranges are
// recomputed on demand.
package segmentcache
