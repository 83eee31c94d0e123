// Package align is the entry point of the alignment engine. An Engine
// detects the speed ratio between an input file and a target file and, in
// full mode, matches their scene timelines to derive a cut plan. The result
// converts into an adjust.Pipeline that renders corrected tracks.
//
// All run state (directories, detector thresholds, matcher tuning,
// renderers) travels in an explicit RunContext handed to New; the package
// holds no globals.
package align
