// Package main hosts the trackalign CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once per invocation, builds
// the alignment engine with its ffmpeg-backed detector and renderers, and
// exposes alignment runs, ratio inspection, segment cache maintenance, the
// results report and preflight checks.
//
// Keep this package lean: behaviour belongs in the internal packages, and
// commands here only translate flags into engine calls and render output.
package main
