// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video/subtitle stream properties
//   - Format: container-level metadata (duration, size, bitrate)
//
// Primary entry points:
//   - Inspect: executes ffprobe and returns parsed Result
//   - Parse: decodes a captured ffprobe payload
//
// Helper methods on Result provide stream counts, duration parsing, frame
// rate extraction and bitrate extraction.
package ffprobe
