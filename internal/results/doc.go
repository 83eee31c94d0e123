// Package results records alignment outcomes in SQLite so past runs can be
// reviewed with the report command.
//
// Each row captures one input/target pairing: the detected ratio, the cut
// plan, the accuracy and whether the result needs a manual check. Failed
// alignments additionally get a JSON sidecar next to the outputs holding both
// timelines, which is what a human needs to diagnose the mismatch.
//
// Schema changes bump schemaVersion in schema.go; users delete the database
// to adopt the new schema.
package results
