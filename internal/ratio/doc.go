// Package ratio models constant speed/duration corrections between two
// renditions of the same video and the heuristics used to detect them.
//
// A Multiplier stores both directions of the correction as 3-decimal fixed
// point values (shopspring/decimal), so the speed handed to a tempo filter
// and the factor applied to subtitle timestamps never drift apart through
// float rounding. LinearDrift and StretchFactor wrap a Multiplier to record
// why the correction exists: framerate drift or a measured duration stretch.
//
// Detection is deterministic and side-effect free. Strategies are tried in
// the order the caller lists them; the first applicable one wins.
package ratio
