// Package matcher aligns two ratio-corrected timelines part by part.
//
// Alignment starts with a bounded bootstrap search that tries the first few
// target scenes against a few input starting offsets and keeps the most
// accurate single-step match. From there both timelines are consumed in
// lockstep. A target scene may be matched by several consecutive input
// scenes when the input carries extra black segments; one accumulated scene
// too many is undone when dropping it reduces the duration error.
//
// Accuracy is scored 0-100 with one point lost per 500ms of duration error.
package matcher
