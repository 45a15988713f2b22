// Package state holds the in-memory model of the account's
// installations and the codecs that translate its wire values.
//
// The model is a normalized Installation → Group → Zone → Channel graph
// built from the cloud's raw untyped documents by a single
// normalization pass; no other component touches the raw form. The
// Store owns the model for the lifetime of one session: full snapshots
// deep-merge into the raw cache and rebuild the graph wholesale, while
// channel patches and optimistic writes mutate it in place under the
// store lock.
//
// Installation-level fields (aggregate energy level, operating mode,
// connectivity) are derived, never set directly, and are recomputed
// whenever a channel beneath the installation changes.
//
// Wire temperatures are integers in tenths of a degree Fahrenheit;
// the conversion helpers in temperature.go are the only place that
// arithmetic lives.
package state
