// Package rate throttles clients that keep presenting tokens that fail
// verification.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Keys are
// "<prefix>:<client>" with prefix "jrf" by default.
//
// # What this package must NOT do
//
//   - Decide what counts as a failure (the Engine does).
//   - Be imported outside the goJWS module.
package rate
