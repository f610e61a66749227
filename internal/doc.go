// Package internal groups the private building blocks of goJWS.
//
// # Sub-packages
//
//   - async: panic-safe futures used for key resolution
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - metrics: lock-free counters and latency histograms
//   - rate: Redis-backed throttle for clients presenting rejected tokens
//   - security: security posture report
//   - stores: Redis revocation denylist and key document store
//
// # What this package must NOT do
//
//   - Export types that appear in the public goJWS API.
//   - Be imported by any package outside the goJWS module.
package internal
