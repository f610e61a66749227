// Package goJWS issues and verifies compact JSON Web Tokens signed with any
// of the registered JWS algorithms (HMAC, RSA PKCS#1 v1.5, RSA-PSS, ECDSA and
// Ed25519), with application claims carried in a typed extension.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goJWS is the service facade. It exposes [Engine], [Builder], [Config] and
// metric and audit value types. The signing and verification pipeline lives
// in the jwt package, algorithms in jwa, keys in jwk, the compact wire format
// in jws, and key sources in resolve. Revocation and throttling state is held
// in Redis under internal/.
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or encoding details in its public API.
//   - Log token strings or key material.
//   - Import any sub-package that re-imports goJWS (no import cycles).
//
// # Performance contract
//
// Verify with a static key set performs no I/O. Revocation adds one Redis
// round-trip, throttling adds one on success and two on rejection.
package goJWS
