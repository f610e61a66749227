// Package jwt issues and verifies JSON Web Tokens on top of the jwa registry
// and the jws compact codec.
//
// [Manager.Sign] turns [Claims] into a compact token with the algorithm
// declared by the key. [Manager.Verify] runs a fail-fast pipeline:
//
//	parse -> decode claims -> resolve key -> verify signature -> exp/nbf -> validator
//
// Each stage runs only when every earlier stage succeeded. Failures are
// returned as [*Error] values carrying a closed [Kind].
//
// Claim policy is expressed with [Validator] values composed through [All],
// [Validator.And] and [Validator.OrElse].
//
// Manager instances are immutable after [NewManager] and safe for concurrent use.
package jwt
