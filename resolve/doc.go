// Package resolve provides [jwt.KeyResolver] implementations and wrappers.
//
// Sources:
//   - [Static] and [KeySet] hold keys in memory.
//   - [JWKSFile] serves a JWKS document from disk and reloads it on change.
//   - [Redis] reads PEM or JWK documents stored in Redis by kid.
//
// Wrappers compose around any resolver:
//   - [Cached] memoizes keys per kid and collapses concurrent lookups.
//   - [Retry] retries transient failures with exponential backoff.
//
// Resolver errors surface from Verify as KindKeyResolution with the error
// text as reason.
package resolve
