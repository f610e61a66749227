// Package stores provides Redis-backed stores that support token
// verification: a key store mapping key identifiers to encoded keys, and a
// revocation store listing revoked token identifiers.
//
// # Design
//
// Every store takes a redis.UniversalClient and a key prefix. Records that
// only matter while a token can still verify carry a TTL, so revocation
// entries disappear once the token would have expired anyway.
//
// # What this package must NOT do
//
//   - Import goJWS or any sibling internal package.
//   - Decode or validate key material (callers own parsing).
package stores
