// Package jwa is the signature algorithm registry.
//
// Each [Algorithm] is constrained to one key family and re-checks, on every
// call, that the header names it and that the key belongs to its family.
// A registry lookup by header "alg" followed by that inner check means a
// misconfigured registry can never apply the wrong primitive to a key.
//
// Cryptographic primitives come from github.com/golang-jwt/jwt/v5. RSA,
// RSA-PSS, HMAC and ECDSA variants are derived from a hash width, which names
// both the digest and the primitive (256 selects SHA-256 and "RS256").
//
// The "none" algorithm is not implemented and cannot be registered.
package jwa
