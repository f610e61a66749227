// Package jwk models signing and verification keys as a closed set of
// families (oct, RSA, EC, OKP) behind a single immutable [Key] value.
//
// A Key is a tagged union: [Key.Family] names the variant and the capability
// queries [Key.CanSign] and [Key.CanVerify] report what the held material
// supports. Algorithms in package jwa match on the family explicitly rather
// than relying on dynamic type assertions spread through the codebase.
//
// # Loading
//
//   - [FromPEM] reads PKCS#1, PKCS#8 and PKIX encoded RSA, EC and Ed25519 keys.
//   - [FromJWK] and [ParseSet] read RFC 7517 JSON Web Keys.
//   - [Generate] produces a fresh key for an algorithm identifier.
//
// # What this package must NOT do
//
//   - Sign or verify anything (package jwa owns that).
//   - Log or expose key material through error messages.
package jwk
