// Package codec defines the byte serializer capability used for token headers
// and claim payloads.
//
// The signing and verification paths never reach for a global encoder: a
// [Codec] is passed explicitly to the jws and jwt packages, so the encoding a
// call uses is visible at the call site.
//
// # Implementations
//
//   - [Standard] wraps encoding/json.
//   - [Fast] wraps json-iterator configured for standard library compatibility.
//
// Both honor json.Marshaler / json.Unmarshaler, which the claims type relies
// on to flatten its extension fields.
package codec
