// Package jws implements the JWS compact serialization: three base64url
// segments without padding, joined by ".".
//
// [Parse] splits a compact token and keeps the signing input exactly as it
// appeared on the wire. Verification must hash those original bytes; a
// re-serialized header or payload is not guaranteed to be byte-identical.
//
// This package does not know about algorithms or keys.
package jws
