// Package audit implements async event dispatching for token lifecycle
// operations: issue, sign, verify, reject, revoke.
//
// # Components
//
//   - [Sink]: interface for event consumers (channel, JSON writer, slog, no-op).
//   - [Dispatcher]: buffered async relay. When full it drops or blocks per
//     [Config]; token_revoked events always wait for space until the caller's
//     context ends. Drops are counted per event type.
//   - [Event]: structured audit record with timestamp, type, subject, token id, key id, metadata.
//
// # Architecture boundaries
//
// This package owns event buffering and sink delivery. It does NOT decide which events
// to emit; the Engine does.
//
// # What this package must NOT do
//
//   - Record token strings, signatures or key material.
//   - Import goJWS or any sibling internal package.
//   - Perform network I/O beyond what a caller-supplied Sink does.
package audit
