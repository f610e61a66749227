// Package middleware adapts Engine.Verify to net/http.
//
// # Guards
//
//   - [Guard] verifies the bearer token and any extra validators.
//   - [RequireStrict] also requires a token ID, so accepted tokens are revocable.
//   - [RequireAudience] also pins one audience.
//
// Each guard reads the Authorization header, tags the context with the
// client address for throttling, and stores the verified token for
// [TokenFromContext].
//
// # What this package must NOT do
//
//   - Parse or sign tokens itself.
//   - Access Redis.
//   - Tell the client why a token was rejected.
package middleware
