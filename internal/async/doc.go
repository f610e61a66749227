// Package async provides a single-result future for work that may block on
// I/O, such as key resolution.
//
// A [Future] is started with [Go] and read with [Future.Await]. Await returns
// as soon as either the work finishes or the caller's context ends, so a
// caller never hangs on a resolver that ignores cancellation. Panics inside
// the work function are recovered and reported as errors.
//
// # What this package must NOT do
//
//   - Retry work or run alternatives concurrently.
//   - Import any other package of this module.
package async
