// Package security derives the security posture report exposed by
// Engine.SecurityReport and printed by the jwsctl "report" command.
//
// # What this package must NOT do
//
//   - Read key material; it only sees algorithm names and flags.
package security
