// Package validation contains the client's input checks: field validators
// that return user-facing messages, a password strength scorer, HTML entity
// sanitization and injection pattern detection.
//
// Every function in this package is pure. Validators never return Go
// errors; the outcome is a Result whose Error is safe to show to the user.
package validation
