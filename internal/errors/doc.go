// Package errors provides structured, coded errors for recipebox.
//
// Every failure that crosses a package boundary is an *Error carrying a
// stable code, a category and, when available, the underlying cause:
//
//	err := errors.New("E101").Wrap(cause).WithDetail("POST /users/recipes/42/favorite")
//
// Codes map to templates in the registry. errors.Is matches two *Error
// values by code, so callers can test against a bare template:
//
//	if errors.Is(err, errors.New("E102")) { ... }
//
// # Categories
//
//   - transport: the request never produced an HTTP response
//   - status: the backend answered with a non-success status
//   - payload: the response was well formed but did not report success
//   - config: configuration could not be loaded or failed validation
//   - database: provisioning the document database failed
//   - protocol: a live-session frame could not be decoded
//   - cli: command line usage errors
package errors
