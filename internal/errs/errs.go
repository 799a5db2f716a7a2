// Package errs defines the error shape returned to API clients.
//
// Every handler failure ends up as an *HTTPError, either created directly
// by a handler or translated from a database/driver error by the global
// error handler.
package errs
