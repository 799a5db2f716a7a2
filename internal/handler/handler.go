// Package handler is the HTTP layer of the admin tool.
//
// Handlers bind and validate requests through the validation package, call
// the service layer and write JSON or rendered HTML pages.
package handler
