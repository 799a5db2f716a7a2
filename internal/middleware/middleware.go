// Package middleware stores global and route-specific middleware.
//
// These intercept requests to handle cross-cutting concerns such as admin
// authentication, request logging, CORS, rate limiting, tracing, panic
// recovery and the translation of DAL errors into HTTP responses.
package middleware
