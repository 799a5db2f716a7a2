package errs

import (
	"net/http"
)

// statusCode is the default Code of a status: 404 => "NOT_FOUND".
func statusCode(status int) string {
	return MakeUpperCaseWithUnderscores(http.StatusText(status))
}

// NewUnauthorizedError builds a 401. The admin basic auth and echo's own
// 401s both end up here:
//
//	{ "code": "UNAUTHORIZED", "message": "Authentication required", "status": 401 }
func NewUnauthorizedError(message string, override bool) *HTTPError {
	return &HTTPError{
		Code:     statusCode(http.StatusUnauthorized),
		Message:  message,
		Status:   http.StatusUnauthorized,
		Override: override,
	}
}

// NewForbiddenError builds a 403 for an authenticated caller that may not
// perform the operation.
func NewForbiddenError(message string, override bool) *HTTPError {
	return &HTTPError{
		Code:     statusCode(http.StatusForbidden),
		Message:  message,
		Status:   http.StatusForbidden,
		Override: override,
	}
}

// NewBadRequestError builds a 400. A nil code defaults to "BAD_REQUEST";
// a non-nil code is used verbatim.
//
// Example, a NOT NULL violation translated by sqlerr.HandleError:
//
//	code := "USER_REQUIRED"
//	NewBadRequestError("The Email is required", true, &code,
//		[]FieldError{{Field: "email", Error: "is required"}}, nil)
func NewBadRequestError(message string, override bool, code *string, errors []FieldError, action *Action) *HTTPError {
	formattedCode := statusCode(http.StatusBadRequest)
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusBadRequest,
		Override: override,
		Errors:   errors,
		Action:   action,
	}
}

// NewNotFoundError builds a 404. Handlers pass a domain code such as
// "RECORD_NOT_FOUND" when a lookup matched nothing; a nil code gives
// "NOT_FOUND", used for unknown routes.
func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	formattedCode := statusCode(http.StatusNotFound)
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusNotFound,
		Override: override,
	}
}

// NewConflictError builds a 409, used when a single-record lookup matches
// more than one row.
func NewConflictError(message string, override bool, code *string) *HTTPError {
	formattedCode := statusCode(http.StatusConflict)
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusConflict,
		Override: override,
	}
}

// NewInternalServerError hides the real cause behind the generic status text.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:     statusCode(http.StatusInternalServerError),
		Message:  http.StatusText(http.StatusInternalServerError),
		Status:   http.StatusInternalServerError,
		Override: false,
	}
}

// ValidationError wraps a request that could not be bound at all (malformed
// JSON, wrong parameter type). Field-level failures go through
// NewBadRequestError with Errors filled instead.
func ValidationError(err error) *HTTPError {
	return NewBadRequestError("Validation failed: "+err.Error(), false, nil, nil, nil)
}
