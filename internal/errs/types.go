package errs

import "strings"

// FieldError points a message at one request field or column.
//
//	{ "field": "email", "error": "is required" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ActionType tells the client what to do next.
type ActionType string

const (
	ActionTypeRedirect ActionType = "redirect"
)

// Action is an optional client instruction attached to an error.
type Action struct {
	Type    ActionType `json:"type"`
	Message string     `json:"message"`
	Value   string     `json:"value"`
}

// HTTPError is serialized as-is in error responses:
//
//	{
//	  "code": "RECORD_NOT_FOUND",
//	  "message": "Record not found",
//	  "status": 404,
//	  "override": false,
//	  "errors": null,
//	  "action": null
//	}
//
// Fields:
//   - Code: machine-readable, either the status text in upper snake case
//     ("BAD_REQUEST") or a domain code ("USER_ALREADY_EXISTS")
//   - Message: safe to show to an operator
//   - Override: the client may show Message instead of its own text
type HTTPError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Status   int    `json:"status"`
	Override bool   `json:"override"`

	// Errors lists per-field problems of a rejected request.
	Errors []FieldError `json:"errors"`

	Action *Action `json:"action"`
}

// Error returns the client message, so logs and wrapped errors read the same
// as the response body.
func (e *HTTPError) Error() string {
	return e.Message
}

// Is matches any *HTTPError regardless of code or status.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage returns a copy of e carrying message.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	cp := *e
	cp.Message = message
	return &cp
}

// MakeUpperCaseWithUnderscores turns "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
