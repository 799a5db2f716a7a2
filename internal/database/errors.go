package database

import (
	"errors"
	"fmt"

	"github.com/deppfellow/cla-admin/internal/sqlerr"
)

// Kind classifies a DAL failure.
type Kind int

const (
	// KindExecution: the driver failed to prepare or run the statement.
	KindExecution Kind = iota + 1
	// KindAmbiguous: a single-record lookup matched more than one row.
	KindAmbiguous
	// KindUnknownField: a record column has no matching model field.
	KindUnknownField
	// KindInvalidArgument: the caller passed something the DAL refuses to
	// turn into SQL (empty delete filter, bad identifier).
	KindInvalidArgument
	// KindMissingID: an id-keyed query returned a row without an id column.
	KindMissingID
	// KindHydration: a column value could not be converted to its field type.
	KindHydration
)

func (k Kind) String() string {
	switch k {
	case KindExecution:
		return "execution failed"
	case KindAmbiguous:
		return "ambiguous single lookup"
	case KindUnknownField:
		return "unknown field"
	case KindInvalidArgument:
		return "invalid argument"
	case KindMissingID:
		return "missing id"
	case KindHydration:
		return "hydration failed"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. Any *Error of the same Kind matches.
var (
	ErrExecution       = &Error{Kind: KindExecution}
	ErrAmbiguous       = &Error{Kind: KindAmbiguous}
	ErrUnknownField    = &Error{Kind: KindUnknownField}
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	ErrMissingID       = &Error{Kind: KindMissingID}
	ErrHydration       = &Error{Kind: KindHydration}
)

// Error is returned by every DAL operation.
//
// Op names the operation ("get_records", "delete_record", ...), SQL is the
// statement after table substitution when one was built. Diagnostic is set
// for execution failures the driver described.
type Error struct {
	Op         string
	SQL        string
	Kind       Kind
	Diagnostic *sqlerr.Error
	Err        error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.SQL != "" {
		msg += fmt.Sprintf(" [sql: %s]", e.SQL)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, 0 if none.
func KindOf(err error) Kind {
	var dalErr *Error
	if errors.As(err, &dalErr) {
		return dalErr.Kind
	}
	return 0
}

func execError(op, query string, err error) *Error {
	return &Error{
		Op:         op,
		SQL:        query,
		Kind:       KindExecution,
		Diagnostic: sqlerr.Diagnose(err),
		Err:        err,
	}
}

func argError(op string, format string, args ...any) *Error {
	return &Error{
		Op:   op,
		Kind: KindInvalidArgument,
		Err:  fmt.Errorf(format, args...),
	}
}
