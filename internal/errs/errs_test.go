package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPErrorIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewNotFoundError("missing", false, nil))

	var target *HTTPError
	if !errors.As(err, &target) {
		t.Fatal("expected errors.As to find *HTTPError")
	}
	if target.Status != http.StatusNotFound || target.Code != "NOT_FOUND" {
		t.Fatalf("unexpected error %+v", target)
	}
	if !errors.Is(err, NewInternalServerError()) {
		t.Fatal("expected errors.Is to match any *HTTPError")
	}
}

func TestNewBadRequestErrorCode(t *testing.T) {
	if got := NewBadRequestError("bad", false, nil, nil, nil).Code; got != "BAD_REQUEST" {
		t.Fatalf("default code = %q", got)
	}

	code := "USER_ALREADY_EXISTS"
	if got := NewBadRequestError("bad", false, &code, nil, nil).Code; got != code {
		t.Fatalf("custom code = %q", got)
	}
}

func TestWithMessageCopies(t *testing.T) {
	base := NewConflictError("first", true, nil)
	changed := base.WithMessage("second")

	if base.Message != "first" {
		t.Fatalf("original mutated: %q", base.Message)
	}
	if changed.Message != "second" || changed.Status != http.StatusConflict || !changed.Override {
		t.Fatalf("unexpected copy %+v", changed)
	}
}
