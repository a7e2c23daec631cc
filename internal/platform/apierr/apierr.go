package apierr

import (
	"fmt"
	"net/http"
)

// Error is a transport-level failure with an HTTP status, a stable code and
// optional per-field messages.
type Error struct {
	Status int
	Code   string
	Fields map[string][]string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// Invalid builds a 400 with a single field message.
func Invalid(field, msg string) *Error {
	return &Error{
		Status: http.StatusBadRequest,
		Code:   "validation_failed",
		Fields: map[string][]string{field: {msg}},
		Err:    fmt.Errorf("%s: %s", field, msg),
	}
}

func NotFound(what string) *Error {
	return &Error{Status: http.StatusNotFound, Code: "not_found", Err: fmt.Errorf("%s not found", what)}
}

func Forbidden() *Error {
	return &Error{Status: http.StatusForbidden, Code: "forbidden", Err: fmt.Errorf("permission denied")}
}
