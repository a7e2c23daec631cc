package apierr

import (
	"errors"
	"net/http"
	"testing"
)

func TestInvalidCarriesField(t *testing.T) {
	e := Invalid("learning_resource_types", "may not be null")
	if e.Status != http.StatusBadRequest {
		t.Fatalf("status: got %d", e.Status)
	}
	if msgs := e.Fields["learning_resource_types"]; len(msgs) != 1 || msgs[0] != "may not be null" {
		t.Fatalf("fields: got %v", e.Fields)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("boom")
	e := New(http.StatusInternalServerError, "internal", cause)
	if !errors.Is(e, cause) {
		t.Fatalf("expected wrapped cause")
	}
	var nilErr *Error
	if nilErr.Error() != "" {
		t.Fatalf("nil error should render empty")
	}
}
