package aggregates

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/lore-backend/internal/domain/aggregates"
)

func TestMapError_Conflict(t *testing.T) {
	for name, in := range map[string]error{
		"tagged":        ConflictError("stale"),
		"gorm":          fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey),
		"pg":            &pgconn.PgError{Code: "23505"},
		"sqlite string": errors.New("UNIQUE constraint failed: vocabulary.repository_id, vocabulary.slug"),
	} {
		err := MapError("op", in)
		if !domainagg.IsCode(err, domainagg.CodeConflict) {
			t.Fatalf("%s: expected conflict code, got %q (%v)", name, domainagg.CodeOf(err), err)
		}
	}
}

func TestMapError_NotFound(t *testing.T) {
	err := MapError("op", gorm.ErrRecordNotFound)
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_Retryable(t *testing.T) {
	for _, in := range []error{
		RetryableError("x"),
		context.DeadlineExceeded,
		&pgconn.PgError{Code: "40001"},
		errors.New("database is locked"),
	} {
		if err := MapError("op", in); !domainagg.IsCode(err, domainagg.CodeRetryable) {
			t.Fatalf("expected retryable code for %v, got %q", in, domainagg.CodeOf(err))
		}
	}
}

func TestMapError_ForeignKey(t *testing.T) {
	err := MapError("op", &pgconn.PgError{Code: "23503"})
	if !domainagg.IsCode(err, domainagg.CodePreconditionFailed) {
		t.Fatalf("expected precondition_failed code, got %q", domainagg.CodeOf(err))
	}
}

func TestMapError_Internal(t *testing.T) {
	err := MapError("op", errors.New("boom"))
	if !domainagg.IsCode(err, domainagg.CodeInternal) {
		t.Fatalf("expected internal code, got %q", domainagg.CodeOf(err))
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeRetryable, "op", "retry", errors.New("boom"))
	out := MapError("other", in)
	if out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
	wrapped := fmt.Errorf("ctx: %w", domainagg.FieldError("op", "name", "bad"))
	if got := MapError("other", wrapped); !domainagg.IsCode(got, domainagg.CodeValidation) {
		t.Fatalf("expected wrapped validation error to pass through, got %q", domainagg.CodeOf(got))
	}
}
