package aggregates

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/lore-backend/internal/domain/aggregates"
	"github.com/yungbote/lore-backend/internal/indexsync"
	"github.com/yungbote/lore-backend/internal/platform/dbctx"
	"github.com/yungbote/lore-backend/internal/platform/logger"
)

type BaseDeps struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Runner   TxRunner
	Hooks    Hooks
	Validate *validator.Validate
	// Sync reconciles the search index after commit. Nil disables reconciliation.
	Sync *indexsync.Synchronizer
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.Validate == nil {
		d.Validate = NewValidator()
	}
	return d
}

// writeFunc runs inside the transaction and names the index scope its
// changes invalidated.
type writeFunc func(dbc dbctx.Context) (indexsync.Scope, error)

// executeWrite commits fn in one transaction and then reconciles the scope
// it returned. An index failure after commit surfaces as CodeIndexSync.
func executeWrite(ctx context.Context, deps BaseDeps, op string, fn writeFunc) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.write"
	}

	var scope indexsync.Scope
	err := deps.Runner.InTx(ctx, func(dbc dbctx.Context) error {
		s, err := fn(dbc)
		if err != nil {
			return err
		}
		scope = s
		return nil
	})
	mapped := MapError(op, err)
	if mapped == nil && deps.Sync != nil && !scope.Empty() {
		if syncErr := deps.Sync.Apply(ctx, scope); syncErr != nil {
			if deps.Log != nil {
				deps.Log.Error("Index reconciliation failed after commit", "op", op, "repository_id", scope.RepositoryID, "error", syncErr)
			}
			mapped = domainagg.NewError(domainagg.CodeIndexSync, op, "search index could not be updated", syncErr)
		}
	}

	status := "success"
	if mapped != nil {
		status = aggregateErrorStatus(mapped)
		if domainagg.IsCode(mapped, domainagg.CodeConflict) {
			deps.Hooks.IncConflict(op)
		}
		if domainagg.IsCode(mapped, domainagg.CodeRetryable) {
			deps.Hooks.IncRetry(op)
		}
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}

func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	code := strings.TrimSpace(string(domainagg.CodeOf(err)))
	if code == "" {
		code = strings.TrimSpace(string(domainagg.CodeOf(MapError("aggregate.status", err))))
	}
	if code == "" {
		return "failure"
	}
	return code
}
