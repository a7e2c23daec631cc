package testutil

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/yungbote/lore-backend/internal/data/aggregates"
	"github.com/yungbote/lore-backend/internal/platform/dbctx"
)

// InjectedTxRunner runs aggregate bodies with injectable failures.
// With DB set the body runs inside a real transaction that is rolled back
// whenever a failure is injected; without it the body gets no transaction.
type InjectedTxRunner struct {
	DB *gorm.DB

	FailBegin      error
	FailBeforeBody error
	FailCommit     error

	mu            sync.Mutex
	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) bump(counter *int) {
	r.mu.Lock()
	*counter++
	r.mu.Unlock()
}

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.bump(&r.BeginCalls)
	if r.FailBegin != nil {
		return r.FailBegin
	}
	if r.FailBeforeBody != nil {
		r.bump(&r.RollbackCalls)
		return r.FailBeforeBody
	}
	if r.DB == nil {
		if fn == nil {
			return r.finish(nil)
		}
		return r.finish(fn(dbctx.Context{Ctx: ctx}))
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if fn == nil {
			return r.finish(nil)
		}
		return r.finish(fn(dbctx.Context{Ctx: ctx, Tx: tx}))
	})
}

// finish decides the outcome after the body ran; a non-nil return rolls back.
func (r *InjectedTxRunner) finish(bodyErr error) error {
	if bodyErr != nil {
		r.bump(&r.RollbackCalls)
		return bodyErr
	}
	if r.FailCommit != nil {
		r.bump(&r.RollbackCalls)
		return r.FailCommit
	}
	r.bump(&r.CommitCalls)
	return nil
}
