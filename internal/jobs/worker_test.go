package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/lore-backend/internal/data/repos"
	repotest "github.com/yungbote/lore-backend/internal/data/repos/testutil"
	"github.com/yungbote/lore-backend/internal/platform/logger"
)

type fakeRebuilder struct {
	mu    sync.Mutex
	seen  []uuid.UUID
	fail  map[uuid.UUID]bool
	block chan struct{}
}

func (f *fakeRebuilder) RebuildRepository(ctx context.Context, id uuid.UUID) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, id)
	if f.fail[id] {
		return errors.New("index down")
	}
	return nil
}

type countingObserver struct {
	mu     sync.Mutex
	counts map[string]int
}

func (o *countingObserver) IncIndexRepair(status string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.counts == nil {
		o.counts = map[string]int{}
	}
	o.counts[status]++
}

func TestRunOnceRebuildsEveryRepository(t *testing.T) {
	ctx := context.Background()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	a := repotest.SeedRepository(t, ctx, db, "A")
	b := repotest.SeedRepository(t, ctx, db, "B")
	c := repotest.SeedRepository(t, ctx, db, "C")

	rb := &fakeRebuilder{fail: map[uuid.UUID]bool{b.ID: true}}
	obs := &countingObserver{}
	w := NewRepairWorker(log, repos.NewRepositoryRepo(db, log), rb, obs, Config{Parallelism: 2})

	n, err := w.RunOnce(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), b.ID.String())
	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID, c.ID}, rb.seen)
	assert.Equal(t, 2, obs.counts["success"])
	assert.Equal(t, 1, obs.counts["failure"])
}

func TestRunOnceSkipsWhileRunning(t *testing.T) {
	rb := &fakeRebuilder{block: make(chan struct{})}
	w := NewRepairWorker(logger.Nop(), nil, rb, nil, Config{})
	w.running.Store(true)

	n, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, rb.seen)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	w := NewRepairWorker(logger.Nop(), nil, &fakeRebuilder{}, nil, Config{Schedule: "not a schedule"})
	assert.Error(t, w.Start(context.Background()))

	w = NewRepairWorker(logger.Nop(), nil, &fakeRebuilder{}, nil, Config{})
	assert.NoError(t, w.Start(context.Background()))
}
