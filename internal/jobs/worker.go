package jobs

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	cron "github.com/robfig/cron"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/lore-backend/internal/data/repos"
	"github.com/yungbote/lore-backend/internal/platform/logger"
)

const defaultParallelism = 4

// Rebuilder fully reconciles the search index of one repository.
type Rebuilder interface {
	RebuildRepository(ctx context.Context, repositoryID uuid.UUID) error
}

// RepairObserver counts repair outcomes per repository.
type RepairObserver interface {
	IncIndexRepair(status string)
}

type Config struct {
	// Schedule is a robfig/cron spec ("0 0 3 * * *", "@every 1h"). Empty
	// disables the scheduled run.
	Schedule    string
	Parallelism int
}

// RepairWorker rebuilds the index of every repository, on a schedule or on
// demand. It is a recovery path: writes reconcile the index themselves.
type RepairWorker struct {
	log       *logger.Logger
	repos     repos.RepositoryRepo
	rebuilder Rebuilder
	observer  RepairObserver
	cfg       Config

	cron    *cron.Cron
	running atomic.Bool
}

func NewRepairWorker(baseLog *logger.Logger, repositories repos.RepositoryRepo, rebuilder Rebuilder, observer RepairObserver, cfg Config) *RepairWorker {
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = defaultParallelism
	}
	return &RepairWorker{
		log:       baseLog.With("component", "IndexRepairWorker"),
		repos:     repositories,
		rebuilder: rebuilder,
		observer:  observer,
		cfg:       cfg,
	}
}

// Start schedules the repair until ctx is done. A run that is still going
// when the next tick fires makes that tick a no-op.
func (w *RepairWorker) Start(ctx context.Context) error {
	if w.cfg.Schedule == "" {
		w.log.Info("Index repair schedule disabled")
		return nil
	}
	c := cron.New()
	if err := c.AddFunc(w.cfg.Schedule, func() {
		if _, err := w.RunOnce(ctx); err != nil {
			w.log.Warn("Scheduled index repair finished with errors", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("index repair schedule %q: %w", w.cfg.Schedule, err)
	}
	w.cron = c
	c.Start()
	w.log.Info("Index repair scheduled", "schedule", w.cfg.Schedule)

	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	return nil
}

// RunOnce rebuilds every repository. It returns the number of repositories
// rebuilt and the first failure, after attempting all of them.
func (w *RepairWorker) RunOnce(ctx context.Context) (int, error) {
	if !w.running.CompareAndSwap(false, true) {
		w.log.Warn("Index repair already running, skipping")
		return 0, nil
	}
	defer w.running.Store(false)

	rows, err := w.repos.ListAll(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("list repositories: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return w.Rebuild(ctx, ids)
}

// Rebuild rebuilds the given repositories with bounded parallelism.
func (w *RepairWorker) Rebuild(ctx context.Context, repositoryIDs []uuid.UUID) (int, error) {
	start := time.Now()
	var (
		done     atomic.Int64
		firstErr atomic.Pointer[error]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.cfg.Parallelism)
	for _, id := range repositoryIDs {
		id := id
		g.Go(func() error {
			// One repository failing must not stop the others.
			if err := w.rebuilder.RebuildRepository(gctx, id); err != nil {
				w.observe("failure")
				w.log.Error("Index repair failed", "repository_id", id, "error", err)
				wrapped := fmt.Errorf("repository %s: %w", id, err)
				firstErr.CompareAndSwap(nil, &wrapped)
				return nil
			}
			w.observe("success")
			done.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	w.log.Info("Index repair finished",
		"repositories", len(repositoryIDs),
		"rebuilt", done.Load(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if p := firstErr.Load(); p != nil {
		return int(done.Load()), *p
	}
	return int(done.Load()), nil
}

func (w *RepairWorker) observe(status string) {
	if w.observer != nil {
		w.observer.IncIndexRepair(status)
	}
}
