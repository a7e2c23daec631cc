package app

import (
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/lore-backend/internal/data/aggregates"
	"github.com/yungbote/lore-backend/internal/data/repos"
	domainagg "github.com/yungbote/lore-backend/internal/domain/aggregates"
	"github.com/yungbote/lore-backend/internal/indexsync"
	"github.com/yungbote/lore-backend/internal/jobs"
	"github.com/yungbote/lore-backend/internal/observability"
	"github.com/yungbote/lore-backend/internal/platform/logger"
	"github.com/yungbote/lore-backend/internal/services"
)

type Services struct {
	Sync *indexsync.Synchronizer

	Taxonomy domainagg.TaxonomyAggregate
	Catalog  domainagg.CatalogAggregate

	Auth         services.AuthService
	Authorizer   services.Authorizer
	Repositories services.RepositoryService
	TaxonomyRead services.TaxonomyService
	Resources    services.ResourceService
	Search       services.SearchService

	Repair *jobs.RepairWorker
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet repos.Set, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	var syncHooks indexsync.Hooks
	var aggHooks aggregates.Hooks
	if metrics != nil {
		syncHooks = metrics
		aggHooks = aggregates.NewMetricsHooks(metrics)
	}

	sync := indexsync.New(indexsync.Deps{
		DB:    db,
		Log:   log,
		Repos: reposet,
		Index: clients.Index,
		Hooks: syncHooks,
	})

	base := aggregates.BaseDeps{
		DB:     db,
		Log:    log,
		Runner: aggregates.NewGormTxRunner(db, aggregates.WithRetry(3, 50*time.Millisecond)),
		Hooks:  aggHooks,
		Sync:   sync,
	}
	taxonomy := aggregates.NewTaxonomyAggregate(aggregates.NewTaxonomyAggregateDepsFromSet(base, reposet))
	catalog := aggregates.NewCatalogAggregate(aggregates.NewCatalogAggregateDepsFromSet(base, reposet))

	repositories := services.NewRepositoryService(db, log, reposet, catalog)

	return Services{
		Sync:         sync,
		Taxonomy:     taxonomy,
		Catalog:      catalog,
		Auth:         services.NewAuthService(log, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		Authorizer:   services.NewAuthorizer(log, reposet.Member),
		Repositories: repositories,
		TaxonomyRead: services.NewTaxonomyService(db, log, reposet, taxonomy),
		Resources:    services.NewResourceService(db, log, reposet, taxonomy),
		Search:       services.NewSearchService(log, clients.Index),
		Repair: jobs.NewRepairWorker(log, reposet.Repository, sync, metrics, jobs.Config{
			Schedule:    cfg.RepairSchedule,
			Parallelism: cfg.RepairParallelism,
		}),
	}
}
