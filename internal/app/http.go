package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/lore-backend/internal/http"
	httpH "github.com/yungbote/lore-backend/internal/http/handlers"
	httpMW "github.com/yungbote/lore-backend/internal/http/middleware"
	"github.com/yungbote/lore-backend/internal/observability"
	"github.com/yungbote/lore-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Repository *httpH.RepositoryHandler
	Taxonomy   *httpH.TaxonomyHandler
	Resource   *httpH.ResourceHandler
	Search     *httpH.SearchHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(log, db),
		Repository: httpH.NewRepositoryHandler(log, services.Repositories, services.Authorizer),
		Taxonomy:   httpH.NewTaxonomyHandler(log, services.TaxonomyRead, services.Repositories, services.Authorizer),
		Resource:   httpH.NewResourceHandler(log, services.Resources, services.Repositories, services.Authorizer),
		Search:     httpH.NewSearchHandler(log, services.Search, services.Repositories, services.Authorizer),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics, tracingService string) http.RouterConfig {
	return http.RouterConfig{
		Log:               log,
		AuthMiddleware:    middleware.Auth,
		Metrics:           metrics,
		CORSOrigins:       cfg.CORSOrigins,
		TracingService:    tracingService,
		HealthHandler:     handlers.Health,
		RepositoryHandler: handlers.Repository,
		TaxonomyHandler:   handlers.Taxonomy,
		ResourceHandler:   handlers.Resource,
		SearchHandler:     handlers.Search,
	}
}
