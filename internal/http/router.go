package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/lore-backend/internal/http/handlers"
	httpMW "github.com/yungbote/lore-backend/internal/http/middleware"
	"github.com/yungbote/lore-backend/internal/observability"
	"github.com/yungbote/lore-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AuthMiddleware *httpMW.AuthMiddleware
	Metrics        *observability.Metrics
	CORSOrigins    []string
	// TracingService enables otelgin spans under this service name when set.
	TracingService string

	HealthHandler     *httpH.HealthHandler
	RepositoryHandler *httpH.RepositoryHandler
	TaxonomyHandler   *httpH.TaxonomyHandler
	ResourceHandler   *httpH.ResourceHandler
	SearchHandler     *httpH.SearchHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(httpMW.Recover(cfg.Log))
	if cfg.TracingService != "" {
		r.Use(httpMW.Tracing(cfg.TracingService))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}

	if h := cfg.ResourceHandler; h != nil {
		api.GET("/learning_resource_types", h.ListTypes)
	}

	if h := cfg.RepositoryHandler; h != nil {
		api.GET("/repositories", h.List)
		api.POST("/repositories", h.Create)
	}

	repo := api.Group("/repositories/:repo")
	{
		if h := cfg.RepositoryHandler; h != nil {
			repo.GET("", h.Get)
			repo.GET("/members", h.ListMembers)
			repo.POST("/members", h.SetMember)
			repo.DELETE("/members/:subject", h.RemoveMember)
			repo.POST("/courses", h.RegisterCourse)
		}

		if h := cfg.ResourceHandler; h != nil {
			repo.GET("/learning_resources", h.List)
			repo.GET("/learning_resources/:id", h.Get)
			repo.PATCH("/learning_resources/:id", h.Patch)
		}

		if h := cfg.SearchHandler; h != nil {
			repo.GET("/search", h.Search)
		}

		if h := cfg.TaxonomyHandler; h != nil {
			repo.GET("/vocabularies", h.ListVocabularies)
			repo.POST("/vocabularies", h.CreateVocabulary)
			repo.GET("/vocabularies/:vocab", h.GetVocabulary)
			repo.PUT("/vocabularies/:vocab", h.UpdateVocabulary)
			repo.PATCH("/vocabularies/:vocab", h.UpdateVocabulary)
			repo.DELETE("/vocabularies/:vocab", h.DeleteVocabulary)

			repo.GET("/vocabularies/:vocab/terms", h.ListTerms)
			repo.POST("/vocabularies/:vocab/terms", h.CreateTerm)
			repo.GET("/vocabularies/:vocab/terms/:term", h.GetTerm)
			repo.PUT("/vocabularies/:vocab/terms/:term", h.UpdateTerm)
			repo.PATCH("/vocabularies/:vocab/terms/:term", h.UpdateTerm)
			repo.DELETE("/vocabularies/:vocab/terms/:term", h.DeleteTerm)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "not found", "code": "not_found"}})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": gin.H{"message": "method not allowed", "code": "method_not_allowed"}})
	})

	return r
}
