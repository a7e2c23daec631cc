package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/lore-backend/internal/data/db"
	"github.com/yungbote/lore-backend/internal/data/repos"
	"github.com/yungbote/lore-backend/internal/http"
	"github.com/yungbote/lore-backend/internal/observability"
	"github.com/yungbote/lore-backend/internal/platform/envutil"
	"github.com/yungbote/lore-backend/internal/platform/logger"
)

type Options struct {
	// Migrate runs the schema migration before wiring.
	Migrate bool
}

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Server   *http.Server
	Cfg      Config
	Repos    repos.Set
	Services Services
	Clients  Clients
	Metrics  *observability.Metrics

	shutdownOTel func(context.Context) error
	cancel       context.CancelFunc
}

// NewLogger builds the process logger from LOG_MODE, loading .env first.
func NewLogger() (*logger.Logger, error) {
	_ = envutil.LoadDotEnv()
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// OpenDB connects to the configured database and optionally migrates it.
func OpenDB(log *logger.Logger, migrate bool) (*gorm.DB, error) {
	svc, err := db.Open(log)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	theDB := svc.DB()
	if migrate {
		log.Info("Migrating database schema...")
		if err := db.AutoMigrateAll(theDB); err != nil {
			return nil, err
		}
	}
	return theDB, nil
}

func New(ctx context.Context, opts Options) (*App, error) {
	log, err := NewLogger()
	if err != nil {
		return nil, err
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelCfg := observability.OtelConfigFromEnv(log)
	shutdownOTel := observability.InitOTel(ctx, log, otelCfg)
	tracingService := ""
	if otelCfg.Enabled {
		tracingService = otelCfg.ServiceName
	}
	metrics := observability.Init(log)

	theDB, err := OpenDB(log, opts.Migrate)
	if err != nil {
		log.Sync()
		return nil, err
	}
	metrics.RegisterDB(log, theDB, "primary")

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, clients, metrics)
	handlerset := wireHandlers(log, theDB, serviceset)
	middleware := wireMiddleware(log, serviceset)
	server := http.NewServer(wireRouter(log, cfg, handlerset, middleware, metrics, tracingService))

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       server.Engine,
		Server:       server,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		Metrics:      metrics,
		shutdownOTel: shutdownOTel,
	}, nil
}

// Start launches background work: the index repair schedule and the redis
// health collector.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if err := a.Services.Repair.Start(ctx); err != nil {
		return err
	}
	if a.Clients.Redis != nil {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis, 15*time.Second)
	}
	return nil
}

// Run serves HTTP on PORT until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(ctx, ":"+a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.shutdownOTel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.shutdownOTel(ctx); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
