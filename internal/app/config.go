package app

import (
	"time"

	"github.com/yungbote/lore-backend/internal/platform/envutil"
	"github.com/yungbote/lore-backend/internal/platform/logger"
	"github.com/yungbote/lore-backend/internal/search"
)

type Config struct {
	Port string

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	Index search.Config

	RepairSchedule    string
	RepairParallelism int

	CORSOrigins []string
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:           envutil.String("PORT", "8080", log),
		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", "defaultsecret", log),
		AccessTokenTTL: envutil.Duration("ACCESS_TOKEN_TTL", time.Hour, log),
		Index: search.Config{
			Backend: envutil.String("INDEX_BACKEND", search.BackendMemory, log),
			Badger: search.BadgerConfig{
				Path:       envutil.String("BADGER_PATH", "data/index", log),
				SyncWrites: envutil.Bool("BADGER_SYNC_WRITES", false, log),
			},
			Redis: search.RedisConfig{
				Addr:     envutil.String("REDIS_ADDR", "", log),
				Password: envutil.String("REDIS_PASSWORD", "", log),
				DB:       envutil.Int("REDIS_DB", 0, log),
				Prefix:   envutil.String("REDIS_PREFIX", "lore:", log),
			},
		},
		RepairSchedule:    envutil.String("INDEX_REPAIR_SCHEDULE", "", log),
		RepairParallelism: envutil.Int("INDEX_REPAIR_PARALLELISM", 4, log),
		CORSOrigins:       envutil.List("CORS_ALLOWED_ORIGINS", nil, log),
	}
}
