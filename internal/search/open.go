package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/lore-backend/internal/platform/logger"
)

const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

type Config struct {
	Backend string
	Badger  BadgerConfig
	Redis   RedisConfig
}

// Open builds the configured backend.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (Index, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendMemory:
		return NewMemoryIndex(), nil
	case BackendBadger:
		bc := cfg.Badger
		if bc.Log == nil {
			bc.Log = log
		}
		return OpenBadgerIndex(bc)
	case BackendRedis:
		return OpenRedisIndex(ctx, cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown search backend %q", cfg.Backend)
	}
}
