package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/lore-backend/internal/platform/logger"
	"github.com/yungbote/lore-backend/internal/search"
)

type Clients struct {
	Index search.Index
	// Redis is set when the redis backend is in use.
	Redis *goredis.Client
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...", "index_backend", cfg.Index.Backend)
	idx, err := search.Open(ctx, cfg.Index, log)
	if err != nil {
		return Clients{}, fmt.Errorf("init search index: %w", err)
	}
	out := Clients{Index: idx}
	if r, ok := idx.(*search.RedisIndex); ok {
		out.Redis = r.Client()
	}
	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Index != nil {
		_ = c.Index.Close()
	}
}
