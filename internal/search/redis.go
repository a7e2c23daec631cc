package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// RedisConfig configures the redis backend. Prefix namespaces every key.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisIndex stores facet labels, facet values and documents in redis hashes:
//
//	<prefix>facets:<repository>         key -> label
//	<prefix>facet:<repository>:<key>    term id -> label
//	<prefix>docs:<repository>           document id -> JSON document
type RedisIndex struct {
	rdb    *goredis.Client
	prefix string
}

var _ Index = (*RedisIndex)(nil)

// upsertValueScript writes a facet value only while the facet exists.
var upsertValueScript = goredis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[2], ARGV[2], ARGV[3])
return 1
`)

func OpenRedisIndex(ctx context.Context, cfg RedisConfig) (*RedisIndex, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisIndex(rdb, cfg.Prefix), nil
}

// NewRedisIndex wraps an existing client.
func NewRedisIndex(rdb *goredis.Client, prefix string) *RedisIndex {
	if prefix == "" {
		prefix = "lore:"
	}
	return &RedisIndex{rdb: rdb, prefix: prefix}
}

func (r *RedisIndex) labelsKey(repositoryID uuid.UUID) string {
	return r.prefix + "facets:" + repositoryID.String()
}

func (r *RedisIndex) valuesKey(repositoryID uuid.UUID, key string) string {
	return r.prefix + "facet:" + repositoryID.String() + ":" + key
}

func (r *RedisIndex) docsKey(repositoryID uuid.UUID) string {
	return r.prefix + "docs:" + repositoryID.String()
}

func (r *RedisIndex) mapErr(err error) error {
	if errors.Is(err, goredis.ErrClosed) {
		return ErrClosed
	}
	return err
}

func (r *RedisIndex) UpsertFacet(ctx context.Context, repositoryID uuid.UUID, key, label string) error {
	return r.mapErr(r.rdb.HSet(ctx, r.labelsKey(repositoryID), key, label).Err())
}

func (r *RedisIndex) RemoveFacet(ctx context.Context, repositoryID uuid.UUID, key string) error {
	_, err := r.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.HDel(ctx, r.labelsKey(repositoryID), key)
		p.Del(ctx, r.valuesKey(repositoryID, key))
		return nil
	})
	return r.mapErr(err)
}

func (r *RedisIndex) UpsertFacetValue(ctx context.Context, repositoryID uuid.UUID, key, valueKey, label string) error {
	n, err := upsertValueScript.Run(ctx, r.rdb,
		[]string{r.labelsKey(repositoryID), r.valuesKey(repositoryID, key)},
		key, valueKey, label,
	).Int()
	if err != nil {
		return r.mapErr(err)
	}
	if n == 0 {
		return ErrNoFacet
	}
	return nil
}

func (r *RedisIndex) RemoveFacetValue(ctx context.Context, repositoryID uuid.UUID, key, valueKey string) error {
	return r.mapErr(r.rdb.HDel(ctx, r.valuesKey(repositoryID, key), valueKey).Err())
}

func (r *RedisIndex) PutDocument(ctx context.Context, doc Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return r.mapErr(r.rdb.HSet(ctx, r.docsKey(doc.RepositoryID), doc.ID.String(), raw).Err())
}

func (r *RedisIndex) DeleteDocument(ctx context.Context, repositoryID, id uuid.UUID) error {
	return r.mapErr(r.rdb.HDel(ctx, r.docsKey(repositoryID), id.String()).Err())
}

func (r *RedisIndex) Facet(ctx context.Context, repositoryID uuid.UUID, key string) (*Facet, error) {
	label, err := r.rdb.HGet(ctx, r.labelsKey(repositoryID), key).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, r.mapErr(err)
	}
	values, err := r.rdb.HGetAll(ctx, r.valuesKey(repositoryID, key)).Result()
	if err != nil {
		return nil, r.mapErr(err)
	}
	return &Facet{Key: key, Label: label, Values: values}, nil
}

func (r *RedisIndex) Facets(ctx context.Context, repositoryID uuid.UUID) ([]Facet, error) {
	labels, err := r.rdb.HGetAll(ctx, r.labelsKey(repositoryID)).Result()
	if err != nil {
		return nil, r.mapErr(err)
	}
	out := make([]Facet, 0, len(labels))
	if len(labels) == 0 {
		return out, nil
	}
	cmds := make(map[string]*goredis.MapStringStringCmd, len(labels))
	_, err = r.rdb.Pipelined(ctx, func(p goredis.Pipeliner) error {
		for key := range labels {
			cmds[key] = p.HGetAll(ctx, r.valuesKey(repositoryID, key))
		}
		return nil
	})
	if err != nil {
		return nil, r.mapErr(err)
	}
	for key, label := range labels {
		values, err := cmds[key].Result()
		if err != nil {
			return nil, r.mapErr(err)
		}
		out = append(out, Facet{Key: key, Label: label, Values: values})
	}
	sortFacets(out)
	return out, nil
}

func (r *RedisIndex) Documents(ctx context.Context, repositoryID uuid.UUID) ([]Document, error) {
	raw, err := r.rdb.HGetAll(ctx, r.docsKey(repositoryID)).Result()
	if err != nil {
		return nil, r.mapErr(err)
	}
	out := make([]Document, 0, len(raw))
	for id, val := range raw {
		var d Document
		if err := json.Unmarshal([]byte(val), &d); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", id, err)
		}
		out = append(out, d)
	}
	sortDocuments(out)
	return out, nil
}

// Client exposes the underlying connection for health checks and metrics.
func (r *RedisIndex) Client() *goredis.Client { return r.rdb }

func (r *RedisIndex) Close() error {
	return r.rdb.Close()
}
