package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/yungbote/lore-backend/internal/platform/logger"
)

// BadgerConfig configures the badger backend. Path is ignored when InMemory is set.
type BadgerConfig struct {
	Path       string
	InMemory   bool
	SyncWrites bool
	Log        *logger.Logger
}

// BadgerIndex persists the index in an embedded badger store. Facets live at
// "f/<repository>/<key>" and documents at "d/<repository>/<id>", JSON encoded.
type BadgerIndex struct {
	db *badger.DB
}

var _ Index = (*BadgerIndex)(nil)

const badgerConflictRetries = 5

type badgerLogger struct {
	log *logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.SugaredLogger.Errorf(format, args...)
}
func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.SugaredLogger.Warnf(format, args...)
}
func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.log.SugaredLogger.Infof(format, args...)
}
func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.SugaredLogger.Debugf(format, args...)
}

func OpenBadgerIndex(cfg BadgerConfig) (*BadgerIndex, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badger index: path is required for a persistent store")
	}
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create badger directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	if cfg.Log != nil {
		opts = opts.WithLogger(&badgerLogger{log: cfg.Log.With("component", "badger")})
	} else {
		opts = opts.WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger index: %w", err)
	}
	return &BadgerIndex{db: db}, nil
}

func facetPrefix(repositoryID uuid.UUID) []byte {
	return []byte("f/" + repositoryID.String() + "/")
}

func facetKey(repositoryID uuid.UUID, key string) []byte {
	return append(facetPrefix(repositoryID), key...)
}

func docPrefix(repositoryID uuid.UUID) []byte {
	return []byte("d/" + repositoryID.String() + "/")
}

func docKey(repositoryID, id uuid.UUID) []byte {
	return append(docPrefix(repositoryID), id.String()...)
}

// update runs fn in a read-write transaction, retrying on write conflicts.
func (b *BadgerIndex) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < badgerConflictRetries; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		err = b.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return b.mapErr(err)
		}
	}
	return err
}

func (b *BadgerIndex) mapErr(err error) error {
	if errors.Is(err, badger.ErrDBClosed) {
		return ErrClosed
	}
	return err
}

func getFacet(txn *badger.Txn, k []byte) (*Facet, error) {
	item, err := txn.Get(k)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var f Facet
	if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &f) }); err != nil {
		return nil, err
	}
	if f.Values == nil {
		f.Values = map[string]string{}
	}
	return &f, nil
}

func setJSON(txn *badger.Txn, k []byte, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(k, raw)
}

func (b *BadgerIndex) UpsertFacet(ctx context.Context, repositoryID uuid.UUID, key, label string) error {
	k := facetKey(repositoryID, key)
	return b.update(ctx, func(txn *badger.Txn) error {
		f, err := getFacet(txn, k)
		if err != nil {
			return err
		}
		if f == nil {
			f = &Facet{Key: key, Values: map[string]string{}}
		}
		f.Label = label
		return setJSON(txn, k, f)
	})
}

func (b *BadgerIndex) RemoveFacet(ctx context.Context, repositoryID uuid.UUID, key string) error {
	k := facetKey(repositoryID, key)
	return b.update(ctx, func(txn *badger.Txn) error {
		return txn.Delete(k)
	})
}

func (b *BadgerIndex) UpsertFacetValue(ctx context.Context, repositoryID uuid.UUID, key, valueKey, label string) error {
	k := facetKey(repositoryID, key)
	return b.update(ctx, func(txn *badger.Txn) error {
		f, err := getFacet(txn, k)
		if err != nil {
			return err
		}
		if f == nil {
			return ErrNoFacet
		}
		f.Values[valueKey] = label
		return setJSON(txn, k, f)
	})
}

func (b *BadgerIndex) RemoveFacetValue(ctx context.Context, repositoryID uuid.UUID, key, valueKey string) error {
	k := facetKey(repositoryID, key)
	return b.update(ctx, func(txn *badger.Txn) error {
		f, err := getFacet(txn, k)
		if err != nil || f == nil {
			return err
		}
		if _, ok := f.Values[valueKey]; !ok {
			return nil
		}
		delete(f.Values, valueKey)
		return setJSON(txn, k, f)
	})
}

func (b *BadgerIndex) PutDocument(ctx context.Context, doc Document) error {
	k := docKey(doc.RepositoryID, doc.ID)
	return b.update(ctx, func(txn *badger.Txn) error {
		return setJSON(txn, k, doc)
	})
}

func (b *BadgerIndex) DeleteDocument(ctx context.Context, repositoryID, id uuid.UUID) error {
	k := docKey(repositoryID, id)
	return b.update(ctx, func(txn *badger.Txn) error {
		return txn.Delete(k)
	})
}

func (b *BadgerIndex) Facet(ctx context.Context, repositoryID uuid.UUID, key string) (*Facet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out *Facet
	err := b.db.View(func(txn *badger.Txn) error {
		f, err := getFacet(txn, facetKey(repositoryID, key))
		out = f
		return err
	})
	return out, b.mapErr(err)
}

func scanPrefix(txn *badger.Txn, prefix []byte, fn func(val []byte) error) error {
	it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: true, PrefetchSize: 100, Prefix: prefix})
	defer it.Close()
	for it.Rewind(); it.Valid(); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

func (b *BadgerIndex) Facets(ctx context.Context, repositoryID uuid.UUID) ([]Facet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []Facet{}
	err := b.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, facetPrefix(repositoryID), func(val []byte) error {
			var f Facet
			if err := json.Unmarshal(val, &f); err != nil {
				return err
			}
			if f.Values == nil {
				f.Values = map[string]string{}
			}
			out = append(out, f)
			return nil
		})
	})
	if err != nil {
		return nil, b.mapErr(err)
	}
	sortFacets(out)
	return out, nil
}

func (b *BadgerIndex) Documents(ctx context.Context, repositoryID uuid.UUID) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []Document{}
	err := b.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, docPrefix(repositoryID), func(val []byte) error {
			var d Document
			if err := json.Unmarshal(val, &d); err != nil {
				return err
			}
			out = append(out, d)
			return nil
		})
	})
	if err != nil {
		return nil, b.mapErr(err)
	}
	sortDocuments(out)
	return out, nil
}

func (b *BadgerIndex) Close() error {
	return b.db.Close()
}
