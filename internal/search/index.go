// Package search holds the faceted search index: the storage port the
// synchronizer writes through, its backends, and the query engine.
package search

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
)

var (
	// ErrNoFacet is returned when a value is written to a facet that does not exist.
	ErrNoFacet = errors.New("search: facet does not exist")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("search: index closed")
)

// Facet is one vocabulary as seen by search. Values maps a term id to its label.
type Facet struct {
	Key    string            `json:"key"`
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

// Document is the indexed view of one learning resource.
type Document struct {
	ID           uuid.UUID `json:"id"`
	RepositoryID uuid.UUID `json:"repository_id"`
	Course       string    `json:"course"`
	Run          string    `json:"run"`
	ResourceType string    `json:"resource_type"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Text         string    `json:"text"`
	// Terms maps a facet key to the ids of the linked terms in that vocabulary.
	Terms map[string][]string `json:"terms"`
}

// Index is the storage port for facets and documents, partitioned by repository.
// Implementations must be safe for concurrent use.
type Index interface {
	UpsertFacet(ctx context.Context, repositoryID uuid.UUID, key, label string) error
	RemoveFacet(ctx context.Context, repositoryID uuid.UUID, key string) error
	UpsertFacetValue(ctx context.Context, repositoryID uuid.UUID, key, valueKey, label string) error
	RemoveFacetValue(ctx context.Context, repositoryID uuid.UUID, key, valueKey string) error

	PutDocument(ctx context.Context, doc Document) error
	DeleteDocument(ctx context.Context, repositoryID, id uuid.UUID) error

	// Facet returns nil when the facet does not exist.
	Facet(ctx context.Context, repositoryID uuid.UUID, key string) (*Facet, error)
	// Facets returns every facet of the repository sorted by label, then key.
	Facets(ctx context.Context, repositoryID uuid.UUID) ([]Facet, error)
	Documents(ctx context.Context, repositoryID uuid.UUID) ([]Document, error)

	Close() error
}

func sortFacets(fs []Facet) {
	sort.Slice(fs, func(i, j int) bool {
		if fs[i].Label != fs[j].Label {
			return fs[i].Label < fs[j].Label
		}
		return fs[i].Key < fs[j].Key
	})
}

func sortDocuments(ds []Document) {
	sort.Slice(ds, func(i, j int) bool {
		return ds[i].ID.String() < ds[j].ID.String()
	})
}

func copyFacet(f *Facet) Facet {
	out := Facet{Key: f.Key, Label: f.Label, Values: make(map[string]string, len(f.Values))}
	for k, v := range f.Values {
		out.Values[k] = v
	}
	return out
}

func copyDocument(d Document) Document {
	out := d
	out.Terms = make(map[string][]string, len(d.Terms))
	for k, ids := range d.Terms {
		out.Terms[k] = append([]string(nil), ids...)
	}
	return out
}
