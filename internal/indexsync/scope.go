package indexsync

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
)

// Scope names the derived state a committed write invalidated.
// The slices keep first-added order so reconciles run in the order the
// write produced them; duplicates and uuid.Nil are dropped on insert.
type Scope struct {
	RepositoryID uuid.UUID
	// Vocabularies are reconciled against relational state (facet + values).
	Vocabularies []uuid.UUID
	// RemovedFacets are facet keys dropped outright, e.g. of deleted vocabularies.
	RemovedFacets []string
	// Resources are reindexed; ids that no longer exist are dropped from the index.
	Resources []uuid.UUID
}

func (s Scope) Empty() bool {
	return len(s.Vocabularies) == 0 && len(s.RemovedFacets) == 0 && len(s.Resources) == 0
}

func (s *Scope) AddVocabulary(ids ...uuid.UUID) {
	s.Vocabularies = appendNew(s.Vocabularies, uuid.Nil, ids...)
}

func (s *Scope) AddResource(ids ...uuid.UUID) {
	s.Resources = appendNew(s.Resources, uuid.Nil, ids...)
}

func (s *Scope) RemoveFacet(keys ...string) {
	s.RemovedFacets = appendNew(s.RemovedFacets, "", keys...)
}

// appendNew appends the items not already in dst, skipping zero.
func appendNew[T comparable](dst []T, zero T, items ...T) []T {
	seen := mapset.NewThreadUnsafeSet(dst...)
	for _, it := range items {
		if it == zero || !seen.Add(it) {
			continue
		}
		dst = append(dst, it)
	}
	return dst
}
