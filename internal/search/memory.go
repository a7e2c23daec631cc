package search

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type memoryPartition struct {
	facets map[string]*Facet
	docs   map[uuid.UUID]Document
}

// MemoryIndex keeps the index in process memory.
type MemoryIndex struct {
	mu     sync.RWMutex
	repos  map[uuid.UUID]*memoryPartition
	closed bool
}

var _ Index = (*MemoryIndex)(nil)

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{repos: map[uuid.UUID]*memoryPartition{}}
}

func (m *MemoryIndex) partition(repositoryID uuid.UUID) *memoryPartition {
	p, ok := m.repos[repositoryID]
	if !ok {
		p = &memoryPartition{facets: map[string]*Facet{}, docs: map[uuid.UUID]Document{}}
		m.repos[repositoryID] = p
	}
	return p
}

func (m *MemoryIndex) UpsertFacet(_ context.Context, repositoryID uuid.UUID, key, label string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	p := m.partition(repositoryID)
	if f, ok := p.facets[key]; ok {
		f.Label = label
		return nil
	}
	p.facets[key] = &Facet{Key: key, Label: label, Values: map[string]string{}}
	return nil
}

func (m *MemoryIndex) RemoveFacet(_ context.Context, repositoryID uuid.UUID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.partition(repositoryID).facets, key)
	return nil
}

func (m *MemoryIndex) UpsertFacetValue(_ context.Context, repositoryID uuid.UUID, key, valueKey, label string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	f, ok := m.partition(repositoryID).facets[key]
	if !ok {
		return ErrNoFacet
	}
	f.Values[valueKey] = label
	return nil
}

func (m *MemoryIndex) RemoveFacetValue(_ context.Context, repositoryID uuid.UUID, key, valueKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if f, ok := m.partition(repositoryID).facets[key]; ok {
		delete(f.Values, valueKey)
	}
	return nil
}

func (m *MemoryIndex) PutDocument(_ context.Context, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.partition(doc.RepositoryID).docs[doc.ID] = copyDocument(doc)
	return nil
}

func (m *MemoryIndex) DeleteDocument(_ context.Context, repositoryID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.partition(repositoryID).docs, id)
	return nil
}

func (m *MemoryIndex) Facet(_ context.Context, repositoryID uuid.UUID, key string) (*Facet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	p, ok := m.repos[repositoryID]
	if !ok {
		return nil, nil
	}
	f, ok := p.facets[key]
	if !ok {
		return nil, nil
	}
	out := copyFacet(f)
	return &out, nil
}

func (m *MemoryIndex) Facets(_ context.Context, repositoryID uuid.UUID) ([]Facet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	out := []Facet{}
	if p, ok := m.repos[repositoryID]; ok {
		for _, f := range p.facets {
			out = append(out, copyFacet(f))
		}
	}
	sortFacets(out)
	return out, nil
}

func (m *MemoryIndex) Documents(_ context.Context, repositoryID uuid.UUID) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	out := []Document{}
	if p, ok := m.repos[repositoryID]; ok {
		for _, d := range p.docs {
			out = append(out, copyDocument(d))
		}
	}
	sortDocuments(out)
	return out, nil
}

func (m *MemoryIndex) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
