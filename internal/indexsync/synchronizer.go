// Package indexsync projects relational taxonomy state into the search index.
//
// Every mutation commits first and reconciles second: the index is derived
// state and each reconciliation recomputes it from the database, so running
// one twice (or after a failed attempt) converges on the same result.
package indexsync

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/yungbote/lore-backend/internal/data/repos"
	"github.com/yungbote/lore-backend/internal/domain/taxonomy"
	"github.com/yungbote/lore-backend/internal/platform/logger"
	"github.com/yungbote/lore-backend/internal/search"
)

var tracer = otel.Tracer("lore/indexsync")

// Hooks observes reconciliation outcomes.
type Hooks interface {
	ObserveIndexSync(op, status string, dur time.Duration)
}

type noopHooks struct{}

func (noopHooks) ObserveIndexSync(string, string, time.Duration) {}

type Deps struct {
	DB    *gorm.DB
	Log   *logger.Logger
	Repos repos.Set
	Index search.Index
	Hooks Hooks
}

type Synchronizer struct {
	db    *gorm.DB
	log   *logger.Logger
	repos repos.Set
	index search.Index
	hooks Hooks

	// vocabLocks holds one *sync.Mutex per vocabulary id.
	vocabLocks sync.Map
}

func New(deps Deps) *Synchronizer {
	hooks := deps.Hooks
	if hooks == nil {
		hooks = noopHooks{}
	}
	return &Synchronizer{
		db:    deps.DB,
		log:   deps.Log.With("service", "IndexSynchronizer"),
		repos: deps.Repos,
		index: deps.Index,
		hooks: hooks,
	}
}

// Index exposes the backing index to readers.
func (s *Synchronizer) Index() search.Index { return s.index }

func (s *Synchronizer) observe(op string, start time.Time, span trace.Span, err error) {
	status := "success"
	if err != nil {
		status = "failure"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.hooks.ObserveIndexSync(op, status, time.Since(start))
}

// Apply reconciles everything a committed write touched: removed facets go
// first, then documents, then vocabulary facets.
//
// Reconciles of one vocabulary are serialized within a process, so a slower
// reconcile holding an older read cannot overwrite a newer one here. Separate
// processes writing the same vocabulary can still interleave; the loser's
// stale facet value survives until the next write to that vocabulary or the
// next repair run. Last committed write wins.
func (s *Synchronizer) Apply(ctx context.Context, scope Scope) (err error) {
	if scope.Empty() {
		return nil
	}
	start := time.Now()
	ctx, span := tracer.Start(ctx, "indexsync.Apply",
		trace.WithAttributes(
			attribute.String("repository.id", scope.RepositoryID.String()),
			attribute.Int("scope.vocabularies", len(scope.Vocabularies)),
			attribute.Int("scope.removed_facets", len(scope.RemovedFacets)),
			attribute.Int("scope.resources", len(scope.Resources)),
		),
	)
	defer func() {
		s.observe("apply", start, span, err)
		span.End()
	}()

	for _, key := range scope.RemovedFacets {
		if err := s.index.RemoveFacet(ctx, scope.RepositoryID, key); err != nil {
			return fmt.Errorf("remove facet %s: %w", key, err)
		}
	}
	if err := s.reindex(ctx, scope.RepositoryID, scope.Resources); err != nil {
		return err
	}
	for _, id := range scope.Vocabularies {
		if err := s.reconcileVocabulary(ctx, scope.RepositoryID, id); err != nil {
			return err
		}
	}
	return nil
}

// ReconcileVocabulary makes the vocabulary's facet match relational state:
// present iff it permits at least one resource type, labeled by its name,
// holding exactly the terms linked to at least one resource.
func (s *Synchronizer) ReconcileVocabulary(ctx context.Context, repositoryID, vocabularyID uuid.UUID) (err error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "indexsync.ReconcileVocabulary",
		trace.WithAttributes(attribute.String("vocabulary.id", vocabularyID.String())))
	defer func() {
		s.observe("reconcile_vocabulary", start, span, err)
		span.End()
	}()
	return s.reconcileVocabulary(ctx, repositoryID, vocabularyID)
}

func (s *Synchronizer) reconcileVocabulary(ctx context.Context, repositoryID, vocabularyID uuid.UUID) error {
	mu, _ := s.vocabLocks.LoadOrStore(vocabularyID, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
	defer mu.(*sync.Mutex).Unlock()

	key := taxonomy.MakeVocabularyKey(vocabularyID)

	vocab, err := s.repos.Vocabulary.GetByID(ctx, s.db, vocabularyID)
	if err != nil {
		return fmt.Errorf("load vocabulary %s: %w", vocabularyID, err)
	}
	if vocab == nil {
		return s.removeFacet(ctx, repositoryID, key)
	}
	typeIDs, err := s.repos.VocabularyResourceType.ListTypeIDs(ctx, s.db, vocabularyID)
	if err != nil {
		return fmt.Errorf("load permitted types of %s: %w", vocabularyID, err)
	}
	if len(typeIDs) == 0 {
		return s.removeFacet(ctx, vocab.RepositoryID, key)
	}

	if err := s.index.UpsertFacet(ctx, vocab.RepositoryID, key, vocab.Name); err != nil {
		return fmt.Errorf("upsert facet %s: %w", key, err)
	}
	linked, err := s.repos.Term.ListLinkedByVocabulary(ctx, s.db, vocabularyID)
	if err != nil {
		return fmt.Errorf("load linked terms of %s: %w", vocabularyID, err)
	}
	want := mapset.NewThreadUnsafeSet[string]()
	for _, t := range linked {
		valueKey := t.ID.String()
		want.Add(valueKey)
		if err := s.index.UpsertFacetValue(ctx, vocab.RepositoryID, key, valueKey, t.Label); err != nil {
			return fmt.Errorf("upsert facet value %s/%s: %w", key, valueKey, err)
		}
	}

	current, err := s.index.Facet(ctx, vocab.RepositoryID, key)
	if err != nil {
		return fmt.Errorf("read facet %s: %w", key, err)
	}
	if current == nil {
		return nil
	}
	for valueKey := range current.Values {
		if want.Contains(valueKey) {
			continue
		}
		if err := s.index.RemoveFacetValue(ctx, vocab.RepositoryID, key, valueKey); err != nil {
			return fmt.Errorf("remove facet value %s/%s: %w", key, valueKey, err)
		}
	}
	return nil
}

func (s *Synchronizer) removeFacet(ctx context.Context, repositoryID uuid.UUID, key string) error {
	if repositoryID == uuid.Nil {
		return nil
	}
	if err := s.index.RemoveFacet(ctx, repositoryID, key); err != nil {
		return fmt.Errorf("remove facet %s: %w", key, err)
	}
	return nil
}

// ReindexResource rebuilds one resource document from relational state.
func (s *Synchronizer) ReindexResource(ctx context.Context, repositoryID, resourceID uuid.UUID) (err error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "indexsync.ReindexResource",
		trace.WithAttributes(attribute.String("resource.id", resourceID.String())))
	defer func() {
		s.observe("reindex_resource", start, span, err)
		span.End()
	}()
	return s.reindex(ctx, repositoryID, []uuid.UUID{resourceID})
}

func (s *Synchronizer) reindex(ctx context.Context, repositoryID uuid.UUID, resourceIDs []uuid.UUID) error {
	if len(resourceIDs) == 0 {
		return nil
	}
	rows, err := s.repos.Resource.GetRows(ctx, s.db, resourceIDs)
	if err != nil {
		return fmt.Errorf("load resources: %w", err)
	}
	termsByResource, err := s.repos.ResourceTerm.ListTermsByResourceIDs(ctx, s.db, resourceIDs)
	if err != nil {
		return fmt.Errorf("load resource terms: %w", err)
	}

	found := make(map[uuid.UUID]bool, len(rows))
	for _, row := range rows {
		found[row.ID] = true
		doc := BuildDocument(row, termsByResource[row.ID])
		if err := s.index.PutDocument(ctx, doc); err != nil {
			return fmt.Errorf("put document %s: %w", row.ID, err)
		}
	}
	for _, id := range resourceIDs {
		if found[id] || repositoryID == uuid.Nil {
			continue
		}
		if err := s.index.DeleteDocument(ctx, repositoryID, id); err != nil {
			return fmt.Errorf("delete document %s: %w", id, err)
		}
	}
	return nil
}

// BuildDocument is the indexed projection of a resource and its linked terms.
func BuildDocument(row *repos.ResourceRow, terms []*taxonomy.Term) search.Document {
	doc := search.Document{
		ID:           row.ID,
		RepositoryID: row.RepositoryID,
		Course:       row.CourseKey(),
		Run:          row.CourseRun,
		ResourceType: row.TypeName,
		Title:        row.Title,
		Description:  row.Description,
		Text:         strings.TrimSpace(row.ContentXML),
		Terms:        make(map[string][]string, len(terms)),
	}
	for _, t := range terms {
		key := taxonomy.MakeVocabularyKey(t.VocabularyID)
		doc.Terms[key] = append(doc.Terms[key], t.ID.String())
	}
	return doc
}

// RebuildRepository recomputes the whole partition: facets of vocabularies
// that no longer exist and documents of deleted resources are dropped, every
// resource is reindexed and every vocabulary reconciled.
func (s *Synchronizer) RebuildRepository(ctx context.Context, repositoryID uuid.UUID) (err error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "indexsync.RebuildRepository",
		trace.WithAttributes(attribute.String("repository.id", repositoryID.String())))
	defer func() {
		s.observe("rebuild_repository", start, span, err)
		span.End()
	}()

	vocabs, _, err := s.repos.Vocabulary.ListByRepository(ctx, s.db, repositoryID, repos.VocabularyFilter{})
	if err != nil {
		return fmt.Errorf("list vocabularies: %w", err)
	}
	liveKeys := mapset.NewThreadUnsafeSet[string]()
	for _, v := range vocabs {
		liveKeys.Add(v.IndexKey())
	}
	facets, err := s.index.Facets(ctx, repositoryID)
	if err != nil {
		return fmt.Errorf("list facets: %w", err)
	}
	for _, f := range facets {
		if !liveKeys.Contains(f.Key) {
			if err := s.removeFacet(ctx, repositoryID, f.Key); err != nil {
				return err
			}
		}
	}

	ids, err := s.repos.Resource.ListIDsByRepository(ctx, s.db, repositoryID)
	if err != nil {
		return fmt.Errorf("list resources: %w", err)
	}
	liveDocs := mapset.NewThreadUnsafeSet[uuid.UUID](ids...)
	docs, err := s.index.Documents(ctx, repositoryID)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	for _, d := range docs {
		if liveDocs.Contains(d.ID) {
			continue
		}
		if err := s.index.DeleteDocument(ctx, repositoryID, d.ID); err != nil {
			return fmt.Errorf("delete document %s: %w", d.ID, err)
		}
	}
	const batch = 200
	for i := 0; i < len(ids); i += batch {
		end := i + batch
		if end > len(ids) {
			end = len(ids)
		}
		if err := s.reindex(ctx, repositoryID, ids[i:end]); err != nil {
			return err
		}
	}
	for _, v := range vocabs {
		if err := s.reconcileVocabulary(ctx, repositoryID, v.ID); err != nil {
			return err
		}
	}
	s.log.Info("Rebuilt search index", "repository_id", repositoryID, "vocabularies", len(vocabs), "resources", len(ids))
	return nil
}
