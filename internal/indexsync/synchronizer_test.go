package indexsync

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/lore-backend/internal/data/repos"
	"github.com/yungbote/lore-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lore-backend/internal/domain"
	"github.com/yungbote/lore-backend/internal/domain/taxonomy"
	"github.com/yungbote/lore-backend/internal/search"
)

type recordingHooks struct {
	mu  sync.Mutex
	ops []string
}

func (h *recordingHooks) ObserveIndexSync(op, status string, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ops = append(h.ops, op+":"+status)
}

type fixture struct {
	sync     *Synchronizer
	index    *search.MemoryIndex
	hooks    *recordingHooks
	repo     *types.Repository
	problem  *types.LearningResourceType
	video    *types.LearningResourceType
	p1, v1   *types.LearningResource
	vocab    *types.Vocabulary
	easy     *types.Term
	hard     *types.Term
	emptyVoc *types.Vocabulary
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	idx := search.NewMemoryIndex()
	hooks := &recordingHooks{}

	f := &fixture{index: idx, hooks: hooks}
	f.sync = New(Deps{DB: db, Log: log, Repos: repos.NewSet(db, log), Index: idx, Hooks: hooks})

	f.repo = testutil.SeedRepository(t, ctx, db, "Sync")
	course := testutil.SeedCourse(t, ctx, db, f.repo.ID, "MITx", "6.002x", "T1")
	f.problem = testutil.SeedResourceType(t, ctx, db, "problem")
	f.video = testutil.SeedResourceType(t, ctx, db, "video")
	f.p1 = testutil.SeedResource(t, ctx, db, course.ID, f.problem.ID, "Ohm")
	f.v1 = testutil.SeedResource(t, ctx, db, course.ID, f.video.ID, "Lecture")
	f.vocab = testutil.SeedVocabulary(t, ctx, db, f.repo.ID, "Difficulty", f.problem.ID, f.video.ID)
	f.easy = testutil.SeedTerm(t, ctx, db, f.vocab.ID, "Easy")
	f.hard = testutil.SeedTerm(t, ctx, db, f.vocab.ID, "Hard")
	f.emptyVoc = testutil.SeedVocabulary(t, ctx, db, f.repo.ID, "Unscoped")
	testutil.SeedLink(t, ctx, db, f.p1.ID, f.easy.ID)
	return f
}

func TestReconcileVocabularyProjectsLinkedTerms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sync.ReconcileVocabulary(ctx, f.repo.ID, f.vocab.ID))
	facet, err := f.index.Facet(ctx, f.repo.ID, f.vocab.IndexKey())
	require.NoError(t, err)
	require.NotNil(t, facet)
	assert.Equal(t, "Difficulty", facet.Label)
	assert.Equal(t, map[string]string{f.easy.ID.String(): "Easy"}, facet.Values)

	require.NoError(t, f.sync.ReconcileVocabulary(ctx, f.repo.ID, f.emptyVoc.ID))
	facet, err = f.index.Facet(ctx, f.repo.ID, f.emptyVoc.IndexKey())
	require.NoError(t, err)
	assert.Nil(t, facet, "a vocabulary without permitted types has no facet")

	assert.Equal(t, []string{"reconcile_vocabulary:success", "reconcile_vocabulary:success"}, f.hooks.ops)
}

func TestReconcileVocabularyDropsStaleValuesAndRelabels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := f.vocab.IndexKey()

	require.NoError(t, f.index.UpsertFacet(ctx, f.repo.ID, key, "old name"))
	require.NoError(t, f.index.UpsertFacetValue(ctx, f.repo.ID, key, f.hard.ID.String(), "Hard"))
	require.NoError(t, f.index.UpsertFacetValue(ctx, f.repo.ID, key, f.easy.ID.String(), "old label"))

	require.NoError(t, f.sync.ReconcileVocabulary(ctx, f.repo.ID, f.vocab.ID))
	require.NoError(t, f.sync.ReconcileVocabulary(ctx, f.repo.ID, f.vocab.ID))

	facet, err := f.index.Facet(ctx, f.repo.ID, key)
	require.NoError(t, err)
	assert.Equal(t, "Difficulty", facet.Label)
	assert.Equal(t, map[string]string{f.easy.ID.String(): "Easy"}, facet.Values)
}

func TestReconcileDeletedVocabularyRemovesFacet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gone := uuid.New()
	key := taxonomy.MakeVocabularyKey(gone)
	require.NoError(t, f.index.UpsertFacet(ctx, f.repo.ID, key, "ghost"))

	require.NoError(t, f.sync.ReconcileVocabulary(ctx, f.repo.ID, gone))
	facet, err := f.index.Facet(ctx, f.repo.ID, key)
	require.NoError(t, err)
	assert.Nil(t, facet)
}

func TestReindexResourceBuildsDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sync.ReindexResource(ctx, f.repo.ID, f.p1.ID))
	docs, err := f.index.Documents(ctx, f.repo.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	doc := docs[0]
	assert.Equal(t, f.p1.ID, doc.ID)
	assert.Equal(t, "MITx/6.002x", doc.Course)
	assert.Equal(t, "T1", doc.Run)
	assert.Equal(t, "problem", doc.ResourceType)
	assert.Equal(t, "Ohm", doc.Title)
	assert.Equal(t, []string{f.easy.ID.String()}, doc.Terms[f.vocab.IndexKey()])

	missing := uuid.New()
	require.NoError(t, f.index.PutDocument(ctx, search.Document{ID: missing, RepositoryID: f.repo.ID}))
	require.NoError(t, f.sync.ReindexResource(ctx, f.repo.ID, missing))
	docs, err = f.index.Documents(ctx, f.repo.ID)
	require.NoError(t, err)
	assert.Len(t, docs, 1, "documents of deleted resources are dropped")
}

func TestApplyOrdersRemovalsBeforeReconcile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stale := "vocabulary_deadbeef"
	require.NoError(t, f.index.UpsertFacet(ctx, f.repo.ID, stale, "stale"))

	scope := Scope{RepositoryID: f.repo.ID}
	scope.RemoveFacet(stale, stale)
	scope.AddVocabulary(f.vocab.ID, f.vocab.ID)
	scope.AddResource(f.p1.ID, f.v1.ID, uuid.Nil)
	assert.Len(t, scope.RemovedFacets, 1)
	assert.Len(t, scope.Vocabularies, 1)
	assert.Len(t, scope.Resources, 2)

	require.NoError(t, f.sync.Apply(ctx, scope))
	facets, err := f.index.Facets(ctx, f.repo.ID)
	require.NoError(t, err)
	require.Len(t, facets, 1)
	assert.Equal(t, f.vocab.IndexKey(), facets[0].Key)

	docs, err := f.index.Documents(ctx, f.repo.ID)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	require.NoError(t, f.sync.Apply(ctx, Scope{RepositoryID: f.repo.ID}))
	assert.Equal(t, []string{"apply:success"}, f.hooks.ops)
}

func TestRebuildRepositoryConverges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.index.UpsertFacet(ctx, f.repo.ID, "vocabulary_gone", "gone"))
	require.NoError(t, f.index.PutDocument(ctx, search.Document{ID: uuid.New(), RepositoryID: f.repo.ID, Title: "orphan"}))

	require.NoError(t, f.sync.RebuildRepository(ctx, f.repo.ID))
	require.NoError(t, f.sync.RebuildRepository(ctx, f.repo.ID))

	facets, err := f.index.Facets(ctx, f.repo.ID)
	require.NoError(t, err)
	require.Len(t, facets, 1)
	assert.Equal(t, f.vocab.IndexKey(), facets[0].Key)

	docs, err := f.index.Documents(ctx, f.repo.ID)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	ids := []uuid.UUID{docs[0].ID, docs[1].ID}
	assert.ElementsMatch(t, []uuid.UUID{f.p1.ID, f.v1.ID}, ids)
}

func TestIndexFailureSurfaces(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.index.Close())

	err := f.sync.Apply(ctx, Scope{RepositoryID: f.repo.ID, Vocabularies: []uuid.UUID{f.vocab.ID}})
	require.ErrorIs(t, err, search.ErrClosed)
	assert.Equal(t, []string{"apply:failure"}, f.hooks.ops)
}

func TestConcurrentReconcilesOfOneVocabularyConverge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.SeedLink(t, ctx, f.sync.db, f.v1.ID, f.hard.ID)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			return f.sync.Apply(gctx, Scope{RepositoryID: f.repo.ID, Vocabularies: []uuid.UUID{f.vocab.ID}})
		})
	}
	require.NoError(t, g.Wait())

	facet, err := f.index.Facet(ctx, f.repo.ID, f.vocab.IndexKey())
	require.NoError(t, err)
	require.NotNil(t, facet)
	assert.Equal(t, map[string]string{f.easy.ID.String(): "Easy", f.hard.ID.String(): "Hard"}, facet.Values)
	assert.Len(t, f.hooks.ops, 8)
}
