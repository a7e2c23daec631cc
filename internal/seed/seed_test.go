package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/lore-backend/internal/data/aggregates"
	"github.com/yungbote/lore-backend/internal/data/repos"
	repotest "github.com/yungbote/lore-backend/internal/data/repos/testutil"
	"github.com/yungbote/lore-backend/internal/indexsync"
	"github.com/yungbote/lore-backend/internal/search"
)

const physics = `
learning_resource_types: [chapter]
repositories:
  - name: Physics
    description: Mechanics and waves
    created_by: alice
    members:
      - subject: bob
        role: curator
    vocabularies:
      - name: Difficulty
        required: true
        weight: 2
        learning_resource_types: [problem, video]
        terms:
          - label: Easy
            weight: 1
          - Hard
`

func newLoader(t *testing.T) (*Loader, repos.Set, *search.MemoryIndex) {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	set := repos.NewSet(db, log)
	idx := search.NewMemoryIndex()
	sync := indexsync.New(indexsync.Deps{DB: db, Log: log, Repos: set, Index: idx})
	base := aggregates.BaseDeps{DB: db, Log: log, Sync: sync}
	catalog := aggregates.NewCatalogAggregate(aggregates.NewCatalogAggregateDepsFromSet(base, set))
	taxonomy := aggregates.NewTaxonomyAggregate(aggregates.NewTaxonomyAggregateDepsFromSet(base, set))
	return NewLoader(log, set, catalog, taxonomy), set, idx
}

func TestParse(t *testing.T) {
	f, err := Parse(strings.NewReader(physics))
	require.NoError(t, err)
	require.Len(t, f.Repositories, 1)
	r := f.Repositories[0]
	assert.Equal(t, "alice", r.CreatedBy)
	require.Len(t, r.Vocabularies, 1)
	v := r.Vocabularies[0]
	assert.Equal(t, "m", v.VocabularyType)
	assert.Equal(t, []Term{{Label: "Easy", Weight: 1}, {Label: "Hard"}}, v.Terms)
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":       "repositories:\n  - name: X\n    colour: red\n",
		"missing name":      "repositories:\n  - description: nameless\n",
		"nameless vocab":    "repositories:\n  - name: X\n    vocabularies:\n      - weight: 1\n",
		"malformed content": "repositories: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	f, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Repositories)
}

func TestApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	loader, set, idx := newLoader(t)
	f, err := Parse(strings.NewReader(physics))
	require.NoError(t, err)

	sum, err := loader.Apply(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, Summary{Repositories: 1, Members: 1, Vocabularies: 1, Terms: 2}, sum)

	sum, err = loader.Apply(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, sum)

	typesList, err := set.ResourceType.List(ctx, nil)
	require.NoError(t, err)
	names := make([]string, 0, len(typesList))
	for _, rt := range typesList {
		names = append(names, rt.Name)
	}
	assert.Equal(t, []string{"chapter", "problem", "video"}, names)

	all, err := set.Repository.ListAll(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	repo := all[0]

	admin, err := set.Member.Get(ctx, nil, repo.ID, "alice")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, "administrator", admin.Role)

	vocab, err := set.Vocabulary.GetByName(ctx, nil, repo.ID, "Difficulty")
	require.NoError(t, err)
	require.NotNil(t, vocab)
	assert.True(t, vocab.Required)

	facet, err := idx.Facet(ctx, repo.ID, vocab.IndexKey())
	require.NoError(t, err)
	require.NotNil(t, facet)
	assert.Equal(t, "Difficulty", facet.Label)
}

func TestApplyConvergesChanges(t *testing.T) {
	ctx := context.Background()
	loader, set, _ := newLoader(t)
	f, err := Parse(strings.NewReader(physics))
	require.NoError(t, err)
	_, err = loader.Apply(ctx, f)
	require.NoError(t, err)

	v := &f.Repositories[0].Vocabularies[0]
	v.Weight = 5
	v.LearningResourceTypes = []string{"problem"}
	v.Terms[0].Weight = 9
	f.Repositories[0].Members[0].Role = "author"

	sum, err := loader.Apply(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, Summary{Members: 1, Vocabularies: 1, Terms: 1}, sum)

	all, err := set.Repository.ListAll(ctx, nil)
	require.NoError(t, err)
	repo := all[0]
	vocab, err := set.Vocabulary.GetByName(ctx, nil, repo.ID, "Difficulty")
	require.NoError(t, err)
	assert.Equal(t, 5, vocab.Weight)

	typeNames, err := set.VocabularyResourceType.TypeNamesByVocabularyIDs(ctx, nil, []uuid.UUID{vocab.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"problem"}, typeNames[vocab.ID])

	easy, err := set.Term.GetByLabel(ctx, nil, vocab.ID, "Easy")
	require.NoError(t, err)
	assert.Equal(t, 9, easy.Weight)

	bob, err := set.Member.Get(ctx, nil, repo.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, "author", bob.Role)
}
