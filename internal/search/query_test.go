package search

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedQueryIndex(t *testing.T) (Index, uuid.UUID, []Document) {
	t.Helper()
	ctx := context.Background()
	idx := NewMemoryIndex()
	repo := uuid.New()

	require.NoError(t, idx.UpsertFacet(ctx, repo, "vocabulary_a", "Difficulty"))
	require.NoError(t, idx.UpsertFacetValue(ctx, repo, "vocabulary_a", "easy", "Easy"))
	require.NoError(t, idx.UpsertFacetValue(ctx, repo, "vocabulary_a", "hard", "Hard"))
	require.NoError(t, idx.UpsertFacet(ctx, repo, "vocabulary_b", "Empty"))

	docs := []Document{
		{ID: uuid.New(), RepositoryID: repo, Course: "MITx/1", Run: "T1", ResourceType: "problem",
			Title: "Circuits", Description: "ohm law", Text: "resistor",
			Terms: map[string][]string{"vocabulary_a": {"easy"}}},
		{ID: uuid.New(), RepositoryID: repo, Course: "MITx/1", Run: "T1", ResourceType: "video",
			Title: "Amplifiers", Description: "gain", Text: "ohm",
			Terms: map[string][]string{"vocabulary_a": {"hard"}}},
		{ID: uuid.New(), RepositoryID: repo, Course: "MITx/2", Run: "T2", ResourceType: "problem",
			Title: "Ohm", Description: "", Text: "",
			Terms: map[string][]string{"vocabulary_a": {"easy", "stale"}}},
	}
	for _, d := range docs {
		require.NoError(t, idx.PutDocument(ctx, d))
	}
	require.NoError(t, idx.PutDocument(ctx, Document{ID: uuid.New(), RepositoryID: uuid.New(), Title: "elsewhere"}))
	return idx, repo, docs
}

func TestSearchFacetCounts(t *testing.T) {
	idx, repo, _ := seedQueryIndex(t)
	res, err := Search(context.Background(), idx, Query{RepositoryID: repo})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Count)
	assert.Len(t, res.FacetCounts, 5)
	assert.Equal(t, "Item Type", res.FacetCounts[FieldResourceType].Facet.Label)
	assert.Equal(t,
		[]FacetValueCount{{Count: 2, Key: "problem", Label: "problem"}, {Count: 1, Key: "video", Label: "video"}},
		res.FacetCounts[FieldResourceType].Values)
	assert.Equal(t,
		[]FacetValueCount{{Count: 2, Key: "easy", Label: "Easy"}, {Count: 1, Key: "hard", Label: "Hard"}},
		res.FacetCounts["vocabulary_a"].Values)
	assert.Equal(t, "Empty", res.FacetCounts["vocabulary_b"].Facet.Label)
	assert.Empty(t, res.FacetCounts["vocabulary_b"].Values)
}

func TestSearchSelectedFacets(t *testing.T) {
	idx, repo, docs := seedQueryIndex(t)
	ctx := context.Background()

	res, err := Search(ctx, idx, Query{RepositoryID: repo, SelectedFacets: []string{"vocabulary_a_exact:hard"}})
	require.NoError(t, err)
	require.Equal(t, 1, res.Count)
	assert.Equal(t, docs[1].ID, res.Results[0].ID)
	// Zero-count values disappear from the narrowed counts.
	assert.Equal(t, []FacetValueCount{{Count: 1, Key: "hard", Label: "Hard"}}, res.FacetCounts["vocabulary_a"].Values)

	res, err = Search(ctx, idx, Query{RepositoryID: repo, SelectedFacets: []string{"run_exact:T1", "resource_type_exact:problem"}})
	require.NoError(t, err)
	require.Equal(t, 1, res.Count)
	assert.Equal(t, docs[0].ID, res.Results[0].ID)

	res, err = Search(ctx, idx, Query{RepositoryID: repo, SelectedFacets: []string{"vocabulary_gone_exact:easy"}})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Count)

	_, err = Search(ctx, idx, Query{RepositoryID: repo, SelectedFacets: []string{"vocabulary_a:easy"}})
	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "selected_facets", qe.Param)
}

func TestSearchTextAndSort(t *testing.T) {
	idx, repo, docs := seedQueryIndex(t)
	ctx := context.Background()

	res, err := Search(ctx, idx, Query{RepositoryID: repo, Text: "OHM"})
	require.NoError(t, err)
	require.Equal(t, 3, res.Count)
	// Title hits outrank description and body hits.
	assert.Equal(t, docs[2].ID, res.Results[0].ID)
	assert.Equal(t, docs[0].ID, res.Results[1].ID)

	res, err = Search(ctx, idx, Query{RepositoryID: repo, Text: "ohm resistor"})
	require.NoError(t, err)
	require.Equal(t, 1, res.Count)
	assert.Equal(t, docs[0].ID, res.Results[0].ID)

	res, err = Search(ctx, idx, Query{RepositoryID: repo, Sort: SortTitle})
	require.NoError(t, err)
	assert.Equal(t, []string{"Amplifiers", "Circuits", "Ohm"},
		[]string{res.Results[0].Title, res.Results[1].Title, res.Results[2].Title})

	_, err = Search(ctx, idx, Query{RepositoryID: repo, Sort: "newest"})
	require.Error(t, err)
}

func TestSearchPagination(t *testing.T) {
	idx, repo, _ := seedQueryIndex(t)
	res, err := Search(context.Background(), idx, Query{RepositoryID: repo, Sort: SortTitle, Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Count)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "Ohm", res.Results[0].Title)

	res, err = Search(context.Background(), idx, Query{RepositoryID: repo, Page: 9})
	require.NoError(t, err)
	assert.Empty(t, res.Results)
}

func TestParseSelectedFacet(t *testing.T) {
	field, value, err := ParseSelectedFacet("vocabulary_ab12_exact:4f2c")
	require.NoError(t, err)
	assert.Equal(t, "vocabulary_ab12", field)
	assert.Equal(t, "4f2c", value)

	for _, bad := range []string{"", "course", "course_exact:", "_exact:x", "course:x"} {
		_, _, err := ParseSelectedFacet(bad)
		assert.Error(t, err, bad)
	}
}
