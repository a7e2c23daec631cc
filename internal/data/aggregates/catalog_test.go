package aggregates_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/lore-backend/internal/data/aggregates"
	"github.com/yungbote/lore-backend/internal/data/repos"
	repotest "github.com/yungbote/lore-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lore-backend/internal/domain"
	domainagg "github.com/yungbote/lore-backend/internal/domain/aggregates"
	"github.com/yungbote/lore-backend/internal/indexsync"
	"github.com/yungbote/lore-backend/internal/search"
)

func newCatalog(t *testing.T) (domainagg.CatalogAggregate, repos.Set, *search.MemoryIndex) {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	set := repos.NewSet(db, log)
	idx := search.NewMemoryIndex()
	sync := indexsync.New(indexsync.Deps{DB: db, Log: log, Repos: set, Index: idx})
	agg := aggregates.NewCatalogAggregate(aggregates.NewCatalogAggregateDepsFromSet(aggregates.BaseDeps{
		DB: db, Log: log, Sync: sync,
	}, set))
	return agg, set, idx
}

func TestCreateRepositoryMakesCreatorAdministrator(t *testing.T) {
	agg, set, _ := newCatalog(t)
	ctx := context.Background()

	repo, err := agg.CreateRepository(ctx, domainagg.CreateRepositoryInput{Name: "Physics Lab", CreatedBy: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "physics-lab", repo.Slug)

	m, err := set.Member.Get(ctx, nil, repo.ID, "alice")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, types.RoleAdministrator, m.Role)

	again, err := agg.CreateRepository(ctx, domainagg.CreateRepositoryInput{Name: "physics lab!", CreatedBy: "bob"})
	require.NoError(t, err)
	assert.Equal(t, "physics-lab1", again.Slug)

	_, err = agg.CreateRepository(ctx, domainagg.CreateRepositoryInput{CreatedBy: "bob"})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation))
}

func TestMembershipKeepsAnAdministrator(t *testing.T) {
	agg, _, _ := newCatalog(t)
	ctx := context.Background()
	repo, err := agg.CreateRepository(ctx, domainagg.CreateRepositoryInput{Name: "Chem", CreatedBy: "alice"})
	require.NoError(t, err)

	_, err = agg.SetMember(ctx, domainagg.SetMemberInput{RepositoryID: repo.ID, Subject: "alice", Role: types.RoleAuthor})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation))
	err = agg.RemoveMember(ctx, domainagg.RemoveMemberInput{RepositoryID: repo.ID, Subject: "alice"})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation))

	m, err := agg.SetMember(ctx, domainagg.SetMemberInput{RepositoryID: repo.ID, Subject: "bob", Role: types.RoleCurator})
	require.NoError(t, err)
	assert.Equal(t, types.RoleCurator, m.Role)
	m, err = agg.SetMember(ctx, domainagg.SetMemberInput{RepositoryID: repo.ID, Subject: "bob", Role: types.RoleAdministrator})
	require.NoError(t, err)
	assert.Equal(t, types.RoleAdministrator, m.Role)

	require.NoError(t, agg.RemoveMember(ctx, domainagg.RemoveMemberInput{RepositoryID: repo.ID, Subject: "alice"}))
	err = agg.RemoveMember(ctx, domainagg.RemoveMemberInput{RepositoryID: repo.ID, Subject: "alice"})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound))

	_, err = agg.SetMember(ctx, domainagg.SetMemberInput{RepositoryID: repo.ID, Subject: "carol", Role: "owner"})
	require.Error(t, err)
	assert.NotEmpty(t, domainagg.FieldsOf(err)["role"])
}

func TestRegisterCourseIndexesResources(t *testing.T) {
	agg, set, idx := newCatalog(t)
	ctx := context.Background()
	repo, err := agg.CreateRepository(ctx, domainagg.CreateRepositoryInput{Name: "Circuits", CreatedBy: "alice"})
	require.NoError(t, err)

	in := domainagg.RegisterCourseInput{
		RepositoryID: repo.ID, Org: "MITx", CourseNumber: "6.002x", Run: "2012_Fall", ImportedBy: "alice",
		Resources: []domainagg.RegisterResourceInput{
			{ResourceType: "problem", Title: "Ohm's law", ContentXML: "<problem>V = IR</problem>"},
			{ResourceType: "lab", Title: "Breadboard", Metadata: map[string]any{"difficulty": 2}},
		},
	}
	res, err := agg.RegisterCourse(ctx, in)
	require.NoError(t, err)
	require.Len(t, res.Resources, 2)
	assert.Equal(t, "ohm-s-law", res.Resources[0].URLName)

	typesNow, err := set.ResourceType.List(ctx, nil)
	require.NoError(t, err)
	names := []string{}
	for _, rt := range typesNow {
		names = append(names, rt.Name)
	}
	assert.ElementsMatch(t, []string{"problem", "lab"}, names)

	docs, err := idx.Documents(ctx, repo.ID)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	for _, d := range docs {
		assert.Equal(t, "MITx/6.002x", d.Course)
		assert.Equal(t, "2012_Fall", d.Run)
	}

	_, err = agg.RegisterCourse(ctx, in)
	require.Error(t, err)
	assert.NotEmpty(t, domainagg.FieldsOf(err)["non_field_errors"])

	bad := in
	bad.Run = "other"
	bad.Resources = []domainagg.RegisterResourceInput{{ResourceType: "problem"}}
	_, err = agg.RegisterCourse(ctx, bad)
	require.Error(t, err)
	assert.NotEmpty(t, domainagg.FieldsOf(err)["resources[0].title"])
}
