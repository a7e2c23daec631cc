package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/lore-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lore-backend/internal/domain"
)

func TestRepositoryRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewRepositoryRepo(db, testutil.Logger(t))

	r1 := &types.Repository{Name: "Physics", Slug: "physics", CreatedBy: "alice"}
	if err := repo.Create(ctx, tx, r1); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r1.ID == uuid.Nil {
		t.Fatalf("Create did not assign an id")
	}
	r2 := testutil.SeedRepository(t, ctx, tx, "Physics Two")

	if got, err := repo.GetBySlug(ctx, tx, "physics"); err != nil || got == nil || got.ID != r1.ID {
		t.Fatalf("GetBySlug: got=%v err=%v", got, err)
	}
	if got, err := repo.GetBySlug(ctx, tx, "missing"); err != nil || got != nil {
		t.Fatalf("GetBySlug missing: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByID(ctx, tx, r2.ID); err != nil || got == nil || got.Slug != "physics-two" {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if slugs, err := repo.SlugsWithPrefix(ctx, tx, "physics"); err != nil || len(slugs) != 2 {
		t.Fatalf("SlugsWithPrefix: slugs=%v err=%v", slugs, err)
	}
	if all, err := repo.ListAll(ctx, tx); err != nil || len(all) != 2 {
		t.Fatalf("ListAll: len=%d err=%v", len(all), err)
	}

	testutil.SeedMember(t, ctx, tx, r2.ID, "bob", types.RoleCurator)
	rows, err := repo.ListBySubject(ctx, tx, "bob")
	if err != nil || len(rows) != 1 || rows[0].ID != r2.ID {
		t.Fatalf("ListBySubject: rows=%v err=%v", rows, err)
	}
}

func TestMemberRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewMemberRepo(db, testutil.Logger(t))
	r := testutil.SeedRepository(t, ctx, tx, "Members")

	if err := repo.Upsert(ctx, tx, &types.RepositoryMember{RepositoryID: r.ID, Subject: "carol", Role: types.RoleAuthor}); err != nil {
		t.Fatalf("Upsert insert: %v", err)
	}
	if err := repo.Upsert(ctx, tx, &types.RepositoryMember{RepositoryID: r.ID, Subject: "carol", Role: types.RoleCurator}); err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	got, err := repo.Get(ctx, tx, r.ID, "carol")
	if err != nil || got == nil || got.Role != types.RoleCurator {
		t.Fatalf("Get: got=%v err=%v", got, err)
	}
	if n, err := repo.CountByRole(ctx, tx, r.ID, types.RoleCurator); err != nil || n != 1 {
		t.Fatalf("CountByRole: n=%d err=%v", n, err)
	}
	if rows, err := repo.ListByRepository(ctx, tx, r.ID); err != nil || len(rows) != 1 {
		t.Fatalf("ListByRepository: len=%d err=%v", len(rows), err)
	}
	if n, err := repo.Delete(ctx, tx, r.ID, "carol"); err != nil || n != 1 {
		t.Fatalf("Delete: n=%d err=%v", n, err)
	}
	if got, err := repo.Get(ctx, tx, r.ID, "carol"); err != nil || got != nil {
		t.Fatalf("Get after delete: got=%v err=%v", got, err)
	}
}

func TestCourseAndResourceTypeRepos(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)
	courses := NewCourseRepo(db, log)
	rtypes := NewResourceTypeRepo(db, log)
	r := testutil.SeedRepository(t, ctx, tx, "Courses")

	c := &types.Course{RepositoryID: r.ID, Org: "MITx", CourseNumber: "6.002x", Run: "2025_T1"}
	if err := courses.Create(ctx, tx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got, err := courses.GetByIdentity(ctx, tx, r.ID, "MITx", "6.002x", "2025_T1"); err != nil || got == nil || got.ID != c.ID {
		t.Fatalf("GetByIdentity: got=%v err=%v", got, err)
	}
	if got, err := courses.GetByIdentity(ctx, tx, r.ID, "MITx", "6.002x", "other"); err != nil || got != nil {
		t.Fatalf("GetByIdentity other run: got=%v err=%v", got, err)
	}
	if rows, err := courses.ListByRepository(ctx, tx, r.ID); err != nil || len(rows) != 1 {
		t.Fatalf("ListByRepository: len=%d err=%v", len(rows), err)
	}

	first, err := rtypes.Ensure(ctx, tx, []string{"problem", "video"})
	if err != nil || len(first) != 2 {
		t.Fatalf("Ensure: rows=%v err=%v", first, err)
	}
	again, err := rtypes.Ensure(ctx, tx, []string{"problem", "chapter"})
	if err != nil || len(again) != 2 {
		t.Fatalf("Ensure again: rows=%v err=%v", again, err)
	}
	if again[1].Name != "problem" || again[1].ID != first[0].ID {
		t.Fatalf("Ensure should reuse existing type, got %+v", again)
	}
	if all, err := rtypes.List(ctx, tx); err != nil || len(all) != 3 {
		t.Fatalf("List: len=%d err=%v", len(all), err)
	}
	if rows, err := rtypes.GetByIDs(ctx, tx, []uuid.UUID{first[1].ID}); err != nil || len(rows) != 1 || rows[0].Name != "video" {
		t.Fatalf("GetByIDs: rows=%v err=%v", rows, err)
	}
}

func TestResourceRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewResourceRepo(db, testutil.Logger(t))

	r := testutil.SeedRepository(t, ctx, tx, "Resources")
	other := testutil.SeedRepository(t, ctx, tx, "Elsewhere")
	c := testutil.SeedCourse(t, ctx, tx, r.ID, "MITx", "8.01", "T1")
	oc := testutil.SeedCourse(t, ctx, tx, other.ID, "MITx", "8.01", "T1")
	problem := testutil.SeedResourceType(t, ctx, tx, "problem")
	video := testutil.SeedResourceType(t, ctx, tx, "video")

	created, err := repo.Create(ctx, tx, []*types.LearningResource{
		{CourseID: c.ID, LearningResourceTypeID: problem.ID, Title: "p1"},
		{CourseID: c.ID, LearningResourceTypeID: video.ID, Title: "v1"},
	})
	if err != nil || len(created) != 2 || created[0].ID == uuid.Nil {
		t.Fatalf("Create: rows=%v err=%v", created, err)
	}
	testutil.SeedResource(t, ctx, tx, oc.ID, problem.ID, "foreign")

	if got, err := repo.GetByID(ctx, tx, created[0].ID); err != nil || got == nil || got.Title != "p1" {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}

	rows, err := repo.GetRows(ctx, tx, []uuid.UUID{created[1].ID})
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetRows: rows=%v err=%v", rows, err)
	}
	if rows[0].RepositoryID != r.ID || rows[0].TypeName != "video" || rows[0].CourseKey() != "MITx/8.01" || rows[0].CourseRun != "T1" {
		t.Fatalf("GetRows: unexpected row %+v", rows[0])
	}

	list, total, err := repo.ListByRepository(ctx, tx, r.ID, ResourceFilter{})
	if err != nil || total != 2 || len(list) != 2 {
		t.Fatalf("ListByRepository: total=%d len=%d err=%v", total, len(list), err)
	}
	list, total, err = repo.ListByRepository(ctx, tx, r.ID, ResourceFilter{TypeName: "problem", Limit: 20})
	if err != nil || total != 1 || len(list) != 1 || list[0].Title != "p1" {
		t.Fatalf("ListByRepository type filter: total=%d list=%v err=%v", total, list, err)
	}
	list, total, err = repo.ListByRepository(ctx, tx, r.ID, ResourceFilter{Offset: 1, Limit: 1})
	if err != nil || total != 2 || len(list) != 1 {
		t.Fatalf("ListByRepository page: total=%d len=%d err=%v", total, len(list), err)
	}

	ids, err := repo.ListIDsByRepository(ctx, tx, r.ID)
	if err != nil || len(ids) != 2 {
		t.Fatalf("ListIDsByRepository: ids=%v err=%v", ids, err)
	}
}
