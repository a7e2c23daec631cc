package taxonomy

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/lore-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lore-backend/internal/domain"
)

func TestVocabularyRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewVocabularyRepo(db, testutil.Logger(t))

	r := testutil.SeedRepository(t, ctx, tx, "Vocab")
	problem := testutil.SeedResourceType(t, ctx, tx, "problem")

	v := &types.Vocabulary{RepositoryID: r.ID, Name: "Difficulty", Slug: "difficulty", Weight: 1, VocabularyType: types.VocabularyTypeManaged}
	if err := repo.Create(ctx, tx, v); err != nil {
		t.Fatalf("Create: %v", err)
	}
	v2 := testutil.SeedVocabulary(t, ctx, tx, r.ID, "Difficulty 1", problem.ID)

	if got, err := repo.GetBySlug(ctx, tx, r.ID, "difficulty"); err != nil || got == nil || got.ID != v.ID {
		t.Fatalf("GetBySlug: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByName(ctx, tx, r.ID, "Difficulty 1"); err != nil || got == nil || got.ID != v2.ID {
		t.Fatalf("GetByName: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByName(ctx, tx, uuid.New(), "Difficulty"); err != nil || got != nil {
		t.Fatalf("GetByName other repo: got=%v err=%v", got, err)
	}

	slugs, err := repo.SlugsWithPrefix(ctx, tx, r.ID, "difficulty", uuid.Nil)
	if err != nil || len(slugs) != 2 {
		t.Fatalf("SlugsWithPrefix: slugs=%v err=%v", slugs, err)
	}
	slugs, err = repo.SlugsWithPrefix(ctx, tx, r.ID, "difficulty", v.ID)
	if err != nil || len(slugs) != 1 || slugs[0] != "difficulty-1" {
		t.Fatalf("SlugsWithPrefix exclude: slugs=%v err=%v", slugs, err)
	}

	if err := repo.UpdateFields(ctx, tx, v.ID, map[string]interface{}{"weight": 9, "required": true}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if got, err := repo.GetByID(ctx, tx, v.ID); err != nil || got == nil || got.Weight != 9 || !got.Required {
		t.Fatalf("GetByID after update: got=%+v err=%v", got, err)
	}

	rows, total, err := repo.ListByRepository(ctx, tx, r.ID, VocabularyFilter{})
	if err != nil || total != 2 || len(rows) != 2 || rows[0].ID != v.ID {
		t.Fatalf("ListByRepository: total=%d rows=%v err=%v", total, rows, err)
	}
	rows, total, err = repo.ListByRepository(ctx, tx, r.ID, VocabularyFilter{TypeName: "problem", Limit: 20})
	if err != nil || total != 1 || len(rows) != 1 || rows[0].ID != v2.ID {
		t.Fatalf("ListByRepository type_name: total=%d rows=%v err=%v", total, rows, err)
	}

	if err := repo.DeleteByID(ctx, tx, v.ID); err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}
	if got, err := repo.GetByID(ctx, tx, v.ID); err != nil || got != nil {
		t.Fatalf("GetByID after delete: got=%v err=%v", got, err)
	}
}

func TestVocabularyResourceTypeRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewVocabularyResourceTypeRepo(db, testutil.Logger(t))

	r := testutil.SeedRepository(t, ctx, tx, "Types")
	problem := testutil.SeedResourceType(t, ctx, tx, "problem")
	video := testutil.SeedResourceType(t, ctx, tx, "video")
	v := testutil.SeedVocabulary(t, ctx, tx, r.ID, "Topic", problem.ID)

	if err := repo.Replace(ctx, tx, v.ID, []uuid.UUID{video.ID, problem.ID}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	ids, err := repo.ListTypeIDs(ctx, tx, v.ID)
	if err != nil || len(ids) != 2 {
		t.Fatalf("ListTypeIDs: ids=%v err=%v", ids, err)
	}
	names, err := repo.TypeNamesByVocabularyIDs(ctx, tx, []uuid.UUID{v.ID})
	if err != nil || len(names[v.ID]) != 2 || names[v.ID][0] != "problem" || names[v.ID][1] != "video" {
		t.Fatalf("TypeNamesByVocabularyIDs: names=%v err=%v", names, err)
	}
	if err := repo.Replace(ctx, tx, v.ID, nil); err != nil {
		t.Fatalf("Replace empty: %v", err)
	}
	if ids, err := repo.ListTypeIDs(ctx, tx, v.ID); err != nil || len(ids) != 0 {
		t.Fatalf("ListTypeIDs after clear: ids=%v err=%v", ids, err)
	}
}

func TestTermRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewTermRepo(db, testutil.Logger(t))

	r := testutil.SeedRepository(t, ctx, tx, "Terms")
	c := testutil.SeedCourse(t, ctx, tx, r.ID, "org", "num", "run")
	problem := testutil.SeedResourceType(t, ctx, tx, "problem")
	res := testutil.SeedResource(t, ctx, tx, c.ID, problem.ID, "p")
	v1 := testutil.SeedVocabulary(t, ctx, tx, r.ID, "Level", problem.ID)
	v2 := testutil.SeedVocabulary(t, ctx, tx, r.ID, "Other", problem.ID)

	easy := &types.Term{VocabularyID: v1.ID, Label: "Easy", Slug: "easy", Weight: 1}
	if err := repo.Create(ctx, tx, easy); err != nil {
		t.Fatalf("Create: %v", err)
	}
	hard := testutil.SeedTerm(t, ctx, tx, v1.ID, "Hard")
	dupSlug := testutil.SeedTerm(t, ctx, tx, v2.ID, "Easy")
	testutil.SeedLink(t, ctx, tx, res.ID, hard.ID)

	if got, err := repo.GetBySlug(ctx, tx, v1.ID, "easy"); err != nil || got == nil || got.ID != easy.ID {
		t.Fatalf("GetBySlug: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByLabel(ctx, tx, v1.ID, "Hard"); err != nil || got == nil || got.ID != hard.ID {
		t.Fatalf("GetByLabel: got=%v err=%v", got, err)
	}
	if rows, err := repo.GetBySlugsInRepository(ctx, tx, r.ID, []string{"easy"}); err != nil || len(rows) != 2 {
		t.Fatalf("GetBySlugsInRepository: rows=%v err=%v", rows, err)
	}
	if rows, err := repo.GetBySlugsInRepository(ctx, tx, uuid.New(), []string{"easy"}); err != nil || len(rows) != 0 {
		t.Fatalf("GetBySlugsInRepository other repo: rows=%v err=%v", rows, err)
	}

	rows, total, err := repo.ListByVocabulary(ctx, tx, v1.ID, 0, 1)
	if err != nil || total != 2 || len(rows) != 1 || rows[0].ID != easy.ID {
		t.Fatalf("ListByVocabulary: total=%d rows=%v err=%v", total, rows, err)
	}
	if rows, err := repo.ListByVocabularyIDs(ctx, tx, []uuid.UUID{v1.ID, v2.ID}); err != nil || len(rows) != 3 {
		t.Fatalf("ListByVocabularyIDs: len=%d err=%v", len(rows), err)
	}
	linked, err := repo.ListLinkedByVocabulary(ctx, tx, v1.ID)
	if err != nil || len(linked) != 1 || linked[0].ID != hard.ID {
		t.Fatalf("ListLinkedByVocabulary: rows=%v err=%v", linked, err)
	}
	if slugs, err := repo.SlugsWithPrefix(ctx, tx, v1.ID, "easy", easy.ID); err != nil || len(slugs) != 0 {
		t.Fatalf("SlugsWithPrefix exclude self: slugs=%v err=%v", slugs, err)
	}

	if err := repo.UpdateFields(ctx, tx, easy.ID, map[string]interface{}{"label": "Simple", "slug": "simple"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if got, err := repo.GetByID(ctx, tx, easy.ID); err != nil || got == nil || got.Slug != "simple" {
		t.Fatalf("GetByID after update: got=%v err=%v", got, err)
	}
	if err := repo.DeleteByIDs(ctx, tx, []uuid.UUID{easy.ID, dupSlug.ID}); err != nil {
		t.Fatalf("DeleteByIDs: %v", err)
	}
	if rows, err := repo.GetByIDs(ctx, tx, []uuid.UUID{easy.ID, dupSlug.ID, hard.ID}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs after delete: len=%d err=%v", len(rows), err)
	}
}

func TestResourceTermRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewResourceTermRepo(db, testutil.Logger(t))

	r := testutil.SeedRepository(t, ctx, tx, "Links")
	c := testutil.SeedCourse(t, ctx, tx, r.ID, "org", "num", "run")
	problem := testutil.SeedResourceType(t, ctx, tx, "problem")
	video := testutil.SeedResourceType(t, ctx, tx, "video")
	p := testutil.SeedResource(t, ctx, tx, c.ID, problem.ID, "p")
	vid := testutil.SeedResource(t, ctx, tx, c.ID, video.ID, "v")
	vocab := testutil.SeedVocabulary(t, ctx, tx, r.ID, "Topic", problem.ID, video.ID)
	t1 := testutil.SeedTerm(t, ctx, tx, vocab.ID, "one")
	t2 := testutil.SeedTerm(t, ctx, tx, vocab.ID, "two")

	n, err := repo.CreateIgnoreDuplicates(ctx, tx, []*types.ResourceTerm{
		{LearningResourceID: p.ID, TermID: t1.ID},
		{LearningResourceID: p.ID, TermID: t2.ID},
		{LearningResourceID: vid.ID, TermID: t1.ID},
	})
	if err != nil || n != 3 {
		t.Fatalf("CreateIgnoreDuplicates: n=%d err=%v", n, err)
	}
	if n, err := repo.CreateIgnoreDuplicates(ctx, tx, []*types.ResourceTerm{{LearningResourceID: p.ID, TermID: t1.ID}}); err != nil || n != 0 {
		t.Fatalf("CreateIgnoreDuplicates duplicate: n=%d err=%v", n, err)
	}

	if rows, err := repo.ListByResource(ctx, tx, p.ID); err != nil || len(rows) != 2 {
		t.Fatalf("ListByResource: len=%d err=%v", len(rows), err)
	}
	if rows, err := repo.ListByTermIDs(ctx, tx, []uuid.UUID{t1.ID}); err != nil || len(rows) != 2 {
		t.Fatalf("ListByTermIDs: len=%d err=%v", len(rows), err)
	}
	byResource, err := repo.ListTermsByResourceIDs(ctx, tx, []uuid.UUID{p.ID, vid.ID})
	if err != nil || len(byResource[p.ID]) != 2 || len(byResource[vid.ID]) != 1 || byResource[vid.ID][0].Label != "one" {
		t.Fatalf("ListTermsByResourceIDs: %v err=%v", byResource, err)
	}

	disallowed, err := repo.ListDisallowed(ctx, tx, vocab.ID, []uuid.UUID{problem.ID})
	if err != nil || len(disallowed) != 1 || disallowed[0].LearningResourceID != vid.ID {
		t.Fatalf("ListDisallowed: rows=%v err=%v", disallowed, err)
	}
	if all, err := repo.ListDisallowed(ctx, tx, vocab.ID, nil); err != nil || len(all) != 3 {
		t.Fatalf("ListDisallowed empty set: len=%d err=%v", len(all), err)
	}
	if n, err := repo.DeleteLinks(ctx, tx, disallowed); err != nil || n != 1 {
		t.Fatalf("DeleteLinks: n=%d err=%v", n, err)
	}
	if n, err := repo.DeleteByResourceAndTermIDs(ctx, tx, p.ID, []uuid.UUID{t2.ID}); err != nil || n != 1 {
		t.Fatalf("DeleteByResourceAndTermIDs: n=%d err=%v", n, err)
	}
	if n, err := repo.DeleteByTermIDs(ctx, tx, []uuid.UUID{t1.ID}); err != nil || n != 1 {
		t.Fatalf("DeleteByTermIDs: n=%d err=%v", n, err)
	}
}
