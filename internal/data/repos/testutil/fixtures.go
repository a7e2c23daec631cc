package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/lore-backend/internal/domain"
	"github.com/yungbote/lore-backend/internal/pkg/slug"
)

func SeedRepository(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Repository {
	tb.Helper()
	r := &types.Repository{
		ID:        uuid.New(),
		Name:      name,
		Slug:      slug.Normalize(name),
		CreatedBy: "seed",
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed repository: %v", err)
	}
	return r
}

func SeedMember(tb testing.TB, ctx context.Context, tx *gorm.DB, repositoryID uuid.UUID, subject, role string) *types.RepositoryMember {
	tb.Helper()
	m := &types.RepositoryMember{
		ID:           uuid.New(),
		RepositoryID: repositoryID,
		Subject:      subject,
		Role:         role,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed member: %v", err)
	}
	return m
}

func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, repositoryID uuid.UUID, org, number, run string) *types.Course {
	tb.Helper()
	c := &types.Course{
		ID:           uuid.New(),
		RepositoryID: repositoryID,
		Org:          org,
		CourseNumber: number,
		Run:          run,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

// SeedResourceType returns the named type, creating it when missing.
func SeedResourceType(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.LearningResourceType {
	tb.Helper()
	var existing types.LearningResourceType
	if err := tx.WithContext(ctx).Where("name = ?", name).Limit(1).Find(&existing).Error; err != nil {
		tb.Fatalf("lookup resource type: %v", err)
	}
	if existing.ID != uuid.Nil {
		return &existing
	}
	rt := &types.LearningResourceType{ID: uuid.New(), Name: name}
	if err := tx.WithContext(ctx).Create(rt).Error; err != nil {
		tb.Fatalf("seed resource type: %v", err)
	}
	return rt
}

func SeedResource(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID, typeID uuid.UUID, title string) *types.LearningResource {
	tb.Helper()
	lr := &types.LearningResource{
		ID:                     uuid.New(),
		CourseID:               courseID,
		LearningResourceTypeID: typeID,
		Title:                  title,
		Description:            "description of " + title,
		ContentXML:             "<problem>" + title + "</problem>",
		URLName:                slug.Normalize(title),
		Metadata:               datatypes.JSON([]byte("{}")),
	}
	if err := tx.WithContext(ctx).Create(lr).Error; err != nil {
		tb.Fatalf("seed resource: %v", err)
	}
	return lr
}

func SeedVocabulary(tb testing.TB, ctx context.Context, tx *gorm.DB, repositoryID uuid.UUID, name string, typeIDs ...uuid.UUID) *types.Vocabulary {
	tb.Helper()
	v := &types.Vocabulary{
		ID:             uuid.New(),
		RepositoryID:   repositoryID,
		Name:           name,
		Slug:           slug.Generate(name, slug.VocabularyFallback, nil),
		Required:       false,
		Weight:         1,
		VocabularyType: types.VocabularyTypeManaged,
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed vocabulary: %v", err)
	}
	for _, id := range typeIDs {
		row := &types.VocabularyResourceType{VocabularyID: v.ID, LearningResourceTypeID: id}
		if err := tx.WithContext(ctx).Create(row).Error; err != nil {
			tb.Fatalf("seed vocabulary type: %v", err)
		}
	}
	return v
}

func SeedTerm(tb testing.TB, ctx context.Context, tx *gorm.DB, vocabularyID uuid.UUID, label string) *types.Term {
	tb.Helper()
	term := &types.Term{
		ID:           uuid.New(),
		VocabularyID: vocabularyID,
		Label:        label,
		Slug:         slug.Generate(label, slug.TermFallback, nil),
		Weight:       1,
	}
	if err := tx.WithContext(ctx).Create(term).Error; err != nil {
		tb.Fatalf("seed term: %v", err)
	}
	return term
}

func SeedLink(tb testing.TB, ctx context.Context, tx *gorm.DB, resourceID, termID uuid.UUID) {
	tb.Helper()
	row := &types.ResourceTerm{LearningResourceID: resourceID, TermID: termID}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed link: %v", err)
	}
}
