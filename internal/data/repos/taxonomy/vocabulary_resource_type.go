package taxonomy

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lore-backend/internal/domain"
	"github.com/yungbote/lore-backend/internal/platform/logger"
)

type VocabularyResourceTypeRepo interface {
	// Replace makes typeIDs the exact permitted set of the vocabulary.
	Replace(ctx context.Context, tx *gorm.DB, vocabularyID uuid.UUID, typeIDs []uuid.UUID) error
	ListTypeIDs(ctx context.Context, tx *gorm.DB, vocabularyID uuid.UUID) ([]uuid.UUID, error)
	// TypeNamesByVocabularyIDs returns permitted type names, sorted, per vocabulary.
	TypeNamesByVocabularyIDs(ctx context.Context, tx *gorm.DB, vocabularyIDs []uuid.UUID) (map[uuid.UUID][]string, error)
	DeleteByVocabularyID(ctx context.Context, tx *gorm.DB, vocabularyID uuid.UUID) error
}

type vocabularyResourceTypeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVocabularyResourceTypeRepo(db *gorm.DB, baseLog *logger.Logger) VocabularyResourceTypeRepo {
	return &vocabularyResourceTypeRepo{db: db, log: baseLog.With("repo", "VocabularyResourceTypeRepo")}
}

func (r *vocabularyResourceTypeRepo) Replace(ctx context.Context, tx *gorm.DB, vocabularyID uuid.UUID, typeIDs []uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if err := r.DeleteByVocabularyID(ctx, t, vocabularyID); err != nil {
		return err
	}
	if len(typeIDs) == 0 {
		return nil
	}
	rows := make([]*types.VocabularyResourceType, 0, len(typeIDs))
	for _, id := range typeIDs {
		rows = append(rows, &types.VocabularyResourceType{VocabularyID: vocabularyID, LearningResourceTypeID: id})
	}
	return t.WithContext(ctx).Create(&rows).Error
}

func (r *vocabularyResourceTypeRepo) ListTypeIDs(ctx context.Context, tx *gorm.DB, vocabularyID uuid.UUID) ([]uuid.UUID, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []uuid.UUID
	if err := t.WithContext(ctx).
		Model(&types.VocabularyResourceType{}).
		Where("vocabulary_id = ?", vocabularyID).
		Pluck("learning_resource_type_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *vocabularyResourceTypeRepo) TypeNamesByVocabularyIDs(ctx context.Context, tx *gorm.DB, vocabularyIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	out := make(map[uuid.UUID][]string, len(vocabularyIDs))
	if len(vocabularyIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		VocabularyID uuid.UUID `gorm:"column:vocabulary_id"`
		Name         string    `gorm:"column:name"`
	}
	if err := t.WithContext(ctx).
		Table("vocabulary_resource_type vrt").
		Select("vrt.vocabulary_id AS vocabulary_id, lrt.name AS name").
		Joins("JOIN learning_resource_type lrt ON lrt.id = vrt.learning_resource_type_id").
		Where("vrt.vocabulary_id IN ?", vocabularyIDs).
		Order("lrt.name ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.VocabularyID] = append(out[row.VocabularyID], row.Name)
	}
	return out, nil
}

func (r *vocabularyResourceTypeRepo) DeleteByVocabularyID(ctx context.Context, tx *gorm.DB, vocabularyID uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).
		Where("vocabulary_id = ?", vocabularyID).
		Delete(&types.VocabularyResourceType{}).Error
}
