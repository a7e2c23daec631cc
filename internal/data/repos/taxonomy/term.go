package taxonomy

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lore-backend/internal/domain"
	"github.com/yungbote/lore-backend/internal/platform/logger"
)

type TermRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Term) error
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error

	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Term, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Term, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, vocabularyID uuid.UUID, slug string) (*types.Term, error)
	GetByLabel(ctx context.Context, tx *gorm.DB, vocabularyID uuid.UUID, label string) (*types.Term, error)
	// GetBySlugsInRepository resolves slugs across every vocabulary of the repository.
	GetBySlugsInRepository(ctx context.Context, tx *gorm.DB, repositoryID uuid.UUID, slugs []string) ([]*types.Term, error)

	ListByVocabulary(ctx context.Context, tx *gorm.DB, vocabularyID uuid.UUID, offset, limit int) ([]*types.Term, int64, error)
	ListByVocabularyIDs(ctx context.Context, tx *gorm.DB, vocabularyIDs []uuid.UUID) ([]*types.Term, error)
	// ListLinkedByVocabulary returns the vocabulary's terms linked to at least one resource.
	ListLinkedByVocabulary(ctx context.Context, tx *gorm.DB, vocabularyID uuid.UUID) ([]*types.Term, error)

	SlugsWithPrefix(ctx context.Context, tx *gorm.DB, vocabularyID uuid.UUID, prefix string, excludeID uuid.UUID) ([]string, error)

	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type termRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTermRepo(db *gorm.DB, baseLog *logger.Logger) TermRepo {
	return &termRepo{db: db, log: baseLog.With("repo", "TermRepo")}
}

func (r *termRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Term) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return t.WithContext(ctx).Create(row).Error
}

func (r *termRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	return t.WithContext(ctx).
		Model(&types.Term{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *termRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Term, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *termRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Term, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Term
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *termRepo) GetBySlug(ctx context.Context, tx *gorm.DB, vocabularyID uuid.UUID, slug string) (*types.Term, error) {
	return r.first(ctx, tx, "vocabulary_id = ? AND slug = ?", vocabularyID, slug)
}

func (r *termRepo) GetByLabel(ctx context.Context, tx *gorm.DB, vocabularyID uuid.UUID, label string) (*types.Term, error) {
	return r.first(ctx, tx, "vocabulary_id = ? AND label = ?", vocabularyID, label)
}

func (r *termRepo) first(ctx context.Context, tx *gorm.DB, query string, args ...interface{}) (*types.Term, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out types.Term
	if err := t.WithContext(ctx).Where(query, args...).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *termRepo) GetBySlugsInRepository(ctx context.Context, tx *gorm.DB, repositoryID uuid.UUID, slugs []string) ([]*types.Term, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Term
	if len(slugs) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Joins("JOIN vocabulary ON vocabulary.id = term.vocabulary_id").
		Where("vocabulary.repository_id = ? AND term.slug IN ?", repositoryID, slugs).
		Order("term.created_at ASC, term.id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *termRepo) ListByVocabulary(ctx context.Context, tx *gorm.DB, vocabularyID uuid.UUID, offset, limit int) ([]*types.Term, int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var total int64
	if err := t.WithContext(ctx).
		Model(&types.Term{}).
		Where("vocabulary_id = ?", vocabularyID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q := t.WithContext(ctx).
		Where("vocabulary_id = ?", vocabularyID).
		Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	var out []*types.Term
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *termRepo) ListByVocabularyIDs(ctx context.Context, tx *gorm.DB, vocabularyIDs []uuid.UUID) ([]*types.Term, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Term
	if len(vocabularyIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("vocabulary_id IN ?", vocabularyIDs).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *termRepo) ListLinkedByVocabulary(ctx context.Context, tx *gorm.DB, vocabularyID uuid.UUID) ([]*types.Term, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Term
	if err := t.WithContext(ctx).
		Where("vocabulary_id = ?", vocabularyID).
		Where("EXISTS (SELECT 1 FROM resource_term rt WHERE rt.term_id = term.id)").
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *termRepo) SlugsWithPrefix(ctx context.Context, tx *gorm.DB, vocabularyID uuid.UUID, prefix string, excludeID uuid.UUID) ([]string, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(ctx).
		Model(&types.Term{}).
		Where("vocabulary_id = ? AND slug LIKE ?", vocabularyID, prefix+"%")
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	var out []string
	if err := q.Pluck("slug", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *termRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(ctx).Where("id IN ?", ids).Delete(&types.Term{}).Error
}
