package taxonomy

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lore-backend/internal/domain"
	"github.com/yungbote/lore-backend/internal/platform/logger"
)

// VocabularyFilter narrows vocabulary listings. Zero values match everything.
type VocabularyFilter struct {
	// TypeName keeps vocabularies permitting the named learning resource type.
	TypeName string
	Offset   int
	Limit    int
}

type VocabularyRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Vocabulary) error
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error

	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Vocabulary, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Vocabulary, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, repositoryID uuid.UUID, slug string) (*types.Vocabulary, error)
	GetByName(ctx context.Context, tx *gorm.DB, repositoryID uuid.UUID, name string) (*types.Vocabulary, error)
	ListByRepository(ctx context.Context, tx *gorm.DB, repositoryID uuid.UUID, f VocabularyFilter) ([]*types.Vocabulary, int64, error)

	// SlugsWithPrefix returns slugs in the repository starting with prefix,
	// ignoring the vocabulary excludeID.
	SlugsWithPrefix(ctx context.Context, tx *gorm.DB, repositoryID uuid.UUID, prefix string, excludeID uuid.UUID) ([]string, error)

	DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type vocabularyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVocabularyRepo(db *gorm.DB, baseLog *logger.Logger) VocabularyRepo {
	return &vocabularyRepo{db: db, log: baseLog.With("repo", "VocabularyRepo")}
}

func (r *vocabularyRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Vocabulary) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return t.WithContext(ctx).Create(row).Error
}

func (r *vocabularyRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	return t.WithContext(ctx).
		Model(&types.Vocabulary{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *vocabularyRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Vocabulary, error) {
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

func (r *vocabularyRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Vocabulary, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Vocabulary
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

func (r *vocabularyRepo) GetBySlug(ctx context.Context, tx *gorm.DB, repositoryID uuid.UUID, slug string) (*types.Vocabulary, error) {
	return r.first(ctx, tx, "repository_id = ? AND slug = ?", repositoryID, slug)
}

func (r *vocabularyRepo) GetByName(ctx context.Context, tx *gorm.DB, repositoryID uuid.UUID, name string) (*types.Vocabulary, error) {
	return r.first(ctx, tx, "repository_id = ? AND name = ?", repositoryID, name)
}

func (r *vocabularyRepo) first(ctx context.Context, tx *gorm.DB, query string, args ...interface{}) (*types.Vocabulary, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out types.Vocabulary
	if err := t.WithContext(ctx).Where(query, args...).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *vocabularyRepo) ListByRepository(ctx context.Context, tx *gorm.DB, repositoryID uuid.UUID, f VocabularyFilter) ([]*types.Vocabulary, int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	filtered := func() *gorm.DB {
		q := t.WithContext(ctx).Model(&types.Vocabulary{}).Where("vocabulary.repository_id = ?", repositoryID)
		if f.TypeName != "" {
			q = q.Where(`vocabulary.id IN (
				SELECT vrt.vocabulary_id FROM vocabulary_resource_type vrt
				JOIN learning_resource_type lrt ON lrt.id = vrt.learning_resource_type_id
				WHERE lrt.name = ?)`, f.TypeName)
		}
		return q
	}
	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q := filtered().Order("vocabulary.created_at ASC, vocabulary.id ASC")
	if f.Limit > 0 {
		q = q.Offset(f.Offset).Limit(f.Limit)
	}
	var out []*types.Vocabulary
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *vocabularyRepo) SlugsWithPrefix(ctx context.Context, tx *gorm.DB, repositoryID uuid.UUID, prefix string, excludeID uuid.UUID) ([]string, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(ctx).
		Model(&types.Vocabulary{}).
		Where("repository_id = ? AND slug LIKE ?", repositoryID, prefix+"%")
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	var out []string
	if err := q.Pluck("slug", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *vocabularyRepo) DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).Where("id = ?", id).Delete(&types.Vocabulary{}).Error
}
