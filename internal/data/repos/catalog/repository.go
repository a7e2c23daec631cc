package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lore-backend/internal/domain"
	"github.com/yungbote/lore-backend/internal/platform/logger"
)

type RepositoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Repository) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Repository, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Repository, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Repository, error)
	ListBySubject(ctx context.Context, tx *gorm.DB, subject string) ([]*types.Repository, error)
	SlugsWithPrefix(ctx context.Context, tx *gorm.DB, prefix string) ([]string, error)
}

type repositoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepositoryRepo(db *gorm.DB, baseLog *logger.Logger) RepositoryRepo {
	return &repositoryRepo{db: db, log: baseLog.With("repo", "RepositoryRepo")}
}

func (r *repositoryRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Repository) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return t.WithContext(ctx).Create(row).Error
}

func (r *repositoryRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Repository, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.Repository
	if err := t.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *repositoryRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Repository, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if slug == "" {
		return nil, nil
	}
	var out types.Repository
	if err := t.WithContext(ctx).Where("slug = ?", slug).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *repositoryRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Repository, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Repository
	if err := t.WithContext(ctx).Order("created_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repositoryRepo) ListBySubject(ctx context.Context, tx *gorm.DB, subject string) ([]*types.Repository, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Repository
	if subject == "" {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Joins("JOIN repository_member rm ON rm.repository_id = repository.id").
		Where("rm.subject = ?", subject).
		Order("repository.created_at ASC, repository.id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repositoryRepo) SlugsWithPrefix(ctx context.Context, tx *gorm.DB, prefix string) ([]string, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []string
	if err := t.WithContext(ctx).
		Model(&types.Repository{}).
		Where("slug LIKE ?", prefix+"%").
		Pluck("slug", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
