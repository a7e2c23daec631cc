package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lore-backend/internal/domain"
	"github.com/yungbote/lore-backend/internal/platform/logger"
)

type CourseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Course) error
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Course, error)
	GetByIdentity(ctx context.Context, tx *gorm.DB, repositoryID uuid.UUID, org, courseNumber, run string) (*types.Course, error)
	ListByRepository(ctx context.Context, tx *gorm.DB, repositoryID uuid.UUID) ([]*types.Course, error)
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return &courseRepo{db: db, log: baseLog.With("repo", "CourseRepo")}
}

func (r *courseRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Course) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return t.WithContext(ctx).Create(row).Error
}

func (r *courseRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Course, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Course
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *courseRepo) GetByIdentity(ctx context.Context, tx *gorm.DB, repositoryID uuid.UUID, org, courseNumber, run string) (*types.Course, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out types.Course
	if err := t.WithContext(ctx).
		Where("repository_id = ? AND org = ? AND course_number = ? AND run = ?", repositoryID, org, courseNumber, run).
		First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *courseRepo) ListByRepository(ctx context.Context, tx *gorm.DB, repositoryID uuid.UUID) ([]*types.Course, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Course
	if err := t.WithContext(ctx).
		Where("repository_id = ?", repositoryID).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
