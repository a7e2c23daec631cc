package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lore-backend/internal/domain"
	"github.com/yungbote/lore-backend/internal/platform/logger"
)

// ResourceFilter narrows resource listings. Zero values match everything.
type ResourceFilter struct {
	TypeName string
	Offset   int
	Limit    int
}

// ResourceRow is a learning resource with the context needed to index it.
type ResourceRow struct {
	types.LearningResource
	RepositoryID uuid.UUID `gorm:"column:repository_id"`
	CourseOrg    string    `gorm:"column:course_org"`
	CourseNumber string    `gorm:"column:course_number"`
	CourseRun    string    `gorm:"column:course_run"`
	TypeName     string    `gorm:"column:type_name"`
}

// CourseKey matches types.Course.Key.
func (r *ResourceRow) CourseKey() string {
	return r.CourseOrg + "/" + r.CourseNumber
}

type ResourceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.LearningResource) ([]*types.LearningResource, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.LearningResource, error)
	// GetRows loads resources joined with course, repository and type.
	GetRows(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*ResourceRow, error)
	ListByRepository(ctx context.Context, tx *gorm.DB, repositoryID uuid.UUID, f ResourceFilter) ([]*ResourceRow, int64, error)
	ListIDsByRepository(ctx context.Context, tx *gorm.DB, repositoryID uuid.UUID) ([]uuid.UUID, error)
}

type resourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResourceRepo(db *gorm.DB, baseLog *logger.Logger) ResourceRepo {
	return &resourceRepo{db: db, log: baseLog.With("repo", "ResourceRepo")}
}

func (r *resourceRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.LearningResource) ([]*types.LearningResource, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.LearningResource{}, nil
	}
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *resourceRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.LearningResource, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.LearningResource
	if err := t.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

const resourceRowColumns = "learning_resource.*, course.repository_id AS repository_id, course.org AS course_org, " +
	"course.course_number AS course_number, course.run AS course_run, learning_resource_type.name AS type_name"

func (r *resourceRepo) joined(t *gorm.DB) *gorm.DB {
	return t.Table("learning_resource").
		Joins("JOIN course ON course.id = learning_resource.course_id").
		Joins("JOIN learning_resource_type ON learning_resource_type.id = learning_resource.learning_resource_type_id")
}

func (r *resourceRepo) GetRows(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*ResourceRow, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*ResourceRow
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.joined(t.WithContext(ctx)).
		Select(resourceRowColumns).
		Where("learning_resource.id IN ?", ids).
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *resourceRepo) ListByRepository(ctx context.Context, tx *gorm.DB, repositoryID uuid.UUID, f ResourceFilter) ([]*ResourceRow, int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	filtered := func() *gorm.DB {
		q := r.joined(t.WithContext(ctx)).Where("course.repository_id = ?", repositoryID)
		if f.TypeName != "" {
			q = q.Where("learning_resource_type.name = ?", f.TypeName)
		}
		return q
	}
	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q := filtered().Select(resourceRowColumns).Order("learning_resource.created_at ASC, learning_resource.id ASC")
	if f.Limit > 0 {
		q = q.Offset(f.Offset).Limit(f.Limit)
	}
	var out []*ResourceRow
	if err := q.Scan(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *resourceRepo) ListIDsByRepository(ctx context.Context, tx *gorm.DB, repositoryID uuid.UUID) ([]uuid.UUID, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []uuid.UUID
	if err := t.WithContext(ctx).
		Table("learning_resource").
		Joins("JOIN course ON course.id = learning_resource.course_id").
		Where("course.repository_id = ?", repositoryID).
		Order("learning_resource.created_at ASC, learning_resource.id ASC").
		Pluck("learning_resource.id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
