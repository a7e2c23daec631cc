package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/lore-backend/internal/domain"
	"github.com/yungbote/lore-backend/internal/platform/logger"
)

type ResourceTypeRepo interface {
	List(ctx context.Context, tx *gorm.DB) ([]*types.LearningResourceType, error)
	GetByNames(ctx context.Context, tx *gorm.DB, names []string) ([]*types.LearningResourceType, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.LearningResourceType, error)
	// Ensure returns the types named, creating the missing ones.
	Ensure(ctx context.Context, tx *gorm.DB, names []string) ([]*types.LearningResourceType, error)
}

type resourceTypeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResourceTypeRepo(db *gorm.DB, baseLog *logger.Logger) ResourceTypeRepo {
	return &resourceTypeRepo{db: db, log: baseLog.With("repo", "ResourceTypeRepo")}
}

func (r *resourceTypeRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.LearningResourceType, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.LearningResourceType
	if err := t.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *resourceTypeRepo) GetByNames(ctx context.Context, tx *gorm.DB, names []string) ([]*types.LearningResourceType, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.LearningResourceType
	if len(names) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("name IN ?", names).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *resourceTypeRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.LearningResourceType, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.LearningResourceType
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("id IN ?", ids).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *resourceTypeRepo) Ensure(ctx context.Context, tx *gorm.DB, names []string) ([]*types.LearningResourceType, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(names) == 0 {
		return []*types.LearningResourceType{}, nil
	}
	rows := make([]*types.LearningResourceType, 0, len(names))
	for _, n := range names {
		rows = append(rows, &types.LearningResourceType{ID: uuid.New(), Name: n})
	}
	if err := t.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&rows).Error; err != nil {
		return nil, err
	}
	return r.GetByNames(ctx, t, names)
}
