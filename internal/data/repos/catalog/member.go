package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/lore-backend/internal/domain"
	"github.com/yungbote/lore-backend/internal/platform/logger"
)

type MemberRepo interface {
	// Upsert inserts the membership or changes the role of an existing one.
	Upsert(ctx context.Context, tx *gorm.DB, row *types.RepositoryMember) error
	Get(ctx context.Context, tx *gorm.DB, repositoryID uuid.UUID, subject string) (*types.RepositoryMember, error)
	ListByRepository(ctx context.Context, tx *gorm.DB, repositoryID uuid.UUID) ([]*types.RepositoryMember, error)
	CountByRole(ctx context.Context, tx *gorm.DB, repositoryID uuid.UUID, role string) (int64, error)
	Delete(ctx context.Context, tx *gorm.DB, repositoryID uuid.UUID, subject string) (int64, error)
}

type memberRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMemberRepo(db *gorm.DB, baseLog *logger.Logger) MemberRepo {
	return &memberRepo{db: db, log: baseLog.With("repo", "MemberRepo")}
}

func (r *memberRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.RepositoryMember) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return t.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "repository_id"}, {Name: "subject"}},
			DoUpdates: clause.AssignmentColumns([]string{"role"}),
		}).
		Create(row).Error
}

func (r *memberRepo) Get(ctx context.Context, tx *gorm.DB, repositoryID uuid.UUID, subject string) (*types.RepositoryMember, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if repositoryID == uuid.Nil || subject == "" {
		return nil, nil
	}
	var out types.RepositoryMember
	if err := t.WithContext(ctx).
		Where("repository_id = ? AND subject = ?", repositoryID, subject).
		First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *memberRepo) ListByRepository(ctx context.Context, tx *gorm.DB, repositoryID uuid.UUID) ([]*types.RepositoryMember, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.RepositoryMember
	if err := t.WithContext(ctx).
		Where("repository_id = ?", repositoryID).
		Order("subject ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *memberRepo) CountByRole(ctx context.Context, tx *gorm.DB, repositoryID uuid.UUID, role string) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var n int64
	err := t.WithContext(ctx).
		Model(&types.RepositoryMember{}).
		Where("repository_id = ? AND role = ?", repositoryID, role).
		Count(&n).Error
	return n, err
}

func (r *memberRepo) Delete(ctx context.Context, tx *gorm.DB, repositoryID uuid.UUID, subject string) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(ctx).
		Where("repository_id = ? AND subject = ?", repositoryID, subject).
		Delete(&types.RepositoryMember{})
	return res.RowsAffected, res.Error
}
