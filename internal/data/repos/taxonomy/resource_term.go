package taxonomy

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/lore-backend/internal/domain"
	"github.com/yungbote/lore-backend/internal/platform/logger"
)

type ResourceTermRepo interface {
	CreateIgnoreDuplicates(ctx context.Context, tx *gorm.DB, rows []*types.ResourceTerm) (int, error)

	ListByResource(ctx context.Context, tx *gorm.DB, resourceID uuid.UUID) ([]*types.ResourceTerm, error)
	ListByTermIDs(ctx context.Context, tx *gorm.DB, termIDs []uuid.UUID) ([]*types.ResourceTerm, error)
	// ListTermsByResourceIDs returns the linked terms of each resource.
	ListTermsByResourceIDs(ctx context.Context, tx *gorm.DB, resourceIDs []uuid.UUID) (map[uuid.UUID][]*types.Term, error)
	// ListDisallowed returns links to terms of the vocabulary whose resource
	// type is not in allowedTypeIDs.
	ListDisallowed(ctx context.Context, tx *gorm.DB, vocabularyID uuid.UUID, allowedTypeIDs []uuid.UUID) ([]*types.ResourceTerm, error)

	DeleteByResourceAndTermIDs(ctx context.Context, tx *gorm.DB, resourceID uuid.UUID, termIDs []uuid.UUID) (int64, error)
	DeleteByTermIDs(ctx context.Context, tx *gorm.DB, termIDs []uuid.UUID) (int64, error)
	DeleteLinks(ctx context.Context, tx *gorm.DB, links []*types.ResourceTerm) (int64, error)
}

type linkedTermRow struct {
	types.Term
	LearningResourceID uuid.UUID `gorm:"column:learning_resource_id"`
}

type resourceTermRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResourceTermRepo(db *gorm.DB, baseLog *logger.Logger) ResourceTermRepo {
	return &resourceTermRepo{db: db, log: baseLog.With("repo", "ResourceTermRepo")}
}

func (r *resourceTermRepo) CreateIgnoreDuplicates(ctx context.Context, tx *gorm.DB, rows []*types.ResourceTerm) (int, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return 0, nil
	}
	res := t.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "learning_resource_id"}, {Name: "term_id"}},
			DoNothing: true,
		}).
		Create(&rows)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

func (r *resourceTermRepo) ListByResource(ctx context.Context, tx *gorm.DB, resourceID uuid.UUID) ([]*types.ResourceTerm, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.ResourceTerm
	if err := t.WithContext(ctx).
		Where("learning_resource_id = ?", resourceID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *resourceTermRepo) ListByTermIDs(ctx context.Context, tx *gorm.DB, termIDs []uuid.UUID) ([]*types.ResourceTerm, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.ResourceTerm
	if len(termIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("term_id IN ?", termIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *resourceTermRepo) ListTermsByResourceIDs(ctx context.Context, tx *gorm.DB, resourceIDs []uuid.UUID) (map[uuid.UUID][]*types.Term, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	out := make(map[uuid.UUID][]*types.Term, len(resourceIDs))
	if len(resourceIDs) == 0 {
		return out, nil
	}
	var rows []linkedTermRow
	if err := t.WithContext(ctx).
		Table("resource_term rt").
		Select("term.*, rt.learning_resource_id AS learning_resource_id").
		Joins("JOIN term ON term.id = rt.term_id").
		Where("rt.learning_resource_id IN ?", resourceIDs).
		Order("term.created_at ASC, term.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		term := rows[i].Term
		out[rows[i].LearningResourceID] = append(out[rows[i].LearningResourceID], &term)
	}
	return out, nil
}

func (r *resourceTermRepo) ListDisallowed(ctx context.Context, tx *gorm.DB, vocabularyID uuid.UUID, allowedTypeIDs []uuid.UUID) ([]*types.ResourceTerm, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(ctx).
		Table("resource_term").
		Select("resource_term.*").
		Joins("JOIN term ON term.id = resource_term.term_id").
		Joins("JOIN learning_resource lr ON lr.id = resource_term.learning_resource_id").
		Where("term.vocabulary_id = ?", vocabularyID)
	if len(allowedTypeIDs) > 0 {
		q = q.Where("lr.learning_resource_type_id NOT IN ?", allowedTypeIDs)
	}
	var out []*types.ResourceTerm
	if err := q.Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *resourceTermRepo) DeleteByResourceAndTermIDs(ctx context.Context, tx *gorm.DB, resourceID uuid.UUID, termIDs []uuid.UUID) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(termIDs) == 0 {
		return 0, nil
	}
	res := t.WithContext(ctx).
		Where("learning_resource_id = ? AND term_id IN ?", resourceID, termIDs).
		Delete(&types.ResourceTerm{})
	return res.RowsAffected, res.Error
}

func (r *resourceTermRepo) DeleteByTermIDs(ctx context.Context, tx *gorm.DB, termIDs []uuid.UUID) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(termIDs) == 0 {
		return 0, nil
	}
	res := t.WithContext(ctx).
		Where("term_id IN ?", termIDs).
		Delete(&types.ResourceTerm{})
	return res.RowsAffected, res.Error
}

func (r *resourceTermRepo) DeleteLinks(ctx context.Context, tx *gorm.DB, links []*types.ResourceTerm) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	byResource := make(map[uuid.UUID][]uuid.UUID)
	for _, l := range links {
		byResource[l.LearningResourceID] = append(byResource[l.LearningResourceID], l.TermID)
	}
	var total int64
	for resourceID, termIDs := range byResource {
		n, err := r.DeleteByResourceAndTermIDs(ctx, t, resourceID, termIDs)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
