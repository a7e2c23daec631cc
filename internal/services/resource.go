package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lore-backend/internal/data/repos"
	domainagg "github.com/yungbote/lore-backend/internal/domain/aggregates"
	"github.com/yungbote/lore-backend/internal/platform/apierr"
	"github.com/yungbote/lore-backend/internal/platform/logger"
)

type ResourceService interface {
	ListResourceTypes(ctx context.Context) ([]string, error)
	List(ctx context.Context, repositoryID uuid.UUID, typeName string, page int) (Page[ResourceView], error)
	Get(ctx context.Context, repositoryID, resourceID uuid.UUID) (*ResourceView, error)
	// SetTerms replaces the resource's terms with the ones named by slug.
	SetTerms(ctx context.Context, repositoryID, resourceID uuid.UUID, slugs []string) (*ResourceView, error)
}

type resourceService struct {
	db        *gorm.DB
	log       *logger.Logger
	types     repos.ResourceTypeRepo
	resources repos.ResourceRepo
	links     repos.ResourceTermRepo
	agg       domainagg.TaxonomyAggregate
}

func NewResourceService(db *gorm.DB, log *logger.Logger, set repos.Set, agg domainagg.TaxonomyAggregate) ResourceService {
	return &resourceService{
		db:        db,
		log:       log.With("service", "ResourceService"),
		types:     set.ResourceType,
		resources: set.Resource,
		links:     set.ResourceTerm,
		agg:       agg,
	}
}

func (s *resourceService) ListResourceTypes(ctx context.Context) ([]string, error) {
	rows, err := s.types.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, t := range rows {
		out = append(out, t.Name)
	}
	return out, nil
}

func (s *resourceService) List(ctx context.Context, repositoryID uuid.UUID, typeName string, page int) (Page[ResourceView], error) {
	out := Page[ResourceView]{Page: page}
	offset, limit := pageBounds(page)
	rows, total, err := s.resources.ListByRepository(ctx, nil, repositoryID, repos.ResourceFilter{
		TypeName: typeName,
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		return out, err
	}
	if err := checkPage(page, total); err != nil {
		return out, err
	}
	views, err := s.views(ctx, rows)
	if err != nil {
		return out, err
	}
	out.Count = total
	out.Results = views
	return out, nil
}

func (s *resourceService) Get(ctx context.Context, repositoryID, resourceID uuid.UUID) (*ResourceView, error) {
	row, err := s.row(ctx, repositoryID, resourceID)
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, []*repos.ResourceRow{row})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *resourceService) SetTerms(ctx context.Context, repositoryID, resourceID uuid.UUID, slugs []string) (*ResourceView, error) {
	row, err := s.row(ctx, repositoryID, resourceID)
	if err != nil {
		return nil, err
	}
	res, err := s.agg.SetResourceTerms(ctx, domainagg.SetResourceTermsInput{ResourceID: resourceID, TermSlugs: slugs})
	if err != nil {
		return nil, err
	}
	s.log.Debug("Resource terms replaced", "resource_id", resourceID, "added", res.Added, "removed", res.Removed)
	view := NewResourceView(row, res.Terms)
	return &view, nil
}

// row loads the resource, treating one from another repository as missing.
func (s *resourceService) row(ctx context.Context, repositoryID, resourceID uuid.UUID) (*repos.ResourceRow, error) {
	rows, err := s.resources.GetRows(ctx, nil, []uuid.UUID{resourceID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || rows[0].RepositoryID != repositoryID {
		return nil, apierr.NotFound("learning resource")
	}
	return rows[0], nil
}

func (s *resourceService) views(ctx context.Context, rows []*repos.ResourceRow) ([]ResourceView, error) {
	out := make([]ResourceView, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	terms, err := s.links.ListTermsByResourceIDs(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out = append(out, NewResourceView(r, terms[r.ID]))
	}
	return out, nil
}
