package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lore-backend/internal/data/repos"
	types "github.com/yungbote/lore-backend/internal/domain"
	domainagg "github.com/yungbote/lore-backend/internal/domain/aggregates"
	"github.com/yungbote/lore-backend/internal/platform/apierr"
	"github.com/yungbote/lore-backend/internal/platform/ctxutil"
	"github.com/yungbote/lore-backend/internal/platform/logger"
)

// RepositoryService covers repositories, their members and course registration.
type RepositoryService interface {
	// List returns the repositories the caller belongs to, or all for staff.
	List(ctx context.Context) ([]RepositoryView, error)
	GetBySlug(ctx context.Context, slug string) (*types.Repository, error)
	Create(ctx context.Context, in domainagg.CreateRepositoryInput) (*RepositoryView, error)

	ListMembers(ctx context.Context, repositoryID uuid.UUID) ([]MemberView, error)
	SetMember(ctx context.Context, in domainagg.SetMemberInput) (*MemberView, error)
	RemoveMember(ctx context.Context, repositoryID uuid.UUID, subject string) error

	RegisterCourse(ctx context.Context, in domainagg.RegisterCourseInput) (*CourseView, error)
}

type CourseView struct {
	ID           uuid.UUID      `json:"id"`
	Org          string         `json:"org"`
	CourseNumber string         `json:"course_number"`
	Run          string         `json:"run"`
	Resources    []ResourceView `json:"resources"`
}

type repositoryService struct {
	db        *gorm.DB
	log       *logger.Logger
	repos     repos.RepositoryRepo
	members   repos.MemberRepo
	resources repos.ResourceRepo
	agg       domainagg.CatalogAggregate
}

func NewRepositoryService(db *gorm.DB, log *logger.Logger, set repos.Set, agg domainagg.CatalogAggregate) RepositoryService {
	return &repositoryService{
		db:        db,
		log:       log.With("service", "RepositoryService"),
		repos:     set.Repository,
		members:   set.Member,
		resources: set.Resource,
		agg:       agg,
	}
}

func (s *repositoryService) List(ctx context.Context) ([]RepositoryView, error) {
	p := ctxutil.GetPrincipal(ctx)
	if p == nil {
		return nil, errUnauthenticated
	}
	var (
		rows []*types.Repository
		err  error
	)
	if p.Staff {
		rows, err = s.repos.ListAll(ctx, nil)
	} else {
		rows, err = s.repos.ListBySubject(ctx, nil, p.Subject)
	}
	if err != nil {
		return nil, err
	}
	out := make([]RepositoryView, 0, len(rows))
	for _, r := range rows {
		out = append(out, NewRepositoryView(r))
	}
	return out, nil
}

func (s *repositoryService) GetBySlug(ctx context.Context, slug string) (*types.Repository, error) {
	repo, err := s.repos.GetBySlug(ctx, nil, slug)
	if err != nil {
		return nil, err
	}
	if repo == nil {
		return nil, apierr.NotFound("repository")
	}
	return repo, nil
}

func (s *repositoryService) Create(ctx context.Context, in domainagg.CreateRepositoryInput) (*RepositoryView, error) {
	repo, err := s.agg.CreateRepository(ctx, in)
	if err != nil {
		return nil, err
	}
	s.log.Info("Repository created", "repository_id", repo.ID, "slug", repo.Slug, "created_by", repo.CreatedBy)
	view := NewRepositoryView(repo)
	return &view, nil
}

func (s *repositoryService) ListMembers(ctx context.Context, repositoryID uuid.UUID) ([]MemberView, error) {
	rows, err := s.members.ListByRepository(ctx, nil, repositoryID)
	if err != nil {
		return nil, err
	}
	out := make([]MemberView, 0, len(rows))
	for _, m := range rows {
		out = append(out, MemberView{Subject: m.Subject, Role: m.Role})
	}
	return out, nil
}

func (s *repositoryService) SetMember(ctx context.Context, in domainagg.SetMemberInput) (*MemberView, error) {
	m, err := s.agg.SetMember(ctx, in)
	if err != nil {
		return nil, err
	}
	return &MemberView{Subject: m.Subject, Role: m.Role}, nil
}

func (s *repositoryService) RemoveMember(ctx context.Context, repositoryID uuid.UUID, subject string) error {
	return s.agg.RemoveMember(ctx, domainagg.RemoveMemberInput{RepositoryID: repositoryID, Subject: subject})
}

func (s *repositoryService) RegisterCourse(ctx context.Context, in domainagg.RegisterCourseInput) (*CourseView, error) {
	res, err := s.agg.RegisterCourse(ctx, in)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(res.Resources))
	for _, r := range res.Resources {
		ids = append(ids, r.ID)
	}
	rows, err := s.resources.GetRows(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	out := &CourseView{
		ID:           res.Course.ID,
		Org:          res.Course.Org,
		CourseNumber: res.Course.CourseNumber,
		Run:          res.Course.Run,
		Resources:    make([]ResourceView, 0, len(rows)),
	}
	for _, row := range rows {
		out.Resources = append(out.Resources, NewResourceView(row, nil))
	}
	s.log.Info("Course registered",
		"repository_id", in.RepositoryID,
		"course_id", res.Course.ID,
		"resources", len(res.Resources),
	)
	return out, nil
}
