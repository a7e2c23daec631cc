package aggregates

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/lore-backend/internal/data/repos"
	types "github.com/yungbote/lore-backend/internal/domain"
	domainagg "github.com/yungbote/lore-backend/internal/domain/aggregates"
	"github.com/yungbote/lore-backend/internal/indexsync"
	"github.com/yungbote/lore-backend/internal/pkg/slug"
	"github.com/yungbote/lore-backend/internal/platform/dbctx"
)

type CatalogAggregateDeps struct {
	Base BaseDeps

	Repositories  repos.RepositoryRepo
	Members       repos.MemberRepo
	Courses       repos.CourseRepo
	ResourceTypes repos.ResourceTypeRepo
	Resources     repos.ResourceRepo
}

func NewCatalogAggregateDepsFromSet(base BaseDeps, set repos.Set) CatalogAggregateDeps {
	return CatalogAggregateDeps{
		Base:          base,
		Repositories:  set.Repository,
		Members:       set.Member,
		Courses:       set.Course,
		ResourceTypes: set.ResourceType,
		Resources:     set.Resource,
	}
}

type catalogAggregate struct {
	deps CatalogAggregateDeps
}

func NewCatalogAggregate(deps CatalogAggregateDeps) domainagg.CatalogAggregate {
	deps.Base = deps.Base.withDefaults()
	return &catalogAggregate{deps: deps}
}

func (a *catalogAggregate) Contract() domainagg.Contract {
	return domainagg.CatalogAggregateContract
}

func (a *catalogAggregate) CreateRepository(ctx context.Context, in domainagg.CreateRepositoryInput) (*types.Repository, error) {
	const op = "Catalog.CreateRepository"
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(a.deps.Base.Validate, op, in); err != nil {
		return nil, err
	}

	var out *types.Repository
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) (indexsync.Scope, error) {
		var scope indexsync.Scope
		existing, err := a.deps.Repositories.SlugsWithPrefix(dbc.Ctx, dbc.Tx, slugBase(in.Name, slug.RepositoryFallback))
		if err != nil {
			return scope, err
		}
		repo := &types.Repository{
			ID:          uuid.New(),
			Name:        in.Name,
			Slug:        slug.Generate(in.Name, slug.RepositoryFallback, slug.TakenSet(existing)),
			Description: in.Description,
			CreatedBy:   in.CreatedBy,
		}
		if err := a.deps.Repositories.Create(dbc.Ctx, dbc.Tx, repo); err != nil {
			return scope, err
		}
		admin := &types.RepositoryMember{
			ID:           uuid.New(),
			RepositoryID: repo.ID,
			Subject:      in.CreatedBy,
			Role:         types.RoleAdministrator,
		}
		if err := a.deps.Members.Upsert(dbc.Ctx, dbc.Tx, admin); err != nil {
			return scope, err
		}
		out = repo
		return scope, nil
	})
	return out, err
}

func (a *catalogAggregate) SetMember(ctx context.Context, in domainagg.SetMemberInput) (*types.RepositoryMember, error) {
	const op = "Catalog.SetMember"
	in.Subject = strings.TrimSpace(in.Subject)
	if err := validateInput(a.deps.Base.Validate, op, in); err != nil {
		return nil, err
	}

	var out *types.RepositoryMember
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) (indexsync.Scope, error) {
		var scope indexsync.Scope
		if err := a.requireRepository(dbc, op, in.RepositoryID); err != nil {
			return scope, err
		}
		current, err := a.deps.Members.Get(dbc.Ctx, dbc.Tx, in.RepositoryID, in.Subject)
		if err != nil {
			return scope, err
		}
		if current != nil && current.Role == types.RoleAdministrator && in.Role != types.RoleAdministrator {
			if err := a.ensureAnotherAdministrator(dbc, op, in.RepositoryID); err != nil {
				return scope, err
			}
		}
		row := &types.RepositoryMember{
			ID:           uuid.New(),
			RepositoryID: in.RepositoryID,
			Subject:      in.Subject,
			Role:         in.Role,
		}
		if err := a.deps.Members.Upsert(dbc.Ctx, dbc.Tx, row); err != nil {
			return scope, err
		}
		out, err = a.deps.Members.Get(dbc.Ctx, dbc.Tx, in.RepositoryID, in.Subject)
		return scope, err
	})
	return out, err
}

func (a *catalogAggregate) RemoveMember(ctx context.Context, in domainagg.RemoveMemberInput) error {
	const op = "Catalog.RemoveMember"
	in.Subject = strings.TrimSpace(in.Subject)
	if err := validateInput(a.deps.Base.Validate, op, in); err != nil {
		return err
	}

	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) (indexsync.Scope, error) {
		var scope indexsync.Scope
		if err := a.requireRepository(dbc, op, in.RepositoryID); err != nil {
			return scope, err
		}
		current, err := a.deps.Members.Get(dbc.Ctx, dbc.Tx, in.RepositoryID, in.Subject)
		if err != nil {
			return scope, err
		}
		if current == nil {
			return scope, domainagg.NotFound(op, "member")
		}
		if current.Role == types.RoleAdministrator {
			if err := a.ensureAnotherAdministrator(dbc, op, in.RepositoryID); err != nil {
				return scope, err
			}
		}
		_, err = a.deps.Members.Delete(dbc.Ctx, dbc.Tx, in.RepositoryID, in.Subject)
		return scope, err
	})
}

// RegisterCourse stores the course and its resources, creating unknown
// resource types on the fly. The new resources are indexed after commit.
func (a *catalogAggregate) RegisterCourse(ctx context.Context, in domainagg.RegisterCourseInput) (domainagg.RegisterCourseResult, error) {
	const op = "Catalog.RegisterCourse"
	var out domainagg.RegisterCourseResult
	in.Org = strings.TrimSpace(in.Org)
	in.CourseNumber = strings.TrimSpace(in.CourseNumber)
	in.Run = strings.TrimSpace(in.Run)
	for i := range in.Resources {
		in.Resources[i].ResourceType = strings.TrimSpace(in.Resources[i].ResourceType)
	}
	if err := validateInput(a.deps.Base.Validate, op, in); err != nil {
		return out, err
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) (indexsync.Scope, error) {
		scope := indexsync.Scope{RepositoryID: in.RepositoryID}
		if err := a.requireRepository(dbc, op, in.RepositoryID); err != nil {
			return scope, err
		}
		dup, err := a.deps.Courses.GetByIdentity(dbc.Ctx, dbc.Tx, in.RepositoryID, in.Org, in.CourseNumber, in.Run)
		if err != nil {
			return scope, err
		}
		if dup != nil {
			return scope, domainagg.FieldError(op, "non_field_errors", "course with this org, course number and run already exists.")
		}

		course := &types.Course{
			ID:           uuid.New(),
			RepositoryID: in.RepositoryID,
			Org:          in.Org,
			CourseNumber: in.CourseNumber,
			Run:          in.Run,
			ImportedBy:   in.ImportedBy,
		}
		if err := a.deps.Courses.Create(dbc.Ctx, dbc.Tx, course); err != nil {
			return scope, err
		}

		names := make([]string, 0, len(in.Resources))
		for _, r := range in.Resources {
			names = append(names, r.ResourceType)
		}
		typeRows, err := a.deps.ResourceTypes.Ensure(dbc.Ctx, dbc.Tx, names)
		if err != nil {
			return scope, err
		}
		typeByName := make(map[string]uuid.UUID, len(typeRows))
		for _, t := range typeRows {
			typeByName[t.Name] = t.ID
		}

		rows := make([]*types.LearningResource, 0, len(in.Resources))
		for _, r := range in.Resources {
			meta, err := metadataJSON(r.Metadata)
			if err != nil {
				return scope, domainagg.FieldError(op, "resources", "metadata must be a JSON object.")
			}
			urlName := strings.TrimSpace(r.URLName)
			if urlName == "" {
				urlName = slug.Normalize(r.Title)
			}
			rows = append(rows, &types.LearningResource{
				ID:                     uuid.New(),
				CourseID:               course.ID,
				LearningResourceTypeID: typeByName[r.ResourceType],
				Title:                  r.Title,
				Description:            r.Description,
				ContentXML:             r.ContentXML,
				URLName:                urlName,
				Metadata:               meta,
			})
		}
		created, err := a.deps.Resources.Create(dbc.Ctx, dbc.Tx, rows)
		if err != nil {
			return scope, err
		}
		for _, r := range created {
			scope.AddResource(r.ID)
		}
		out = domainagg.RegisterCourseResult{Course: course, Resources: created}
		return scope, nil
	})
	return out, err
}

func (a *catalogAggregate) requireRepository(dbc dbctx.Context, op string, id uuid.UUID) error {
	repo, err := a.deps.Repositories.GetByID(dbc.Ctx, dbc.Tx, id)
	if err != nil {
		return err
	}
	if repo == nil {
		return domainagg.NotFound(op, "repository")
	}
	return nil
}

func (a *catalogAggregate) ensureAnotherAdministrator(dbc dbctx.Context, op string, repositoryID uuid.UUID) error {
	n, err := a.deps.Members.CountByRole(dbc.Ctx, dbc.Tx, repositoryID, types.RoleAdministrator)
	if err != nil {
		return err
	}
	if n <= 1 {
		return domainagg.FieldError(op, "role", "a repository must keep at least one administrator.")
	}
	return nil
}

func metadataJSON(m map[string]any) (datatypes.JSON, error) {
	if len(m) == 0 {
		return datatypes.JSON([]byte("{}")), nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
