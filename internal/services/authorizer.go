package services

import (
	"context"
	"errors"
	"net/http"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"

	"github.com/yungbote/lore-backend/internal/data/repos"
	types "github.com/yungbote/lore-backend/internal/domain"
	"github.com/yungbote/lore-backend/internal/platform/apierr"
	"github.com/yungbote/lore-backend/internal/platform/ctxutil"
	"github.com/yungbote/lore-backend/internal/platform/logger"
)

type Capability string

const (
	CapViewRepo        Capability = "view_repo"
	CapImportCourse    Capability = "import_course"
	CapManageTaxonomy  Capability = "manage_taxonomy"
	CapAddEditMetadata Capability = "add_edit_metadata"
	CapManageRepoUsers Capability = "manage_repo_users"
)

var roleCapabilities = map[string]mapset.Set[Capability]{
	types.RoleAdministrator: mapset.NewSet(CapViewRepo, CapImportCourse, CapManageTaxonomy, CapAddEditMetadata, CapManageRepoUsers),
	types.RoleCurator:       mapset.NewSet(CapViewRepo, CapImportCourse, CapManageTaxonomy, CapAddEditMetadata),
	types.RoleAuthor:        mapset.NewSet(CapViewRepo, CapImportCourse, CapAddEditMetadata),
}

// CapabilitiesForRole returns a copy of the role's capability set.
func CapabilitiesForRole(role string) mapset.Set[Capability] {
	if caps, ok := roleCapabilities[role]; ok {
		return caps.Clone()
	}
	return mapset.NewSet[Capability]()
}

var (
	errUnauthenticated = apierr.New(http.StatusUnauthorized, "unauthorized", errors.New("authentication credentials were not provided"))
)

// Authorizer decides whether the caller holds a capability on a repository.
// Staff principals hold every capability.
type Authorizer interface {
	Capabilities(ctx context.Context, repositoryID uuid.UUID) (mapset.Set[Capability], error)
	Require(ctx context.Context, repositoryID uuid.UUID, caps ...Capability) error
	RequireStaff(ctx context.Context) error
}

type authorizer struct {
	log     *logger.Logger
	members repos.MemberRepo
}

func NewAuthorizer(log *logger.Logger, members repos.MemberRepo) Authorizer {
	return &authorizer{log: log.With("service", "Authorizer"), members: members}
}

func (a *authorizer) Capabilities(ctx context.Context, repositoryID uuid.UUID) (mapset.Set[Capability], error) {
	p := ctxutil.GetPrincipal(ctx)
	if p == nil || p.Subject == "" {
		return nil, errUnauthenticated
	}
	if p.Staff {
		return CapabilitiesForRole(types.RoleAdministrator), nil
	}
	m, err := a.members.Get(ctx, nil, repositoryID, p.Subject)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return mapset.NewSet[Capability](), nil
	}
	return CapabilitiesForRole(m.Role), nil
}

func (a *authorizer) Require(ctx context.Context, repositoryID uuid.UUID, caps ...Capability) error {
	have, err := a.Capabilities(ctx, repositoryID)
	if err != nil {
		return err
	}
	if !have.Contains(caps...) {
		a.log.Debug("Capability check failed", append(ctxutil.LogFields(ctx), "repository_id", repositoryID, "required", caps)...)
		return apierr.Forbidden()
	}
	return nil
}

func (a *authorizer) RequireStaff(ctx context.Context) error {
	p := ctxutil.GetPrincipal(ctx)
	if p == nil || p.Subject == "" {
		return errUnauthenticated
	}
	if !p.Staff {
		return apierr.Forbidden()
	}
	return nil
}
