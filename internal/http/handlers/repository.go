package handlers

import (
	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/lore-backend/internal/domain/aggregates"
	"github.com/yungbote/lore-backend/internal/http/response"
	"github.com/yungbote/lore-backend/internal/platform/ctxutil"
	"github.com/yungbote/lore-backend/internal/platform/logger"
	"github.com/yungbote/lore-backend/internal/services"
)

type RepositoryHandler struct {
	log   *logger.Logger
	repos services.RepositoryService
	authz services.Authorizer
	scope repositoryScope
}

func NewRepositoryHandler(log *logger.Logger, repos services.RepositoryService, authz services.Authorizer) *RepositoryHandler {
	return &RepositoryHandler{
		log:   log.With("handler", "RepositoryHandler"),
		repos: repos,
		authz: authz,
		scope: repositoryScope{repos: repos, authz: authz},
	}
}

// GET /api/repositories
func (h *RepositoryHandler) List(c *gin.Context) {
	out, err := h.repos.List(c.Request.Context())
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/repositories
func (h *RepositoryHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.authz.RequireStaff(ctx); err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	var in domainagg.CreateRepositoryInput
	if !bindJSON(c, &in) {
		return
	}
	in.CreatedBy = ctxutil.GetPrincipal(ctx).Subject
	out, err := h.repos.Create(ctx, in)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondCreated(c, out)
}

// GET /api/repositories/:repo
func (h *RepositoryHandler) Get(c *gin.Context) {
	repo, ok := h.scope.resolve(c, h.log, services.CapViewRepo)
	if !ok {
		return
	}
	response.RespondOK(c, services.NewRepositoryView(repo))
}

// GET /api/repositories/:repo/members
func (h *RepositoryHandler) ListMembers(c *gin.Context) {
	repo, ok := h.scope.resolve(c, h.log, services.CapManageRepoUsers)
	if !ok {
		return
	}
	out, err := h.repos.ListMembers(c.Request.Context(), repo.ID)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/repositories/:repo/members
func (h *RepositoryHandler) SetMember(c *gin.Context) {
	repo, ok := h.scope.resolve(c, h.log, services.CapManageRepoUsers)
	if !ok {
		return
	}
	var in domainagg.SetMemberInput
	if !bindJSON(c, &in) {
		return
	}
	in.RepositoryID = repo.ID
	out, err := h.repos.SetMember(c.Request.Context(), in)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondCreated(c, out)
}

// DELETE /api/repositories/:repo/members/:subject
func (h *RepositoryHandler) RemoveMember(c *gin.Context) {
	repo, ok := h.scope.resolve(c, h.log, services.CapManageRepoUsers)
	if !ok {
		return
	}
	if err := h.repos.RemoveMember(c.Request.Context(), repo.ID, c.Param("subject")); err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondNoContent(c)
}

// POST /api/repositories/:repo/courses
func (h *RepositoryHandler) RegisterCourse(c *gin.Context) {
	repo, ok := h.scope.resolve(c, h.log, services.CapImportCourse)
	if !ok {
		return
	}
	var in domainagg.RegisterCourseInput
	if !bindJSON(c, &in) {
		return
	}
	in.RepositoryID = repo.ID
	in.ImportedBy = ctxutil.GetPrincipal(c.Request.Context()).Subject
	out, err := h.repos.RegisterCourse(c.Request.Context(), in)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondCreated(c, out)
}
