package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/lore-backend/internal/http/response"
	"github.com/yungbote/lore-backend/internal/platform/apierr"
	"github.com/yungbote/lore-backend/internal/platform/logger"
	"github.com/yungbote/lore-backend/internal/services"
)

type ResourceHandler struct {
	log       *logger.Logger
	resources services.ResourceService
	scope     repositoryScope
}

func NewResourceHandler(log *logger.Logger, resources services.ResourceService, repos services.RepositoryService, authz services.Authorizer) *ResourceHandler {
	return &ResourceHandler{
		log:       log.With("handler", "ResourceHandler"),
		resources: resources,
		scope:     repositoryScope{repos: repos, authz: authz},
	}
}

// GET /api/learning_resource_types
func (h *ResourceHandler) ListTypes(c *gin.Context) {
	names, err := h.resources.ListResourceTypes(c.Request.Context())
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	out := make([]gin.H, 0, len(names))
	for _, n := range names {
		out = append(out, gin.H{"name": n})
	}
	response.RespondOK(c, out)
}

// GET /api/repositories/:repo/learning_resources?type_name=&page=
func (h *ResourceHandler) List(c *gin.Context) {
	repo, ok := h.scope.resolve(c, h.log, services.CapViewRepo)
	if !ok {
		return
	}
	page, ok := pageParam(c)
	if !ok {
		return
	}
	out, err := h.resources.List(c.Request.Context(), repo.ID, strings.TrimSpace(c.Query("type_name")), page)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondPage(c, out.Count, out.Page, out.HasNext(), out.HasPrevious(), out.Results)
}

// GET /api/repositories/:repo/learning_resources/:id
func (h *ResourceHandler) Get(c *gin.Context) {
	repo, ok := h.scope.resolve(c, h.log, services.CapViewRepo)
	if !ok {
		return
	}
	id, ok := resourceIDParam(c, h.log)
	if !ok {
		return
	}
	out, err := h.resources.Get(c.Request.Context(), repo.ID, id)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

type patchResourceRequest struct {
	Terms *[]string `json:"terms"`
}

// PATCH /api/repositories/:repo/learning_resources/:id
//
// Only "terms" is writable; other fields are ignored.
func (h *ResourceHandler) Patch(c *gin.Context) {
	repo, ok := h.scope.resolve(c, h.log, services.CapAddEditMetadata)
	if !ok {
		return
	}
	id, ok := resourceIDParam(c, h.log)
	if !ok {
		return
	}
	var req patchResourceRequest
	if !bindJSON(c, &req, "terms") {
		return
	}
	ctx := c.Request.Context()
	if req.Terms == nil {
		out, err := h.resources.Get(ctx, repo.ID, id)
		if err != nil {
			response.RespondAggregateError(c, h.log, err)
			return
		}
		response.RespondOK(c, out)
		return
	}
	out, err := h.resources.SetTerms(ctx, repo.ID, id, *req.Terms)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

func resourceIDParam(c *gin.Context, log *logger.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondAggregateError(c, log, apierr.NotFound("learning resource"))
		return uuid.Nil, false
	}
	return id, true
}
