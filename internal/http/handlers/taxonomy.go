package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/lore-backend/internal/domain/aggregates"
	"github.com/yungbote/lore-backend/internal/http/response"
	"github.com/yungbote/lore-backend/internal/platform/logger"
	"github.com/yungbote/lore-backend/internal/services"
)

// Fields that may be omitted but never sent as null.
var (
	vocabularyNonNull = []string{"name", "description", "required", "weight", "vocabulary_type", "learning_resource_types"}
	termNonNull       = []string{"label", "weight"}
)

type TaxonomyHandler struct {
	log      *logger.Logger
	taxonomy services.TaxonomyService
	scope    repositoryScope
}

func NewTaxonomyHandler(log *logger.Logger, taxonomy services.TaxonomyService, repos services.RepositoryService, authz services.Authorizer) *TaxonomyHandler {
	return &TaxonomyHandler{
		log:      log.With("handler", "TaxonomyHandler"),
		taxonomy: taxonomy,
		scope:    repositoryScope{repos: repos, authz: authz},
	}
}

// GET /api/repositories/:repo/vocabularies?type_name=&page=
func (h *TaxonomyHandler) ListVocabularies(c *gin.Context) {
	repo, ok := h.scope.resolve(c, h.log, services.CapViewRepo)
	if !ok {
		return
	}
	page, ok := pageParam(c)
	if !ok {
		return
	}
	out, err := h.taxonomy.ListVocabularies(c.Request.Context(), repo.ID, strings.TrimSpace(c.Query("type_name")), page)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondPage(c, out.Count, out.Page, out.HasNext(), out.HasPrevious(), out.Results)
}

// POST /api/repositories/:repo/vocabularies
func (h *TaxonomyHandler) CreateVocabulary(c *gin.Context) {
	repo, ok := h.scope.resolve(c, h.log, services.CapManageTaxonomy)
	if !ok {
		return
	}
	var in domainagg.CreateVocabularyInput
	if !bindJSON(c, &in, vocabularyNonNull...) {
		return
	}
	in.RepositoryID = repo.ID
	out, err := h.taxonomy.CreateVocabulary(c.Request.Context(), in)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondCreated(c, out)
}

// GET /api/repositories/:repo/vocabularies/:vocab
func (h *TaxonomyHandler) GetVocabulary(c *gin.Context) {
	repo, ok := h.scope.resolve(c, h.log, services.CapViewRepo)
	if !ok {
		return
	}
	out, err := h.taxonomy.GetVocabulary(c.Request.Context(), repo.ID, c.Param("vocab"))
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// PUT and PATCH /api/repositories/:repo/vocabularies/:vocab
func (h *TaxonomyHandler) UpdateVocabulary(c *gin.Context) {
	repo, ok := h.scope.resolve(c, h.log, services.CapManageTaxonomy)
	if !ok {
		return
	}
	var in domainagg.UpdateVocabularyInput
	if !bindJSON(c, &in, vocabularyNonNull...) {
		return
	}
	partial := c.Request.Method == http.MethodPatch
	out, err := h.taxonomy.UpdateVocabulary(c.Request.Context(), repo.ID, c.Param("vocab"), in, partial)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// DELETE /api/repositories/:repo/vocabularies/:vocab
func (h *TaxonomyHandler) DeleteVocabulary(c *gin.Context) {
	repo, ok := h.scope.resolve(c, h.log, services.CapManageTaxonomy)
	if !ok {
		return
	}
	if err := h.taxonomy.DeleteVocabulary(c.Request.Context(), repo.ID, c.Param("vocab")); err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondNoContent(c)
}

// GET /api/repositories/:repo/vocabularies/:vocab/terms
func (h *TaxonomyHandler) ListTerms(c *gin.Context) {
	repo, ok := h.scope.resolve(c, h.log, services.CapViewRepo)
	if !ok {
		return
	}
	page, ok := pageParam(c)
	if !ok {
		return
	}
	out, err := h.taxonomy.ListTerms(c.Request.Context(), repo.ID, c.Param("vocab"), page)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondPage(c, out.Count, out.Page, out.HasNext(), out.HasPrevious(), out.Results)
}

// POST /api/repositories/:repo/vocabularies/:vocab/terms
func (h *TaxonomyHandler) CreateTerm(c *gin.Context) {
	repo, ok := h.scope.resolve(c, h.log, services.CapManageTaxonomy)
	if !ok {
		return
	}
	var in domainagg.CreateTermInput
	if !bindJSON(c, &in, termNonNull...) {
		return
	}
	out, err := h.taxonomy.CreateTerm(c.Request.Context(), repo.ID, c.Param("vocab"), in)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondCreated(c, out)
}

// GET /api/repositories/:repo/vocabularies/:vocab/terms/:term
func (h *TaxonomyHandler) GetTerm(c *gin.Context) {
	repo, ok := h.scope.resolve(c, h.log, services.CapViewRepo)
	if !ok {
		return
	}
	out, err := h.taxonomy.GetTerm(c.Request.Context(), repo.ID, c.Param("vocab"), c.Param("term"))
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// PUT and PATCH /api/repositories/:repo/vocabularies/:vocab/terms/:term
func (h *TaxonomyHandler) UpdateTerm(c *gin.Context) {
	repo, ok := h.scope.resolve(c, h.log, services.CapManageTaxonomy)
	if !ok {
		return
	}
	var in domainagg.UpdateTermInput
	if !bindJSON(c, &in, termNonNull...) {
		return
	}
	partial := c.Request.Method == http.MethodPatch
	out, err := h.taxonomy.UpdateTerm(c.Request.Context(), repo.ID, c.Param("vocab"), c.Param("term"), in, partial)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// DELETE /api/repositories/:repo/vocabularies/:vocab/terms/:term
func (h *TaxonomyHandler) DeleteTerm(c *gin.Context) {
	repo, ok := h.scope.resolve(c, h.log, services.CapManageTaxonomy)
	if !ok {
		return
	}
	if err := h.taxonomy.DeleteTerm(c.Request.Context(), repo.ID, c.Param("vocab"), c.Param("term")); err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondNoContent(c)
}
