package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/lore-backend/internal/http/response"
	"github.com/yungbote/lore-backend/internal/platform/logger"
	"github.com/yungbote/lore-backend/internal/search"
	"github.com/yungbote/lore-backend/internal/services"
)

type SearchHandler struct {
	log    *logger.Logger
	search services.SearchService
	scope  repositoryScope
}

func NewSearchHandler(log *logger.Logger, search services.SearchService, repos services.RepositoryService, authz services.Authorizer) *SearchHandler {
	return &SearchHandler{
		log:    log.With("handler", "SearchHandler"),
		search: search,
		scope:  repositoryScope{repos: repos, authz: authz},
	}
}

type searchEnvelope struct {
	Count       int                          `json:"count"`
	Next        *string                      `json:"next"`
	Previous    *string                      `json:"previous"`
	Results     []search.Document            `json:"results"`
	FacetCounts map[string]search.FacetCount `json:"facet_counts"`
}

// GET /api/repositories/:repo/search?q=&selected_facets=&sort=&page=
func (h *SearchHandler) Search(c *gin.Context) {
	repo, ok := h.scope.resolve(c, h.log, services.CapViewRepo)
	if !ok {
		return
	}
	page, ok := pageParam(c)
	if !ok {
		return
	}
	res, err := h.search.Search(c.Request.Context(), search.Query{
		RepositoryID:   repo.ID,
		Text:           c.Query("q"),
		SelectedFacets: c.QueryArray("selected_facets"),
		Sort:           c.Query("sort"),
		Page:           page,
		PageSize:       services.PageSize,
	})
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	next, previous := response.PageLinks(c, page, page*services.PageSize < res.Count, page > 1)
	response.RespondOK(c, searchEnvelope{
		Count:       res.Count,
		Next:        next,
		Previous:    previous,
		Results:     res.Results,
		FacetCounts: res.FacetCounts,
	})
}
