package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/lore-backend/internal/domain"
	"github.com/yungbote/lore-backend/internal/http/response"
	"github.com/yungbote/lore-backend/internal/platform/apierr"
	"github.com/yungbote/lore-backend/internal/platform/logger"
	"github.com/yungbote/lore-backend/internal/services"
)

const maxBodyBytes = 4 << 20

// repositoryScope resolves the :repo path parameter and checks the caller's
// capabilities on it. Lookup happens first so a missing repository is a 404
// for any authenticated caller.
type repositoryScope struct {
	repos services.RepositoryService
	authz services.Authorizer
}

func (s repositoryScope) resolve(c *gin.Context, log *logger.Logger, caps ...services.Capability) (*types.Repository, bool) {
	repo, err := s.repos.GetBySlug(c.Request.Context(), c.Param("repo"))
	if err != nil {
		response.RespondAggregateError(c, log, err)
		return nil, false
	}
	if err := s.authz.Require(c.Request.Context(), repo.ID, caps...); err != nil {
		response.RespondAggregateError(c, log, err)
		return nil, false
	}
	return repo, true
}

// pageParam reads ?page=, defaulting to 1. Anything else is an invalid page.
func pageParam(c *gin.Context) (int, bool) {
	raw := strings.TrimSpace(c.Query("page"))
	if raw == "" {
		return 1, true
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		response.RespondFields(c, http.StatusNotFound, "not_found", "Invalid page.", nil)
		return 0, false
	}
	return page, true
}

// bindJSON decodes the request body into dst. Keys listed in nonNull must
// not be an explicit JSON null; absence is left for dst's own validation.
func bindJSON(c *gin.Context, dst any, nonNull ...string) bool {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "parse_error", err)
		return false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		response.RespondError(c, http.StatusBadRequest, "parse_error", fmt.Errorf("JSON parse error: %v", err))
		return false
	}
	nulls := map[string][]string{}
	for _, key := range nonNull {
		if v, ok := raw[key]; ok && bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			nulls[key] = []string{"This field may not be null."}
		}
	}
	if len(nulls) > 0 {
		response.RespondFields(c, http.StatusBadRequest, "validation_failed", "Invalid input.", nulls)
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		var ute *json.UnmarshalTypeError
		if errors.As(err, &ute) && ute.Field != "" {
			response.RespondAggregateError(c, nil, apierr.Invalid(ute.Field, fmt.Sprintf("Expected %s.", describeKind(ute.Type.Kind().String()))))
			return false
		}
		response.RespondError(c, http.StatusBadRequest, "parse_error", fmt.Errorf("JSON parse error: %v", err))
		return false
	}
	return true
}

func describeKind(kind string) string {
	switch {
	case strings.HasPrefix(kind, "int"), strings.HasPrefix(kind, "uint"):
		return "a valid integer"
	case kind == "bool":
		return "a boolean"
	case kind == "slice":
		return "a list of items"
	case kind == "string":
		return "a string"
	case kind == "map", kind == "struct":
		return "an object"
	default:
		return "a value of type " + kind
	}
}
