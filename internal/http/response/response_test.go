package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainagg "github.com/yungbote/lore-backend/internal/domain/aggregates"
	"github.com/yungbote/lore-backend/internal/platform/apierr"
	"github.com/yungbote/lore-backend/internal/platform/logger"
)

func serve(t *testing.T, target string, h gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", h)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()
	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error
}

func TestRespondAggregateErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", domainagg.FieldError("op", "name", "This field is required."), http.StatusBadRequest, "validation_failed"},
		{"not found", domainagg.NotFound("op", "vocabulary"), http.StatusNotFound, "not_found"},
		{"conflict", domainagg.NewError(domainagg.CodeConflict, "op", "taken", nil), http.StatusConflict, "conflict"},
		{"index sync", domainagg.NewError(domainagg.CodeIndexSync, "op", "search index could not be updated", errors.New("boom")), http.StatusInternalServerError, "index_sync_failed"},
		{"wrapped", fmt.Errorf("outer: %w", domainagg.NotFound("op", "term")), http.StatusNotFound, "not_found"},
		{"transport", apierr.Forbidden(), http.StatusForbidden, "forbidden"},
		{"unknown", errors.New("db exploded"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(t, "/x", func(c *gin.Context) {
				RespondAggregateError(c, logger.Nop(), tc.err)
			})
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, decodeError(t, rec).Code)
		})
	}
}

func TestRespondAggregateErrorCarriesFields(t *testing.T) {
	rec := serve(t, "/x", func(c *gin.Context) {
		RespondAggregateError(c, nil, domainagg.NewValidationError("op", domainagg.FieldErrors{
			"name":   {"This field is required."},
			"weight": {"This field is required."},
		}))
	})
	got := decodeError(t, rec)
	assert.Equal(t, []string{"This field is required."}, got.Fields["name"])
	assert.Contains(t, got.Fields, "weight")
}

func TestRespondAggregateErrorHidesInternalCause(t *testing.T) {
	rec := serve(t, "/x", func(c *gin.Context) {
		RespondAggregateError(c, nil, errors.New("password=hunter2"))
	})
	assert.NotContains(t, rec.Body.String(), "hunter2")
}

func TestRespondPageLinks(t *testing.T) {
	rec := serve(t, "/x?page=2&type_name=problem", func(c *gin.Context) {
		RespondPage(c, 45, 2, true, true, []int{1})
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Count    int64   `json:"count"`
		Next     *string `json:"next"`
		Previous *string `json:"previous"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.EqualValues(t, 45, env.Count)
	require.NotNil(t, env.Next)
	assert.Equal(t, "http://example.com/x?page=3&type_name=problem", *env.Next)
	require.NotNil(t, env.Previous)
	assert.Equal(t, "http://example.com/x?type_name=problem", *env.Previous)

	rec = serve(t, "/x", func(c *gin.Context) {
		RespondPage(c, 3, 1, false, false, []int{1, 2, 3})
	})
	assert.JSONEq(t, `{"count":3,"next":null,"previous":null,"results":[1,2,3]}`, rec.Body.String())
}
