package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/lore-backend/internal/domain/aggregates"
	"github.com/yungbote/lore-backend/internal/platform/apierr"
	"github.com/yungbote/lore-backend/internal/platform/ctxutil"
	"github.com/yungbote/lore-backend/internal/platform/logger"
)

// StatusForCode maps aggregate error codes onto HTTP statuses and wire codes.
func StatusForCode(code domainagg.ErrorCode) (int, string) {
	switch code {
	case domainagg.CodeValidation:
		return http.StatusBadRequest, "validation_failed"
	case domainagg.CodeNotFound:
		return http.StatusNotFound, "not_found"
	case domainagg.CodeConflict:
		return http.StatusConflict, "conflict"
	case domainagg.CodeInvariantViolation:
		return http.StatusConflict, "invariant_violation"
	case domainagg.CodePreconditionFailed:
		return http.StatusPreconditionFailed, "precondition_failed"
	case domainagg.CodeRetryable:
		return http.StatusServiceUnavailable, "retryable"
	case domainagg.CodeIndexSync:
		return http.StatusInternalServerError, "index_sync_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// RespondAggregateError writes err as an error envelope. Transport errors
// keep their status; aggregate errors are mapped by code; anything else is
// a 500 whose cause is logged but not exposed.
func RespondAggregateError(c *gin.Context, log *logger.Logger, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		RespondFields(c, ae.Status, ae.Code, ae.Error(), ae.Fields)
		return
	}

	var de *domainagg.Error
	if errors.As(err, &de) {
		status, code := StatusForCode(de.Code)
		msg := de.Message
		switch {
		case de.Code == domainagg.CodeValidation && len(de.Fields) > 0:
			msg = "Invalid input."
		case status >= http.StatusInternalServerError && de.Code != domainagg.CodeIndexSync:
			msg = "internal error"
		case msg == "":
			msg = string(de.Code)
		}
		if status >= http.StatusInternalServerError && log != nil {
			log.Error("Request failed", append(ctxutil.LogFields(c.Request.Context()), "op", de.Op, "code", de.Code, "error", err)...)
		}
		RespondFields(c, status, code, msg, map[string][]string(de.Fields))
		return
	}

	if log != nil {
		log.Error("Request failed", append(ctxutil.LogFields(c.Request.Context()), "error", err)...)
	}
	RespondFields(c, http.StatusInternalServerError, "internal_error", "internal error", nil)
}
