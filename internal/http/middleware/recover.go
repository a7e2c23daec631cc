package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lore-backend/internal/http/response"
	"github.com/yungbote/lore-backend/internal/platform/ctxutil"
	"github.com/yungbote/lore-backend/internal/platform/logger"
)

// Recover turns a handler panic into a logged 500 error envelope.
func Recover(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			if log != nil {
				log.Error("Panic in handler", append(ctxutil.LogFields(c.Request.Context()),
					"panic", fmt.Sprint(rec),
					"stack", string(debug.Stack()),
				)...)
			}
			response.RespondFields(c, http.StatusInternalServerError, "internal_error", "internal error", nil)
		}()
		c.Next()
	}
}
