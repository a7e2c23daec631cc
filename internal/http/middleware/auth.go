package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lore-backend/internal/http/response"
	"github.com/yungbote/lore-backend/internal/platform/ctxutil"
	"github.com/yungbote/lore-backend/internal/platform/logger"
	"github.com/yungbote/lore-backend/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	middlewareLogger := log.With("middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLogger, authService: authService}
}

// RequireAuth rejects requests without a valid bearer token and attaches the
// caller's Principal to the request context.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearerToken(c)
		if tokenString == "" {
			c.Header("WWW-Authenticate", `Bearer realm="api"`)
			response.RespondFields(c, http.StatusUnauthorized, "unauthorized", "Authentication credentials were not provided.", nil)
			return
		}
		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			am.log.Debug("Bearer token rejected", append(ctxutil.LogFields(c.Request.Context()), "error", err)...)
			c.Header("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
			response.RespondFields(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired token.", nil)
			return
		}
		c.Request = c.Request.WithContext(ctx)
		if p := ctxutil.GetPrincipal(ctx); p != nil {
			c.Set("subject", p.Subject)
		}
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
