package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lettercounsel/lettercounsel/internal/auth"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/logger"
	"github.com/lettercounsel/lettercounsel/internal/types"
)

// AuthMiddleware validates the bearer token and loads the caller's identity
// into the request context. Authorization decisions happen downstream from
// the role placed here.
func AuthMiddleware(provider auth.Provider, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			abortWithError(c, ierr.NewError("missing authorization token").
				WithHint("Authorization header with a bearer token is required").
				Mark(ierr.ErrPermissionDenied))
			return
		}

		claims, err := provider.ValidateToken(c.Request.Context(), token)
		if err != nil {
			log.Debugw("token validation failed", "error", err)
			abortWithError(c, err)
			return
		}

		ctx := c.Request.Context()
		ctx = types.SetUserID(ctx, claims.UserID)
		ctx = types.SetUserEmail(ctx, claims.Email)
		ctx = types.SetUserRole(ctx, claims.Role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireCapability gates a route group on one capability.
func RequireCapability(capability types.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := types.GetUserRole(c.Request.Context())
		if !role.HasCapability(capability) {
			abortWithError(c, ierr.NewError("insufficient permissions").
				WithHint("You are not allowed to access this resource").
				Mark(ierr.ErrForbidden))
			return
		}
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(ierr.HTTPStatusFromErr(err), ierr.NewErrorResponse(err))
}
