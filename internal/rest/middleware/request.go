package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/lettercounsel/lettercounsel/internal/types"
)

// RequestIDMiddleware assigns each request an ID and threads it through the
// request context so logs and audit metadata correlate.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = types.GenerateUUIDWithPrefix(types.UUIDPrefixRequest)
		}

		ctx := types.SetRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}
