package middleware

import (
	"github.com/gin-gonic/gin"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/sentry"
)

// ErrorHandler converts errors attached via c.Error into the standard error
// response. Handlers never write error bodies themselves.
func ErrorHandler(sentrySvc *sentry.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status := ierr.HTTPStatusFromErr(err)
		if status >= 500 {
			sentrySvc.CaptureException(c.Request.Context(), err)
		}
		c.AbortWithStatusJSON(status, ierr.NewErrorResponse(err))
	}
}
