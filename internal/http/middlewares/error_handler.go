package middlewares

import (
	"log/slog"

	"github.com/geocoder89/libraryhub/internal/http/apierror"
	"github.com/gin-gonic/gin"
)

// ErrorHandler turns errors pushed with c.Error into a logged 500 envelope.
// Handlers answer their expected failures themselves.
func ErrorHandler(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		log.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"errors", c.Errors.String(),
		)

		if c.Writer.Written() {
			return
		}
		apierror.Internal(c)
	}
}

// Recovery logs a panic and answers with the 500 envelope.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.ErrorContext(c.Request.Context(), "panic recovered",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"panic", recovered,
		)
		apierror.Internal(c)
	})
}
