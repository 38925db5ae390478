package middlewares

import (
	"net/http"
	"strings"

	"github.com/geocoder89/libraryhub/internal/http/apierror"
	"github.com/gin-gonic/gin"
)

// RequireJSON rejects POST/PUT/PATCH requests whose body is not JSON.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if c.Request.ContentLength == 0 {
				break
			}
			ct := c.GetHeader("Content-Type")
			// allow "application/json; charset=utf-8"
			if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
				apierror.Abort(c, http.StatusUnsupportedMediaType, apierror.UnsupportedMediaType, "Content-Type must be application/json")
				return
			}
		}
		c.Next()
	}
}
