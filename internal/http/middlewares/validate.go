package middlewares

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/geocoder89/libraryhub/internal/http/apierror"
	"github.com/geocoder89/libraryhub/internal/validation"
	"github.com/gin-gonic/gin"
)

// Validate checks the JSON body against schema. On success the body is
// replaced with the cleaned payload, so handlers decode coerced values.
func Validate(schema validation.Schema) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := validation.Decode(c.Request.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				apierror.Abort(c, http.StatusRequestEntityTooLarge, apierror.PayloadTooLarge, "Request body too large")
				return
			}
			if verr, ok := validation.AsError(err); ok {
				apierror.Validation(c, verr.Messages)
				return
			}
			_ = c.Error(err)
			c.Abort()
			return
		}

		cleaned, err := validation.Validate(schema, payload)
		if err != nil {
			verr, _ := validation.AsError(err)
			apierror.Validation(c, verr.Messages)
			return
		}

		body, err := json.Marshal(cleaned)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(ctxPayload, cleaned)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Request.ContentLength = int64(len(body))

		c.Next()
	}
}

// PayloadFromContext returns the cleaned payload stored by Validate.
func PayloadFromContext(c *gin.Context) (map[string]any, bool) {
	v, ok := c.Get(ctxPayload)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}
