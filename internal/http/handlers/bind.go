package handlers

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/geocoder89/libraryhub/internal/http/apierror"
	"github.com/gin-gonic/gin"
)

// BindPayload decodes the request body, already cleaned by the Validate
// middleware, into out. Pointer fields stay nil when the key was absent.
func BindPayload(ctx *gin.Context, out any) bool {
	err := ctx.ShouldBindJSON(out)
	if err == nil {
		return true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		apierror.Validation(ctx, []string{fmt.Sprintf("%q must be of type %s", typeErr.Field, typeErr.Type.String())})
		return false
	}

	apierror.Validation(ctx, []string{"request body must be a valid JSON object"})
	return false
}
