// Package apierror writes the JSON error envelope shared by every endpoint:
// {error, message, timestamp, path, requestId}.
package apierror

import (
	"net/http"
	"time"

	"github.com/geocoder89/libraryhub/internal/actorctx"
	"github.com/gin-gonic/gin"
)

// Names used in the "error" field.
const (
	MissingCredentials   = "MissingCredentials"
	InvalidCredentials   = "InvalidCredentials"
	Unauthorized         = "Unauthorized"
	Forbidden            = "Forbidden"
	ValidationError      = "ValidationError"
	NotFound             = "NotFound"
	Conflict             = "Conflict"
	DuplicateEmail       = "DuplicateEmail"
	UserNotFound         = "UserNotFound"
	InvalidPassword      = "InvalidPassword"
	TooManyRequests      = "TooManyRequests"
	PayloadTooLarge      = "PayloadTooLarge"
	UnsupportedMediaType = "UnsupportedMediaType"
	ServerError          = "ServerError"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Envelope is the error body. Message is a string, or a list of strings for
// validation failures.
type Envelope struct {
	Error     string   `json:"error"`
	Message   any      `json:"message"`
	Timestamp string   `json:"timestamp"`
	Path      string   `json:"path"`
	RequestID string   `json:"requestId,omitempty"`
	Available []string `json:"available,omitempty"`
}

func New(ctx *gin.Context, name string, message any) Envelope {
	reqID, _ := actorctx.RequestIDFrom(ctx.Request.Context())

	return Envelope{
		Error:     name,
		Message:   message,
		Timestamp: time.Now().UTC().Format(timestampLayout),
		Path:      ctx.Request.URL.Path,
		RequestID: reqID,
	}
}

// Abort writes the envelope and stops the handler chain.
func Abort(ctx *gin.Context, status int, name string, message any) {
	ctx.AbortWithStatusJSON(status, New(ctx, name, message))
}

func Validation(ctx *gin.Context, messages []string) {
	Abort(ctx, http.StatusBadRequest, ValidationError, messages)
}

func Internal(ctx *gin.Context) {
	Abort(ctx, http.StatusInternalServerError, ServerError, "Internal server error")
}
