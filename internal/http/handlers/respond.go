package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/libraryhub/internal/domain/author"
	"github.com/geocoder89/libraryhub/internal/domain/book"
	"github.com/geocoder89/libraryhub/internal/http/apierror"
	"github.com/geocoder89/libraryhub/internal/validation"
	"github.com/gin-gonic/gin"
)

const defaultTimeout = 3 * time.Second

// store calls are bounded but keep the request's trace and request id
func withTimeout(ctx *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), d)
}

func RespondNotFound(ctx *gin.Context, message string) {
	apierror.Abort(ctx, http.StatusNotFound, apierror.NotFound, message)
}

// RespondDomainError answers the failures a catalog operation is expected to
// produce. Anything else goes to the error handler as a 500.
func RespondDomainError(ctx *gin.Context, err error) {
	if verr, ok := validation.AsError(err); ok {
		apierror.Validation(ctx, verr.Messages)
		return
	}

	switch {
	case errors.Is(err, author.ErrNotFound):
		RespondNotFound(ctx, "Author not found")
	case errors.Is(err, book.ErrNotFound):
		RespondNotFound(ctx, "Book not found")
	case errors.Is(err, author.ErrHasBooks):
		apierror.Abort(ctx, http.StatusConflict, apierror.Conflict, "Cannot delete author with associated books")
	case errors.Is(err, book.ErrAuthorNotFound):
		apierror.Validation(ctx, []string{`"authorId" does not reference an existing author`})
	default:
		_ = ctx.Error(err)
		ctx.Abort()
	}
}
