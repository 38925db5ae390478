package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/libraryhub/internal/domain/book"
	"github.com/geocoder89/libraryhub/internal/ids"
	"github.com/gin-gonic/gin"
)

type BooksRepository interface {
	List(ctx context.Context, filter book.ListFilter) ([]book.Book, error)
	GetByID(ctx context.Context, id string) (book.Book, error)
	Create(ctx context.Context, req book.CreateRequest) (book.Book, error)
	Update(ctx context.Context, id string, req book.UpdateRequest) (book.Book, error)
	Delete(ctx context.Context, id string) error
}

type BooksHandler struct {
	repo  BooksRepository
	cache *ResponseCache
}

func NewBooksHandler(repo BooksRepository, cache *ResponseCache) *BooksHandler {
	return &BooksHandler{repo: repo, cache: cache}
}

func (h *BooksHandler) List(ctx *gin.Context) {
	req, ok := pageFromQuery(ctx)
	if !ok {
		return
	}

	filter := book.ListFilter{
		Query:    optionalQuery(ctx, "q"),
		AuthorID: optionalQuery(ctx, "author"),
		Request:  req,
	}
	params := cacheParams(&req, map[string]*string{"q": filter.Query, "author": filter.AuthorID}, false)

	serveCached(ctx, h.cache, params, func() (any, error) {
		cctx, cancel := withTimeout(ctx, defaultTimeout)
		defer cancel()

		return h.repo.List(cctx, filter)
	})
}

func (h *BooksHandler) GetByID(ctx *gin.Context) {
	id := ctx.Param("id")
	if !ids.Valid(id) {
		RespondNotFound(ctx, "Book not found")
		return
	}

	serveCached(ctx, h.cache, cacheParams(nil, nil, false), func() (any, error) {
		cctx, cancel := withTimeout(ctx, defaultTimeout)
		defer cancel()

		return h.repo.GetByID(cctx, id)
	})
}

func (h *BooksHandler) Create(ctx *gin.Context) {
	var req book.CreateRequest

	if !BindPayload(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, defaultTimeout)
	defer cancel()

	b, err := h.repo.Create(cctx, req)
	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	h.cache.Invalidate(ctx)
	ctx.JSON(http.StatusCreated, b)
}

// Update applies title and year. An authorId in the body passes validation
// but book.UpdateRequest has no field for it.
func (h *BooksHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")
	if !ids.Valid(id) {
		RespondNotFound(ctx, "Book not found")
		return
	}

	var req book.UpdateRequest

	if !BindPayload(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, defaultTimeout)
	defer cancel()

	b, err := h.repo.Update(cctx, id, req)
	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	h.cache.Invalidate(ctx)
	ctx.JSON(http.StatusOK, b)
}

func (h *BooksHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")
	if !ids.Valid(id) {
		RespondNotFound(ctx, "Book not found")
		return
	}

	cctx, cancel := withTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := h.repo.Delete(cctx, id); err != nil {
		RespondDomainError(ctx, err)
		return
	}

	h.cache.Invalidate(ctx)
	ctx.Status(http.StatusNoContent)
}
