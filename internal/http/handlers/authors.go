package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/libraryhub/internal/domain/author"
	"github.com/geocoder89/libraryhub/internal/ids"
	"github.com/gin-gonic/gin"
)

type AuthorsRepository interface {
	List(ctx context.Context, filter author.ListFilter) ([]author.Author, error)
	GetByID(ctx context.Context, id string, includeBooks bool) (author.Author, error)
	Create(ctx context.Context, req author.CreateRequest) (author.Author, error)
	Update(ctx context.Context, id string, req author.UpdateRequest) (author.Author, error)
	Delete(ctx context.Context, id string) error
}

type AuthorsHandler struct {
	repo  AuthorsRepository
	cache *ResponseCache
}

func NewAuthorsHandler(repo AuthorsRepository, cache *ResponseCache) *AuthorsHandler {
	return &AuthorsHandler{repo: repo, cache: cache}
}

func (h *AuthorsHandler) List(ctx *gin.Context) {
	req, ok := pageFromQuery(ctx)
	if !ok {
		return
	}

	filter := author.ListFilter{
		Name:         optionalQuery(ctx, "name"),
		IncludeBooks: ctx.Query("includeBooks") == "true",
		Request:      req,
	}
	params := cacheParams(&req, map[string]*string{"name": filter.Name}, filter.IncludeBooks)

	serveCached(ctx, h.cache, params, func() (any, error) {
		cctx, cancel := withTimeout(ctx, defaultTimeout)
		defer cancel()

		return h.repo.List(cctx, filter)
	})
}

func (h *AuthorsHandler) GetByID(ctx *gin.Context) {
	id := ctx.Param("id")
	if !ids.Valid(id) {
		RespondNotFound(ctx, "Author not found")
		return
	}

	includeBooks := ctx.Query("includeBooks") == "true"

	serveCached(ctx, h.cache, cacheParams(nil, nil, includeBooks), func() (any, error) {
		cctx, cancel := withTimeout(ctx, defaultTimeout)
		defer cancel()

		return h.repo.GetByID(cctx, id, includeBooks)
	})
}

func (h *AuthorsHandler) Create(ctx *gin.Context) {
	var req author.CreateRequest

	if !BindPayload(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, defaultTimeout)
	defer cancel()

	a, err := h.repo.Create(cctx, req)
	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	h.cache.Invalidate(ctx)
	ctx.JSON(http.StatusCreated, a)
}

func (h *AuthorsHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")
	if !ids.Valid(id) {
		RespondNotFound(ctx, "Author not found")
		return
	}

	var req author.UpdateRequest

	if !BindPayload(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, defaultTimeout)
	defer cancel()

	a, err := h.repo.Update(cctx, id, req)
	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	h.cache.Invalidate(ctx)
	ctx.JSON(http.StatusOK, a)
}

func (h *AuthorsHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")
	if !ids.Valid(id) {
		RespondNotFound(ctx, "Author not found")
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
