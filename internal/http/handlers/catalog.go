package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/geocoder89/libraryhub/internal/domain/page"
	"github.com/geocoder89/libraryhub/internal/http/apierror"
	"github.com/gin-gonic/gin"
)

// serveCached answers a catalog GET from the response cache, or runs load,
// stores its encoded result and answers with it. Both paths carry an ETag.
// params are the normalized inputs of load and form the cache key.
func serveCached(ctx *gin.Context, rc *ResponseCache, params url.Values, load func() (any, error)) {
	if body, ok := rc.Get(ctx, params); ok {
		RespondJSONBytesWithETag(ctx, http.StatusOK, body)
		return
	}

	gen := rc.Generation()

	payload, err := load()
	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		_ = ctx.Error(err)
		ctx.Abort()
		return
	}

	rc.Put(ctx, params, gen, body)
	RespondJSONBytesWithETag(ctx, http.StatusOK, body)
}

// pageFromQuery reads page and limit, answering 400 when either is not an
// integer.
func pageFromQuery(ctx *gin.Context) (page.Request, bool) {
	req, problems := page.Parse(ctx.Query("page"), ctx.Query("limit"))
	if len(problems) > 0 {
		apierror.Validation(ctx, problems)
		return page.Request{}, false
	}
	return req, true
}

// optionalQuery returns nil when key is absent or empty.
func optionalQuery(ctx *gin.Context, key string) *string {
	v, ok := ctx.GetQuery(key)
	if !ok || v == "" {
		return nil
	}
	return &v
}

// cacheParams renders the parameters a list or get depends on. Unset
// optional values are left out.
func cacheParams(req *page.Request, opts map[string]*string, includeBooks bool) url.Values {
	params := url.Values{}
	if req != nil {
		params.Set("page", strconv.Itoa(req.Page))
		params.Set("limit", strconv.Itoa(req.Limit))
	}
	for k, v := range opts {
		if v != nil {
			params.Set(k, *v)
		}
	}
	if includeBooks {
		params.Set("includeBooks", "true")
	}
	return params
}
