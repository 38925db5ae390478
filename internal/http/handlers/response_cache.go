package handlers

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	"github.com/geocoder89/libraryhub/internal/cache"
	"github.com/geocoder89/libraryhub/internal/observability"
	"github.com/gin-gonic/gin"
)

const catalogPrefix = "libraryhub:catalog:"

// ResponseCache keeps encoded GET responses of the catalog endpoints. Any
// catalog write drops every entry. A nil *ResponseCache caches nothing.
type ResponseCache struct {
	store cache.Cache
	prom  *observability.Prom
	log   *slog.Logger

	// mu orders Put against Invalidate; gen counts invalidations.
	mu  sync.RWMutex
	gen uint64
}

func NewResponseCache(store cache.Cache, prom *observability.Prom, log *slog.Logger) *ResponseCache {
	if store == nil {
		return nil
	}
	if log == nil {
		log = slog.Default()
	}
	return &ResponseCache{store: store, prom: prom, log: log}
}

// key is built from the path and the normalized parameters the handler
// actually used, never from the raw query.
func (rc *ResponseCache) key(ctx *gin.Context, params url.Values) string {
	return catalogPrefix + ctx.Request.URL.Path + "?" + params.Encode()
}

// Generation is read before loading and handed back to Put.
func (rc *ResponseCache) Generation() uint64 {
	if rc == nil {
		return 0
	}
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.gen
}

func (rc *ResponseCache) Get(ctx *gin.Context, params url.Values) ([]byte, bool) {
	if rc == nil {
		return nil, false
	}

	body, ok, err := rc.store.Get(ctx.Request.Context(), rc.key(ctx, params))
	switch {
	case err != nil:
		rc.prom.IncCacheLookup("error")
		rc.log.WarnContext(ctx.Request.Context(), "cache get failed", "err", err)
		return nil, false
	case ok:
		rc.prom.IncCacheLookup("hit")
		return body, true
	default:
		rc.prom.IncCacheLookup("miss")
		return nil, false
	}
}

// Put stores body unless an invalidation happened since gen was read.
func (rc *ResponseCache) Put(ctx *gin.Context, params url.Values, gen uint64, body []byte) {
	if rc == nil {
		return
	}

	rc.mu.RLock()
	defer rc.mu.RUnlock()
	if rc.gen != gen {
		return
	}
	if err := rc.store.Set(ctx.Request.Context(), rc.key(ctx, params), body); err != nil {
		rc.log.WarnContext(ctx.Request.Context(), "cache set failed", "err", err)
	}
}

// Invalidate runs after a successful write, detached from the request
// deadline so a slow client cannot leave stale entries behind.
func (rc *ResponseCache) Invalidate(ctx *gin.Context) {
	if rc == nil {
		return
	}
	c := context.WithoutCancel(ctx.Request.Context())

	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.gen++
	if err := rc.store.DeletePrefix(c, catalogPrefix); err != nil {
		rc.log.ErrorContext(c, "cache invalidation failed", "err", err)
	}
}
