package middlewares

import (
	"net/http"
	"strings"

	"github.com/geocoder89/libraryhub/internal/actorctx"
	"github.com/geocoder89/libraryhub/internal/auth"
	"github.com/geocoder89/libraryhub/internal/http/apierror"
	"github.com/geocoder89/libraryhub/internal/observability"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	jwt  TokenVerifier
	prom *observability.Prom
}

func NewAuthMiddleware(jwt TokenVerifier, prom *observability.Prom) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, prom: prom}
}

// RequireAuth admits requests carrying "Authorization: Bearer <token>" with a
// valid token. A missing or malformed header is 401; a token that fails
// verification is 403.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			m.prom.IncAuthFailure("missing_credentials")
			apierror.Abort(c, http.StatusUnauthorized, apierror.MissingCredentials, "Authorization header missing or malformed")
			return
		}

		claims, err := m.jwt.Verify(raw)
		if err != nil {
			m.prom.IncAuthFailure("invalid_credentials")
			apierror.Abort(c, http.StatusForbidden, apierror.InvalidCredentials, "Invalid or expired token")
			return
		}

		actor := actorctx.Actor{ID: claims.UserID, Email: claims.Email, Role: claims.Role}

		c.Set(ctxActorKey, actor)
		c.Request = c.Request.WithContext(actorctx.With(c.Request.Context(), actor))

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" || token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

// ActorFromContext returns the identity attached by RequireAuth.
func ActorFromContext(c *gin.Context) (actorctx.Actor, bool) {
	v, ok := c.Get(ctxActorKey)
	if !ok {
		return actorctx.Actor{}, false
	}
	actor, ok := v.(actorctx.Actor)
	return actor, ok
}

func RoleFromContext(c *gin.Context) (string, bool) {
	actor, ok := ActorFromContext(c)
	if !ok {
		return "", false
	}
	return actor.Role, actor.Role != ""
}
