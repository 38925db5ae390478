package http

import (
	"log/slog"
	"net/http"

	"github.com/geocoder89/libraryhub/internal/auth"
	"github.com/geocoder89/libraryhub/internal/cache"
	"github.com/geocoder89/libraryhub/internal/config"
	"github.com/geocoder89/libraryhub/internal/domain/user"
	"github.com/geocoder89/libraryhub/internal/http/apierror"
	"github.com/geocoder89/libraryhub/internal/http/handlers"
	"github.com/geocoder89/libraryhub/internal/http/middlewares"
	"github.com/geocoder89/libraryhub/internal/observability"
	"github.com/geocoder89/libraryhub/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// APIPrefixes are listed in the body of unmatched-route responses.
var APIPrefixes = []string{"/api/auth", "/api/authors", "/api/books"}

// Deps is everything the router needs; the store behind Users, Authors and
// Books is chosen by the caller.
type Deps struct {
	Log    *slog.Logger
	Config config.Config

	Users   handlers.UserStore
	Authors handlers.AuthorsRepository
	Books   handlers.BooksRepository
	Tokens  *auth.Manager

	// optional
	Cache    cache.Cache
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
	Checks   map[string]handlers.Check

	// ShuttingDown turns /readyz into 503 while the server drains.
	ShuttingDown func() bool
}

func NewRouter(d Deps) *gin.Engine {
	if d.Config.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	log := d.Log
	if log == nil {
		log = slog.Default()
	}

	r := gin.New()
	r.HandleMethodNotAllowed = false

	// middleware
	r.Use(middlewares.Recovery(log))
	r.Use(middlewares.RequestID())
	if d.Config.OTelEndpoint != "" {
		r.Use(otelgin.Middleware(d.Config.ServiceName))
	}
	r.Use(middlewares.RequestLogger(log))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.ErrorHandler(log))
	r.Use(middlewares.SecurityHeaders(d.Config.Env == "prod"))
	r.Use(middlewares.CORSMiddleware([]string{d.Config.ClientURL}))

	// health
	health := handlers.NewHealthHandler(d.Checks, d.ShuttingDown)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	gate := middlewares.NewAuthMiddleware(d.Tokens, d.Prom)
	rc := handlers.NewResponseCache(d.Cache, d.Prom, log)

	api := r.Group("/api")

	// body gates run after auth and roles so callers see 401/403 first
	withBody := func(schema validation.Schema, h gin.HandlerFunc) []gin.HandlerFunc {
		return []gin.HandlerFunc{
			middlewares.RequireJSON(),
			middlewares.MaxBodyBytes(d.Config.MaxBodyBytes),
			middlewares.Validate(schema),
			h,
		}
	}

	authHandler := handlers.NewAuthHandler(d.Users, d.Tokens)

	authGroup := api.Group("/auth")
	if d.Config.AuthRateLimitPerMinute > 0 {
		limiter := middlewares.NewRateLimiter(d.Config.AuthRateLimitPerMinute)
		authGroup.Use(limiter.Middleware(middlewares.KeyByIP))
	}
	{
		authGroup.POST("/register", withBody(validation.Register, authHandler.Register)...)
		authGroup.POST("/login", withBody(validation.Login, authHandler.Login)...)
	}

	readers := []gin.HandlerFunc{gate.RequireAuth(), gate.RequireRoles(user.RoleUser, user.RoleAdmin)}
	admins := []gin.HandlerFunc{gate.RequireAuth(), gate.RequireRoles(user.RoleAdmin)}

	authors := handlers.NewAuthorsHandler(d.Authors, rc)
	authorsGroup := api.Group("/authors")
	{
		authorsGroup.GET("", chain(readers, authors.List)...)
		authorsGroup.GET("/:id", chain(readers, authors.GetByID)...)
		authorsGroup.POST("", chain(admins, withBody(validation.AuthorCreate, authors.Create)...)...)
		authorsGroup.PUT("/:id", chain(admins, withBody(validation.AuthorUpdate, authors.Update)...)...)
		authorsGroup.DELETE("/:id", chain(admins, authors.Delete)...)
	}

	books := handlers.NewBooksHandler(d.Books, rc)
	booksGroup := api.Group("/books")
	{
		booksGroup.GET("", chain(readers, books.List)...)
		booksGroup.GET("/:id", chain(readers, books.GetByID)...)
		booksGroup.POST("", chain(admins, withBody(validation.BookCreate, books.Create)...)...)
		booksGroup.PUT("/:id", chain(admins, withBody(validation.BookUpdate, books.Update)...)...)
		booksGroup.DELETE("/:id", chain(admins, books.Delete)...)
	}

	r.NoRoute(func(ctx *gin.Context) {
		env := apierror.New(ctx, apierror.NotFound, "Route "+ctx.Request.Method+" "+ctx.Request.URL.Path+" not found")
		env.Available = APIPrefixes
		ctx.AbortWithStatusJSON(http.StatusNotFound, env)
	})

	return r
}

func chain(gates []gin.HandlerFunc, handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(gates)+len(handlers))
	out = append(out, gates...)
	return append(out, handlers...)
}
