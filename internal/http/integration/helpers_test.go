package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/geocoder89/libraryhub/internal/auth"
	"github.com/geocoder89/libraryhub/internal/cache"
	"github.com/geocoder89/libraryhub/internal/config"
	"github.com/geocoder89/libraryhub/internal/db"
	apphttp "github.com/geocoder89/libraryhub/internal/http"
	"github.com/geocoder89/libraryhub/internal/http/handlers"
	"github.com/geocoder89/libraryhub/internal/observability"
	"github.com/geocoder89/libraryhub/internal/repo/memory"
	"github.com/geocoder89/libraryhub/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	adminEmail    = "admin@library.test"
	adminPassword = "admin123"
)

func testConfig() config.Config {
	return config.Config{
		Env:                    "test",
		StoreDriver:            config.StoreDriverMemory,
		JWTSecret:              "test-secret-key",
		JWTTTLMinutes:          120,
		AdminEmail:             adminEmail,
		AdminPassword:          adminPassword,
		ClientURL:              "http://localhost:5173",
		AuthRateLimitPerMinute: 0,
		MaxBodyBytes:           1 << 20,
		ServiceName:            "libraryhub-test",
	}
}

type testServer struct {
	router http.Handler
	cache  *cache.Memory
}

// setupRouter builds the full router on the memory store, or on Postgres when
// driver is "postgres" and TEST_DB_DSN is set.
func setupRouter(t *testing.T, driver string) testServer {
	t.Helper()
	return setupRouterWith(t, driver, testConfig())
}

func setupRouterWith(t *testing.T, driver string, cfg config.Config) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := context.Background()

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	deps := apphttp.Deps{
		Log:      logger,
		Config:   cfg,
		Tokens:   auth.NewManager(cfg.Secret(), cfg.JWTTTL()),
		Prom:     prom,
		Gatherer: reg,
	}

	switch driver {
	case config.StoreDriverPostgres:
		dsn := os.Getenv("TEST_DB_DSN")
		if dsn == "" {
			t.Skip("TEST_DB_DSN not set")
		}
		pool, err := db.NewPool(ctx, dsn, 5)
		if err != nil {
			t.Fatalf("failed to create pgx pool: %v", err)
		}
		t.Cleanup(pool.Close)
		if err := db.Migrate(ctx, pool); err != nil {
			t.Fatalf("migrate: %v", err)
		}
		if _, err := pool.Exec(ctx, `TRUNCATE books, authors, users`); err != nil {
			t.Fatalf("failed to truncate tables: %v", err)
		}

		store := postgres.NewStore(pool, prom)
		deps.Users, deps.Authors, deps.Books = store.Users(), store.Authors(), store.Books()
		deps.Checks = map[string]handlers.Check{"postgres": store.Ping}
	default:
		store := memory.NewStore()
		deps.Users, deps.Authors, deps.Books = store.Users(), store.Authors(), store.Books()
		deps.Checks = map[string]handlers.Check{"store": store.Ping}
	}

	if err := db.EnsureAdminUser(ctx, deps.Users, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	mc := cache.NewMemory(time.Minute)
	deps.Cache = mc

	return testServer{router: apphttp.NewRouter(deps), cache: mc}
}

type reqOpt func(*http.Request)

func withToken(token string) reqOpt {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

func withHeader(k, v string) reqOpt {
	return func(r *http.Request) {
		r.Header.Set(k, v)
	}
}

func doRequest(router http.Handler, method, path, body string, opts ...reqOpt) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, o := range opts {
		o(req)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	err := json.Unmarshal(w.Body.Bytes(), out)
	if err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, want, w.Body.String())
	}
}

type errorBody struct {
	Error     string          `json:"error"`
	Message   json.RawMessage `json:"message"`
	Timestamp string          `json:"timestamp"`
	Path      string          `json:"path"`
	RequestID string          `json:"requestId"`
	Available []string        `json:"available"`
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, name string) errorBody {
	t.Helper()
	expectStatus(t, w, status)

	var body errorBody
	mustReadJSON(t, w, &body)
	if body.Error != name {
		t.Fatalf("error = %q, want %q, body=%s", body.Error, name, w.Body.String())
	}
	if body.Timestamp == "" || body.Path == "" || body.RequestID == "" {
		t.Fatalf("incomplete error envelope: %s", w.Body.String())
	}
	return body
}

func login(t *testing.T, router http.Handler, email, password string) string {
	t.Helper()

	w := doRequest(router, http.MethodPost, "/api/auth/login", `{"email":"`+email+`","password":"`+password+`"}`)
	expectStatus(t, w, http.StatusOK)

	var resp struct {
		Message string `json:"message"`
		Token   string `json:"token"`
	}
	mustReadJSON(t, w, &resp)
	if resp.Token == "" {
		t.Fatalf("login returned no token: %s", w.Body.String())
	}
	return resp.Token
}

func registerAndLogin(t *testing.T, router http.Handler, email, password string) string {
	t.Helper()

	w := doRequest(router, http.MethodPost, "/api/auth/register", `{"email":"`+email+`","password":"`+password+`"}`)
	expectStatus(t, w, http.StatusCreated)

	return login(t, router, email, password)
}
