package integration_test

import (
	"net/http"
	"testing"

	"github.com/geocoder89/libraryhub/internal/config"
)

func TestCatalogMutationsRequireAdmin(t *testing.T) {
	srv := setupRouter(t, config.StoreDriverMemory)
	r := srv.router

	adminToken := login(t, r, adminEmail, adminPassword)
	userToken := registerAndLogin(t, r, "reader@library.test", "secret1")

	w := doRequest(r, http.MethodPost, "/api/authors", `{"name":"Mary Shelley","birthYear":1797}`, withToken(adminToken))
	expectStatus(t, w, http.StatusCreated)
	var shelley authorResp
	mustReadJSON(t, w, &shelley)

	w = doRequest(r, http.MethodPost, "/api/books", `{"title":"Frankenstein","year":1818,"authorId":"`+shelley.ID+`"}`, withToken(adminToken))
	expectStatus(t, w, http.StatusCreated)
	var frankenstein bookResp
	mustReadJSON(t, w, &frankenstein)

	snapshot := func() string {
		t.Helper()
		w := doRequest(r, http.MethodGet, "/api/authors?includeBooks=true", "", withToken(adminToken))
		expectStatus(t, w, http.StatusOK)
		return w.Body.String()
	}
	before := snapshot()

	routes := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodPost, "/api/authors", `{"name":"Intruder","birthYear":1900}`},
		{http.MethodPut, "/api/authors/" + shelley.ID, `{"name":"Renamed"}`},
		{http.MethodDelete, "/api/authors/" + shelley.ID, ""},
		{http.MethodPost, "/api/books", `{"title":"Intruder","year":1900,"authorId":"` + shelley.ID + `"}`},
		{http.MethodPut, "/api/books/" + frankenstein.ID, `{"title":"Renamed"}`},
		{http.MethodDelete, "/api/books/" + frankenstein.ID, ""},
	}

	callers := []struct {
		name       string
		opts       []reqOpt
		wantStatus int
		wantError  string
	}{
		{"anonymous", nil, http.StatusUnauthorized, "MissingCredentials"},
		{"anonymous_text_plain", []reqOpt{withHeader("Content-Type", "text/plain")}, http.StatusUnauthorized, "MissingCredentials"},
		{"user", []reqOpt{withToken(userToken)}, http.StatusForbidden, "Forbidden"},
		{"user_text_plain", []reqOpt{withToken(userToken), withHeader("Content-Type", "text/plain")}, http.StatusForbidden, "Forbidden"},
	}

	for _, c := range callers {
		for _, rt := range routes {
			t.Run(c.name+"_"+rt.method+"_"+rt.path, func(t *testing.T) {
				w := doRequest(r, rt.method, rt.path, rt.body, c.opts...)
				expectError(t, w, c.wantStatus, c.wantError)
			})
		}
	}

	if after := snapshot(); after != before {
		t.Fatalf("catalog changed by rejected mutations:\nbefore=%s\nafter=%s", before, after)
	}
}

func TestAdminTextPlainIsUnsupported(t *testing.T) {
	srv := setupRouter(t, config.StoreDriverMemory)
	token := login(t, srv.router, adminEmail, adminPassword)

	w := doRequest(srv.router, http.MethodPost, "/api/authors", `{"name":"Poe","birthYear":1809}`,
		withToken(token), withHeader("Content-Type", "text/plain"))
	expectError(t, w, http.StatusUnsupportedMediaType, "UnsupportedMediaType")
}
