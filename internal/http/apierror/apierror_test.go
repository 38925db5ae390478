package apierror_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/libraryhub/internal/actorctx"
	"github.com/geocoder89/libraryhub/internal/http/apierror"
	"github.com/gin-gonic/gin"
)

func TestAbortWritesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/api/things", func(ctx *gin.Context) {
		ctx.Request = ctx.Request.WithContext(actorctx.WithRequestID(ctx.Request.Context(), "req-42"))
		apierror.Validation(ctx, []string{`"a" is required`})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/things", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}

	var body struct {
		Error     string   `json:"error"`
		Message   []string `json:"message"`
		Timestamp string   `json:"timestamp"`
		Path      string   `json:"path"`
		RequestID string   `json:"requestId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v body=%s", err, w.Body.String())
	}

	if body.Error != apierror.ValidationError || body.Path != "/api/things" || body.RequestID != "req-42" {
		t.Fatalf("unexpected envelope: %+v", body)
	}
	if len(body.Message) != 1 || body.Message[0] != `"a" is required` {
		t.Fatalf("message = %#v", body.Message)
	}
	if _, err := time.Parse(time.RFC3339, body.Timestamp); err != nil {
		t.Fatalf("timestamp %q: %v", body.Timestamp, err)
	}
}
