package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newIdentityRouter() (*gin.Engine, *string) {
	r := gin.New()
	r.Use(RequestID(), Identity())
	var captured string
	r.GET("/me", func(c *gin.Context) {
		v, _ := c.Get("userID")
		captured, _ = v.(string)
		c.Status(http.StatusOK)
	})
	return r, &captured
}

func TestIdentity_AcceptsHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r, captured := newIdentityRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("X-User-ID", "  device-42  ")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if *captured != "device-42" {
		t.Fatalf("expected trimmed identity, got %q", *captured)
	}
}

func TestIdentity_RejectsMissingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r, _ := newIdentityRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if !strings.Contains(w.Body.String(), "missing_identity") {
		t.Fatalf("expected missing_identity code, body %q", w.Body.String())
	}
}

func TestIdentity_RejectsOversizedHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r, _ := newIdentityRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("X-User-ID", strings.Repeat("a", maxIdentityLen+1))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
