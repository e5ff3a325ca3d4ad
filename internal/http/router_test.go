package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/moodlog/go-mood-backend/internal/clock"
	"github.com/moodlog/go-mood-backend/internal/config"
	"github.com/moodlog/go-mood-backend/internal/repo"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := config.Config{
		APIBasePath:    "/api/v1",
		Timezone:       "UTC",
		DailyFeedLimit: 20,
		ContentMaxLen:  500,
		RateRPS:        1000,
		RateBurst:      1000,
		OTEL:           config.OTELConfig{ServiceName: "test"},
	}

	r := gin.New()
	if err := RegisterRoutes(r, db, clock.System{}, cfg); err != nil {
		t.Fatalf("register routes: %v", err)
	}
	return r
}

func TestRouter_Healthz(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "http_requests_total") {
		t.Fatalf("metrics output missing expected series")
	}
}

func TestRouter_NoRouteEnvelope(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/does-not-exist", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["code"] != "not_found" {
		t.Fatalf("code = %v", body["code"])
	}
}

func TestRouter_NoMethodEnvelope(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/healthz", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "method_not_allowed") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestRouter_APIRequiresIdentity(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/records", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if !strings.Contains(w.Body.String(), "missing_identity") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestRouter_EndToEndRecordFlow(t *testing.T) {
	r := newTestRouter(t)

	// Create a record as one user, then read it back.
	body := strings.NewReader(`{"emotion_level":4,"content":"rode the first train home","visibility":"public"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/records", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "rider")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d body %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing request id header")
	}

	var rec map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	id, _ := rec["id"].(string)
	if id == "" {
		t.Fatalf("missing id in %v", rec)
	}

	// Another user sees it in the feed.
	req2 := httptest.NewRequest(http.MethodGet, "/api/v1/feed", nil)
	req2.Header.Set("X-User-ID", "other")
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req2)
	if w2.Code != http.StatusOK {
		t.Fatalf("feed status = %d body %s", w2.Code, w2.Body.String())
	}
	if !strings.Contains(w2.Body.String(), id) {
		t.Fatalf("feed does not contain the new record")
	}
}

func TestGroupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if g := groupWithPrefix(r, ""); g.BasePath() != "/" {
		t.Fatalf("empty prefix base = %q", g.BasePath())
	}
	if g := groupWithPrefix(r, "/"); g.BasePath() != "/" {
		t.Fatalf("slash prefix base = %q", g.BasePath())
	}
	if g := groupWithPrefix(r, "/api/v1"); g.BasePath() != "/api/v1" {
		t.Fatalf("prefix base = %q", g.BasePath())
	}
}
