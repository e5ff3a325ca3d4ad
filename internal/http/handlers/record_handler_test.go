package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/moodlog/go-mood-backend/internal/domain"
	"github.com/moodlog/go-mood-backend/internal/services"
)

// ---------- shared test env ----------

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	clk    *fakeClock
}

// newTestEnv builds a Gin engine with the real service stack over a unique
// in-memory database. A header shim stands in for the identity middleware.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := db.AutoMigrate(
		&domain.Record{}, &domain.EmpathyMark{}, &domain.MessageSend{},
		&domain.FeedView{}, &domain.Notification{}, &domain.NotificationCounter{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	clk := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}

	notifSvc := services.NewNotificationService(db)
	recordSvc := services.NewRecordService(db, clk, 500, 24*time.Hour)
	quotaSvc := services.NewQuotaService(db, clk, time.UTC, 20)
	ledgerSvc := services.NewLedgerService(db, notifSvc)
	h := New(recordSvc, recordSvc, quotaSvc, ledgerSvc, notifSvc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if uid := c.GetHeader("X-User-ID"); uid != "" {
			c.Set(userIDKey, uid)
		}
		c.Next()
	})

	r.POST("/records", h.CreateRecord)
	r.GET("/records", h.ListMyRecords)
	r.GET("/records/:id", h.GetRecord)
	r.PUT("/records/:id", h.UpdateRecord)
	r.DELETE("/records/:id", h.DeleteRecord)
	r.GET("/feed", h.Feed)
	r.POST("/feed/:id/view", h.MarkViewed)
	r.GET("/feed/quota", h.Quota)
	r.DELETE("/feed/quota", h.ResetQuota)
	r.PUT("/feed/:id/empathy", h.AddEmpathy)
	r.DELETE("/feed/:id/empathy", h.RemoveEmpathy)
	r.POST("/feed/:id/message", h.SendMessage)
	r.GET("/presets", h.Presets)
	r.GET("/notifications", h.ListNotifications)
	r.GET("/notifications/unread-count", h.UnreadCount)
	r.POST("/notifications/:id/read", h.MarkNotificationRead)
	r.POST("/notifications/read-all", h.MarkAllNotificationsRead)

	return &testEnv{router: r, db: db, clk: clk}
}

// do performs a request as the given user and returns the recorder.
func (e *testEnv) do(t *testing.T, user, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// createRecord creates a record over HTTP and returns its decoded form.
func (e *testEnv) createRecord(t *testing.T, user string, level int, content, visibility string) map[string]any {
	t.Helper()
	w := e.do(t, user, http.MethodPost, "/records", gin.H{
		"emotion_level": level,
		"content":       content,
		"visibility":    visibility,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create record: status %d body %s", w.Code, w.Body.String())
	}
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return out
}

// ---------- record endpoints ----------

func TestCreateRecord_Defaults(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, "alice", http.MethodPost, "/records", gin.H{
		"emotion_level": 4,
		"content":       "walked home in warm rain",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	var rec map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec["visibility"] != "private" {
		t.Fatalf("default visibility = %v, want private", rec["visibility"])
	}
	if rec["id"] == "" || rec["id"] == nil {
		t.Fatalf("missing id in %v", rec)
	}
}

func TestCreateRecord_ValidationErrors(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name string
		body gin.H
		want int
		code string
	}{
		{"missing body fields", gin.H{"content": "x"}, http.StatusBadRequest, "bad_request"},
		{"emotion out of range", gin.H{"emotion_level": 9, "content": "x"}, http.StatusUnprocessableEntity, "validation_failed"},
		{"blank content", gin.H{"emotion_level": 3, "content": "   "}, http.StatusUnprocessableEntity, "validation_failed"},
		{"unknown visibility", gin.H{"emotion_level": 3, "content": "x", "visibility": "secret"}, http.StatusUnprocessableEntity, "validation_failed"},
	}
	for _, tc := range cases {
		w := env.do(t, "alice", http.MethodPost, "/records", tc.body)
		if w.Code != tc.want {
			t.Fatalf("%s: status = %d, want %d (%s)", tc.name, w.Code, tc.want, w.Body.String())
		}
		var er ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		if er.Code != tc.code {
			t.Fatalf("%s: code = %q, want %q", tc.name, er.Code, tc.code)
		}
	}
}

func TestGetRecord_OwnerScoped(t *testing.T) {
	env := newTestEnv(t)
	rec := env.createRecord(t, "alice", 3, "quiet tuesday", "public")
	id := rec["id"].(string)

	if w := env.do(t, "alice", http.MethodGet, "/records/"+id, nil); w.Code != http.StatusOK {
		t.Fatalf("owner get status = %d", w.Code)
	}
	if w := env.do(t, "bob", http.MethodGet, "/records/"+id, nil); w.Code != http.StatusNotFound {
		t.Fatalf("foreign get status = %d, want 404", w.Code)
	}
}

func TestUpdateRecord_TransitionConflict(t *testing.T) {
	env := newTestEnv(t)
	rec := env.createRecord(t, "alice", 3, "entry", "public")
	id := rec["id"].(string)

	w := env.do(t, "alice", http.MethodPut, "/records/"+id, gin.H{"visibility": "scheduled"})
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 (%s)", w.Code, w.Body.String())
	}
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if er.Code != "invalid_transition" {
		t.Fatalf("code = %q", er.Code)
	}
}

func TestUpdateRecord_EmptyBodyRejected(t *testing.T) {
	env := newTestEnv(t)
	rec := env.createRecord(t, "alice", 3, "entry", "private")
	id := rec["id"].(string)

	w := env.do(t, "alice", http.MethodPut, "/records/"+id, gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestDeleteRecord(t *testing.T) {
	env := newTestEnv(t)
	rec := env.createRecord(t, "alice", 3, "to be removed", "private")
	id := rec["id"].(string)

	if w := env.do(t, "alice", http.MethodDelete, "/records/"+id, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	if w := env.do(t, "alice", http.MethodGet, "/records/"+id, nil); w.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", w.Code)
	}
	if w := env.do(t, "alice", http.MethodDelete, "/records/"+id, nil); w.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", w.Code)
	}
}

func TestListMyRecords_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	env.createRecord(t, "alice", 2, "first", "private")
	env.clk.Advance(time.Minute)
	env.createRecord(t, "alice", 5, "second", "private")
	env.createRecord(t, "bob", 1, "not hers", "private")

	w := env.do(t, "alice", http.MethodGet, "/records", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var out struct {
		Records []domain.Record `json:"records"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(out.Records))
	}
	if out.Records[0].Content != "second" || out.Records[1].Content != "first" {
		t.Fatalf("unexpected order: %q then %q", out.Records[0].Content, out.Records[1].Content)
	}
}
