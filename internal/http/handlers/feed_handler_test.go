package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/moodlog/go-mood-backend/internal/domain"
	"github.com/moodlog/go-mood-backend/internal/services"
)

func decodeFeed(t *testing.T, body []byte) FeedResponse {
	t.Helper()
	var out FeedResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode feed: %v", err)
	}
	return out
}

func TestFeed_ExcludesViewerAndPrivate(t *testing.T) {
	env := newTestEnv(t)

	env.createRecord(t, "author", 4, "shared entry", "public")
	env.createRecord(t, "author", 2, "kept private", "private")
	env.createRecord(t, "viewer", 5, "viewer's own public", "public")

	w := env.do(t, "viewer", http.MethodGet, "/feed", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	feed := decodeFeed(t, w.Body.Bytes())
	if len(feed.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(feed.Items))
	}
	if feed.Items[0].Content != "shared entry" {
		t.Fatalf("unexpected item %q", feed.Items[0].Content)
	}
	if feed.Quota.Limit != 20 || feed.Quota.Used != 0 {
		t.Fatalf("unexpected quota %+v", feed.Quota)
	}
}

func TestFeed_LimitParam(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 5; i++ {
		env.createRecord(t, "author", 3, "entry", "public")
		env.clk.Advance(time.Second)
	}

	w := env.do(t, "viewer", http.MethodGet, "/feed?limit=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if feed := decodeFeed(t, w.Body.Bytes()); len(feed.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(feed.Items))
	}
}

func TestMarkViewed_ReturnsQuotaState(t *testing.T) {
	env := newTestEnv(t)
	rec := env.createRecord(t, "author", 3, "entry", "public")
	id := rec["id"].(string)

	w := env.do(t, "viewer", http.MethodPost, "/feed/"+id+"/view", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	var st services.QuotaState
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Used != 1 || st.Remaining != 19 {
		t.Fatalf("quota after view = %+v", st)
	}

	// Re-viewing the same item changes nothing.
	w2 := env.do(t, "viewer", http.MethodPost, "/feed/"+id+"/view", nil)
	var st2 services.QuotaState
	if err := json.Unmarshal(w2.Body.Bytes(), &st2); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st2.Used != 1 {
		t.Fatalf("used after re-view = %d, want 1", st2.Used)
	}
}

func TestQuota_ResetEndpoint(t *testing.T) {
	env := newTestEnv(t)
	rec := env.createRecord(t, "author", 3, "entry", "public")
	id := rec["id"].(string)
	env.do(t, "viewer", http.MethodPost, "/feed/"+id+"/view", nil)

	if w := env.do(t, "viewer", http.MethodDelete, "/feed/quota", nil); w.Code != http.StatusNoContent {
		t.Fatalf("reset status = %d", w.Code)
	}

	w := env.do(t, "viewer", http.MethodGet, "/feed/quota", nil)
	var st services.QuotaState
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Used != 0 {
		t.Fatalf("used after reset = %d, want 0", st.Used)
	}
}

func TestEmpathy_EndToEnd(t *testing.T) {
	env := newTestEnv(t)
	rec := env.createRecord(t, "author", 3, "entry", "public")
	id := rec["id"].(string)

	if w := env.do(t, "viewer", http.MethodPut, "/feed/"+id+"/empathy", nil); w.Code != http.StatusNoContent {
		t.Fatalf("add empathy status = %d body %s", w.Code, w.Body.String())
	}
	// Repeat is a silent success.
	if w := env.do(t, "viewer", http.MethodPut, "/feed/"+id+"/empathy", nil); w.Code != http.StatusNoContent {
		t.Fatalf("repeat add status = %d", w.Code)
	}

	w := env.do(t, "viewer", http.MethodGet, "/feed", nil)
	feed := decodeFeed(t, w.Body.Bytes())
	if len(feed.Items) != 1 || feed.Items[0].HeartsCount != 1 || !feed.Items[0].HasEmpathized {
		t.Fatalf("unexpected feed after empathy: %+v", feed.Items)
	}

	if w := env.do(t, "viewer", http.MethodDelete, "/feed/"+id+"/empathy", nil); w.Code != http.StatusNoContent {
		t.Fatalf("remove empathy status = %d", w.Code)
	}
	w2 := env.do(t, "viewer", http.MethodGet, "/feed", nil)
	feed2 := decodeFeed(t, w2.Body.Bytes())
	if feed2.Items[0].HeartsCount != 0 || feed2.Items[0].HasEmpathized {
		t.Fatalf("unexpected feed after removal: %+v", feed2.Items)
	}
}

func TestEmpathy_UnknownItem(t *testing.T) {
	env := newTestEnv(t)
	if w := env.do(t, "viewer", http.MethodPut, "/feed/nope/empathy", nil); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestSendMessage_WriteOnce(t *testing.T) {
	env := newTestEnv(t)
	rec := env.createRecord(t, "author", 1, "rough day", "public")
	id := rec["id"].(string)

	w := env.do(t, "viewer", http.MethodPost, "/feed/"+id+"/message", gin.H{"preset_id": "hug"})
	if w.Code != http.StatusNoContent {
		t.Fatalf("send status = %d body %s", w.Code, w.Body.String())
	}
	// A second preset from the same viewer is silently ignored.
	if w := env.do(t, "viewer", http.MethodPost, "/feed/"+id+"/message", gin.H{"preset_id": "sunny_day"}); w.Code != http.StatusNoContent {
		t.Fatalf("repeat send status = %d", w.Code)
	}

	wf := env.do(t, "viewer", http.MethodGet, "/feed", nil)
	feed := decodeFeed(t, wf.Body.Bytes())
	if feed.Items[0].MessagesCount != 1 || !feed.Items[0].HasSentMessage {
		t.Fatalf("unexpected feed after messages: %+v", feed.Items)
	}
}

func TestSendMessage_BadInput(t *testing.T) {
	env := newTestEnv(t)
	rec := env.createRecord(t, "author", 1, "entry", "public")
	id := rec["id"].(string)

	if w := env.do(t, "viewer", http.MethodPost, "/feed/"+id+"/message", gin.H{}); w.Code != http.StatusBadRequest {
		t.Fatalf("missing preset status = %d", w.Code)
	}
	w := env.do(t, "viewer", http.MethodPost, "/feed/"+id+"/message", gin.H{"preset_id": "bogus"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown preset status = %d body %s", w.Code, w.Body.String())
	}
}

func TestPresets_ReferenceSet(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, "viewer", http.MethodGet, "/presets", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var out struct {
		Presets []domain.MessagePreset `json:"presets"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Presets) != 5 {
		t.Fatalf("got %d presets, want 5", len(out.Presets))
	}
}
