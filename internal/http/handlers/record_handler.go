// Record HTTP handlers.
//
// This file exposes REST endpoints for a user's own mood records:
//   - POST   /records        (create)
//   - GET    /records        (list mine, newest first)
//   - GET    /records/{id}   (fetch one)
//   - PUT    /records/{id}   (edit content and/or visibility)
//   - DELETE /records/{id}   (permanent delete)
//
// Handlers are transport-thin: they validate input shape, call application
// services, and translate results into HTTP responses. Business rules
// (content bounds, the visibility state machine, lazy publishing) live in
// the services package.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/moodlog/go-mood-backend/internal/domain"
	"github.com/moodlog/go-mood-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// RecordService defines record lifecycle operations consumed by HTTP
// handlers. Implementations must honor the provided context.
type RecordService interface {
	// Create inserts a new record for userID.
	Create(ctx context.Context, userID string, emotionLevel int, content string, visibility domain.Visibility) (*domain.Record, error)
	// Get fetches one of userID's records.
	Get(ctx context.Context, userID, id string) (*domain.Record, error)
	// ListMine returns userID's records, newest first.
	ListMine(ctx context.Context, userID string) ([]domain.Record, error)
	// Update applies a partial update to one of userID's records.
	Update(ctx context.Context, userID, id string, upd services.RecordUpdate) error
	// Delete permanently removes one of userID's records.
	Delete(ctx context.Context, userID, id string) error
}

// userIDKey is the Gin context key under which upstream middleware stores
// the authenticated identity.
const userIDKey = "userID"

// userID extracts the authenticated user id from the Gin context (set by the
// identity middleware). Handlers behind RequireIdentity can rely on it being
// non-empty.
func userID(c *gin.Context) string {
	if v, ok := c.Get(userIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

//
// DTOs
//

// CreateRecordRequest is the JSON payload for creating a record.
type CreateRecordRequest struct {
	// EmotionLevel is the weather score, 1 (stormy) to 5 (sunny).
	EmotionLevel int `json:"emotion_level" binding:"required"`
	// Content is the entry text; trimmed and bounded server-side.
	Content string `json:"content" binding:"required"`
	// Visibility is private, scheduled, or public. Defaults to private.
	Visibility string `json:"visibility"`
}

// UpdateRecordRequest is the JSON payload for editing a record. Both fields
// are optional; absent fields are left unchanged. The emotion level is
// immutable and deliberately not accepted here.
type UpdateRecordRequest struct {
	Content    *string `json:"content,omitempty"`
	Visibility *string `json:"visibility,omitempty"`
}

//
// Endpoints
//

// CreateRecord handles POST /records.
func (h *Handlers) CreateRecord(c *gin.Context) {
	var req CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}
	vis := domain.VisibilityPrivate
	if s := strings.TrimSpace(req.Visibility); s != "" {
		vis = domain.Visibility(s)
	}

	rec, err := h.recordSvc.Create(c.Request.Context(), userID(c), req.EmotionLevel, req.Content, vis)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusCreated, rec)
}

// ListMyRecords handles GET /records.
func (h *Handlers) ListMyRecords(c *gin.Context) {
	out, err := h.recordSvc.ListMine(c.Request.Context(), userID(c))
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"records": out})
}

// GetRecord handles GET /records/:id.
func (h *Handlers) GetRecord(c *gin.Context) {
	rec, err := h.recordSvc.Get(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, rec)
}

// UpdateRecord handles PUT /records/:id.
func (h *Handlers) UpdateRecord(c *gin.Context) {
	var req UpdateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}
	if req.Content == nil && req.Visibility == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "nothing to update")
		return
	}

	upd := services.RecordUpdate{Content: req.Content}
	if req.Visibility != nil {
		v := domain.Visibility(*req.Visibility)
		upd.Visibility = &v
	}
	if err := h.recordSvc.Update(c.Request.Context(), userID(c), c.Param("id"), upd); err != nil {
		failFromService(c, err)
		return
	}
	noContent(c)
}

// DeleteRecord handles DELETE /records/:id. Destructive; there is no undo.
func (h *Handlers) DeleteRecord(c *gin.Context) {
	if err := h.recordSvc.Delete(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		failFromService(c, err)
		return
	}
	noContent(c)
}
