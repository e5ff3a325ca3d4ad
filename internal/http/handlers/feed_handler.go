// Feed HTTP handlers.
//
// This file exposes the shared feed and its interaction endpoints:
//   - GET    /feed               (public entries by others, viewer-decorated)
//   - POST   /feed/{id}/view     (consume a daily-quota slot)
//   - GET    /feed/quota         (today's remaining allowance)
//   - DELETE /feed/quota         (support tooling: reset today's usage)
//   - PUT    /feed/{id}/empathy  (place empathy)
//   - DELETE /feed/{id}/empathy  (withdraw empathy)
//   - POST   /feed/{id}/message  (send the one preset comfort message)
//   - GET    /presets            (the fixed preset reference set)
//
// The quota tracker and the interaction ledger are independent services;
// this file only composes their results for transport. Idempotent no-ops
// (re-view, re-empathize, re-send, capped view) all return success.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moodlog/go-mood-backend/internal/domain"
	"github.com/moodlog/go-mood-backend/internal/repo"
	"github.com/moodlog/go-mood-backend/internal/services"
	"github.com/moodlog/go-mood-backend/internal/utils"
)

// FeedReader lists publicly readable records for feed assembly.
type FeedReader interface {
	// ListPublic returns effective-public records, newest first, excluding
	// the given author.
	ListPublic(ctx context.Context, excludeUserID string) ([]domain.Record, error)
}

// QuotaService defines the daily viewing-cap operations consumed by HTTP
// handlers.
type QuotaService interface {
	// State returns today's quota snapshot for the user.
	State(ctx context.Context, userID string) (services.QuotaState, error)
	// MarkViewed records that the user consumed a feed item today.
	MarkViewed(ctx context.Context, userID, itemID string) error
	// ResetToday clears today's usage (support tooling).
	ResetToday(ctx context.Context, userID string) error
}

// LedgerService defines the feed interaction operations consumed by HTTP
// handlers.
type LedgerService interface {
	// AddEmpathy places the viewer's empathy on an item.
	AddEmpathy(ctx context.Context, userID, recordID string) error
	// RemoveEmpathy withdraws the viewer's empathy from an item.
	RemoveEmpathy(ctx context.Context, userID, recordID string) error
	// SendMessage delivers the viewer's one preset message to an item.
	SendMessage(ctx context.Context, userID, recordID, presetID string) error
	// Flags bulk-loads the viewer's per-item ledger flags.
	Flags(ctx context.Context, userID string, recordIDs []string) (map[string]repo.InteractionFlags, error)
}

// SendMessageRequest is the JSON payload for sending a preset message.
type SendMessageRequest struct {
	PresetID string `json:"preset_id" binding:"required"`
}

// FeedResponse wraps the decorated feed page and the viewer's quota.
type FeedResponse struct {
	Items []domain.FeedItem   `json:"items"`
	Quota services.QuotaState `json:"quota"`
}

// Feed handles GET /feed. It returns every effective-public record authored
// by someone else, newest first, decorated with the viewer's empathy and
// message flags, plus the current quota snapshot so the client knows how
// many items it may still reveal.
func (h *Handlers) Feed(c *gin.Context) {
	ctx := c.Request.Context()
	viewer := userID(c)

	records, err := h.feedReader.ListPublic(ctx, viewer)
	if err != nil {
		failFromService(c, err)
		return
	}
	limit := utils.ClampLimit(utils.AtoiDefault(c.Query("limit"), defaultListLimit), defaultListLimit, maxListLimit)
	if len(records) > limit {
		records = records[:limit]
	}
	ids := make([]string, 0, len(records))
	for i := range records {
		ids = append(ids, records[i].ID)
	}
	flags, err := h.ledgerSvc.Flags(ctx, viewer, ids)
	if err != nil {
		failFromService(c, err)
		return
	}
	quota, err := h.quotaSvc.State(ctx, viewer)
	if err != nil {
		failFromService(c, err)
		return
	}

	items := make([]domain.FeedItem, 0, len(records))
	for i := range records {
		r := &records[i]
		f := flags[r.ID]
		items = append(items, domain.FeedItem{
			ID:             r.ID,
			EmotionLevel:   r.EmotionLevel,
			Content:        r.Content,
			HeartsCount:    r.HeartsCount,
			MessagesCount:  r.MessagesCount,
			HasEmpathized:  f.HasEmpathized,
			HasSentMessage: f.HasSentMessage,
			CreatedAt:      r.CreatedAt,
		})
	}
	ok(c, http.StatusOK, FeedResponse{Items: items, Quota: quota})
}

// MarkViewed handles POST /feed/:id/view. Re-viewing an item or viewing
// past the cap are successes that change nothing.
func (h *Handlers) MarkViewed(c *gin.Context) {
	if err := h.quotaSvc.MarkViewed(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		failFromService(c, err)
		return
	}
	st, err := h.quotaSvc.State(c.Request.Context(), userID(c))
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, st)
}

// Quota handles GET /feed/quota.
func (h *Handlers) Quota(c *gin.Context) {
	st, err := h.quotaSvc.State(c.Request.Context(), userID(c))
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, st)
}

// ResetQuota handles DELETE /feed/quota. Support tooling only.
func (h *Handlers) ResetQuota(c *gin.Context) {
	if err := h.quotaSvc.ResetToday(c.Request.Context(), userID(c)); err != nil {
		failFromService(c, err)
		return
	}
	noContent(c)
}

// AddEmpathy handles PUT /feed/:id/empathy.
func (h *Handlers) AddEmpathy(c *gin.Context) {
	if err := h.ledgerSvc.AddEmpathy(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		failFromService(c, err)
		return
	}
	noContent(c)
}

// RemoveEmpathy handles DELETE /feed/:id/empathy.
func (h *Handlers) RemoveEmpathy(c *gin.Context) {
	if err := h.ledgerSvc.RemoveEmpathy(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		failFromService(c, err)
		return
	}
	noContent(c)
}

// SendMessage handles POST /feed/:id/message.
func (h *Handlers) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}
	if err := h.ledgerSvc.SendMessage(c.Request.Context(), userID(c), c.Param("id"), req.PresetID); err != nil {
		failFromService(c, err)
		return
	}
	noContent(c)
}

// Presets handles GET /presets. Pure reference data.
func (h *Handlers) Presets(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{"presets": domain.MessagePresets()})
}
