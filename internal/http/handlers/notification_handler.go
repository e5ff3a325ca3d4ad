// Notification HTTP handlers.
//
// This file exposes the notification inbox:
//   - GET  /notifications               (list, newest first)
//   - GET  /notifications/unread-count  (badge count)
//   - POST /notifications/{id}/read     (mark one read, idempotent)
//   - POST /notifications/read-all      (mark everything read)
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moodlog/go-mood-backend/internal/domain"
	"github.com/moodlog/go-mood-backend/internal/utils"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// NotificationService defines the inbox operations consumed by HTTP
// handlers.
type NotificationService interface {
	// List returns the user's notifications, newest first.
	List(ctx context.Context, userID string) ([]domain.Notification, error)
	// UnreadCount returns the cached unread count.
	UnreadCount(ctx context.Context, userID string) (int, error)
	// MarkRead marks one notification read (idempotent).
	MarkRead(ctx context.Context, userID, id string) error
	// MarkAllRead marks every notification read atomically.
	MarkAllRead(ctx context.Context, userID string) error
}

// ListNotifications handles GET /notifications. An optional ?limit query
// parameter caps the page size.
func (h *Handlers) ListNotifications(c *gin.Context) {
	out, err := h.notifSvc.List(c.Request.Context(), userID(c))
	if err != nil {
		failFromService(c, err)
		return
	}
	limit := utils.ClampLimit(utils.AtoiDefault(c.Query("limit"), defaultListLimit), defaultListLimit, maxListLimit)
	if len(out) > limit {
		out = out[:limit]
	}
	ok(c, http.StatusOK, gin.H{"notifications": out})
}

// UnreadCount handles GET /notifications/unread-count.
func (h *Handlers) UnreadCount(c *gin.Context) {
	n, err := h.notifSvc.UnreadCount(c.Request.Context(), userID(c))
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"unread_count": n})
}

// MarkNotificationRead handles POST /notifications/:id/read.
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	if err := h.notifSvc.MarkRead(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		failFromService(c, err)
		return
	}
	noContent(c)
}

// MarkAllNotificationsRead handles POST /notifications/read-all.
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	if err := h.notifSvc.MarkAllRead(c.Request.Context(), userID(c)); err != nil {
		failFromService(c, err)
		return
	}
	noContent(c)
}
