package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inboxiq/internal/model"
)

// NotificationQueries is the slice of the notification repository the
// HTTP layer needs.
type NotificationQueries interface {
	ListByUser(ctx context.Context, userID int, unreadOnly bool, limit int) ([]model.Notification, error)
	MarkRead(ctx context.Context, id, userID int) (bool, error)
	MarkAllRead(ctx context.Context, userID int) error
	Delete(ctx context.Context, id, userID int) (bool, error)
}

type NotificationHandler struct {
	notifications NotificationQueries
	logger        *zap.Logger
}

func NewNotificationHandler(notifications NotificationQueries, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		logger:        logger,
	}
}

// List handles GET /notifications with optional unread filter and limit.
func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.GetInt("user_id")
	unreadOnly := c.Query("unread") == "true"

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	list, err := h.notifications.ListByUser(c.Request.Context(), userID, unreadOnly, limit)
	if err != nil {
		h.logger.Error("List notifications failed", zap.Int("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list notifications"})
		return
	}

	c.JSON(http.StatusOK, list)
}

// MarkRead handles PUT|PATCH /notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := c.GetInt("user_id")
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	ok, err := h.notifications.MarkRead(c.Request.Context(), id, userID)
	if err != nil {
		h.logger.Error("Mark notification read failed", zap.Int("user_id", userID), zap.Int("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ReadAll handles PUT|PATCH /notifications/read-all.
func (h *NotificationHandler) ReadAll(c *gin.Context) {
	userID := c.GetInt("user_id")

	if err := h.notifications.MarkAllRead(c.Request.Context(), userID); err != nil {
		h.logger.Error("Mark all notifications read failed", zap.Int("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete handles DELETE /notifications/:id.
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID := c.GetInt("user_id")
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	ok, err := h.notifications.Delete(c.Request.Context(), id, userID)
	if err != nil {
		h.logger.Error("Delete notification failed", zap.Int("user_id", userID), zap.Int("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete notification"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
