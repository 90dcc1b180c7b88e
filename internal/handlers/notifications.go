package handlers

import (
	"net/http"

	"github.com/enlapet/backend/internal/logger"
	"github.com/enlapet/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// GetNotifications returns the current user's notifications, newest first
// GET /api/v1/notifications
func (h *Handlers) GetNotifications(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	limit := util.ClampPageSize(util.ParseInt(c.Query("limit"), 20), 20, 100)
	offset := util.ParseInt(c.Query("offset"), 0)

	notifs, err := h.emitter.ListForRecipient(c.Request.Context(), userID, limit, offset)
	if err != nil {
		logger.ErrorWithFields("Notifications lookup failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "notifications_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifs,
		"meta":          gin.H{"limit": limit, "offset": offset, "count": len(notifs)},
	})
}

// GetNotificationCounts returns just the unread count for badge display
// GET /api/v1/notifications/counts
func (h *Handlers) GetNotificationCounts(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	unread, err := h.emitter.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		logger.ErrorWithFields("Notification counts lookup failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "notification_counts_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": unread})
}

// MarkNotificationsRead flags all the user's notifications as read
// POST /api/v1/notifications/read
func (h *Handlers) MarkNotificationsRead(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.emitter.MarkAllRead(c.Request.Context(), userID); err != nil {
		logger.ErrorWithFields("Mark notifications read failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "mark_read_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"read": true})
}
