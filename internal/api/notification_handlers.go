package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListNotifications returns the user's inbox with the unread count
func (h *Handlers) ListNotifications(c *gin.Context) {
	user := currentUser(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	unreadOnly := c.Query("unread") == "true"

	list, err := h.notifier.List(c.Request.Context(), user.ID, unreadOnly, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	unread, err := h.notifier.UnreadCount(c.Request.Context(), user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    list,
		"unread":  unread,
	})
}

// MarkNotificationRead marks one of the user's notifications read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	n, err := h.notifier.MarkRead(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    n,
	})
}

// MarkAllNotificationsRead clears the user's unread notifications
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	updated, err := h.notifier.MarkAllRead(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"updated": updated,
	})
}
