package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"rideshare-backend/internal/model"
	"rideshare-backend/internal/mw"
	"rideshare-backend/internal/store"
)

// ListNotifications handles GET /api/notifications?type=&since=&limit=.
func (h *Handler) ListNotifications(c *gin.Context) {
	var filter store.ListFilter

	if raw := c.Query("type"); raw != "" {
		kind := model.NotificationType(raw)
		if !kind.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown notification type"})
			return
		}
		filter.Type = kind
	}

	if raw := c.Query("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'since' timestamp format. Use RFC3339."})
			return
		}
		filter.Since = since
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		filter.Limit = limit
	}

	notifications, err := h.store.ListNotifications(c.Request.Context(), mw.ActorID(c), filter)
	if err != nil {
		h.log.Errorw("failed to list notifications", "user_id", mw.ActorID(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}
	c.JSON(http.StatusOK, notifications)
}
