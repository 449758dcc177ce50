package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rideshare-backend/internal/model"
	"rideshare-backend/internal/mw"
	"rideshare-backend/internal/store"
)

type putSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required,url"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
	DeviceID string `json:"device_id" binding:"max=128"`
}

// PutSubscription registers or replaces the push subscription of one of the caller's devices.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	subscription := model.PushSubscription{
		UserID:   mw.ActorID(c),
		DeviceID: req.DeviceID,
		Endpoint: req.Endpoint,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}
	if err := h.store.UpsertSubscription(c.Request.Context(), &subscription); err != nil {
		if errors.Is(err, store.ErrEndpointTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "endpoint is registered to another user"})
			return
		}
		h.log.Errorw("failed to save subscription", "user_id", subscription.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save subscription"})
		return
	}

	c.JSON(http.StatusCreated, subscription)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription removes one of the caller's subscriptions by endpoint.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	removed, err := h.store.DeleteSubscriptionByEndpoint(c.Request.Context(), mw.ActorID(c), req.Endpoint)
	if err != nil {
		h.log.Errorw("failed to delete subscription", "user_id", mw.ActorID(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete subscription"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "subscription not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

// GetSubscriptions lists the caller's enabled subscriptions.
func (h *Handler) GetSubscriptions(c *gin.Context) {
	subs, err := h.store.ListEnabledSubscriptions(c.Request.Context(), mw.ActorID(c))
	if err != nil {
		h.log.Errorw("failed to list subscriptions", "user_id", mw.ActorID(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve subscriptions"})
		return
	}
	c.JSON(http.StatusOK, subs)
}
