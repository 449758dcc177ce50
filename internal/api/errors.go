package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rideshare-backend/internal/model"
	"rideshare-backend/internal/ride"
)

// writeRideError maps lifecycle errors onto HTTP responses. When the ride write
// committed but the notification record was lost, committed carries the new state.
func (h *Handler) writeRideError(c *gin.Context, err error, committed *model.Ride) {
	var (
		status int
		code   string
	)
	switch {
	case errors.Is(err, ride.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, ride.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, ride.ErrInvalidState):
		status, code = http.StatusConflict, "invalid_state"
	case errors.Is(err, ride.ErrConflict):
		status, code = http.StatusConflict, "conflict"
	case errors.Is(err, ride.ErrInvalidInput):
		status, code = http.StatusBadRequest, "invalid_input"
	default:
		h.log.Errorw("ride operation failed", "path", c.FullPath(), "ride_id", c.Param("id"), "error", err)
		body := gin.H{"error": "internal store failure", "code": "store_failure"}
		if committed != nil {
			body["ride"] = committed
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
		return
	}

	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "code": code})
}
