package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rideshare-backend/internal/model"
	"rideshare-backend/internal/mw"
)

type rideDetailsRequest struct {
	Origin      string    `json:"origin" binding:"required"`
	Destination string    `json:"destination" binding:"required"`
	DepartAt    time.Time `json:"depart_at" binding:"required"`
	Seats       int       `json:"seats" binding:"required,min=1"`
	Note        string    `json:"note" binding:"max=1024"`
}

func (r rideDetailsRequest) details() model.RideDetails {
	return model.RideDetails{
		Origin:      r.Origin,
		Destination: r.Destination,
		DepartAt:    r.DepartAt.UTC(),
		Seats:       r.Seats,
		Note:        r.Note,
	}
}

// CreateRide handles POST /api/rides.
func (h *Handler) CreateRide(c *gin.Context) {
	var req rideDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "code": "invalid_input"})
		return
	}

	created, err := h.rides.Create(c.Request.Context(), mw.ActorID(c), req.details())
	if err != nil {
		h.writeRideError(c, err, nil)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetRide handles GET /api/rides/:id.
func (h *Handler) GetRide(c *gin.Context) {
	found, err := h.rides.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeRideError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, found)
}

// EditRide handles PUT /api/rides/:id.
func (h *Handler) EditRide(c *gin.Context) {
	var req rideDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "code": "invalid_input"})
		return
	}

	edited, err := h.rides.Edit(c.Request.Context(), c.Param("id"), mw.ActorID(c), req.details())
	if err != nil {
		h.writeRideError(c, err, edited)
		return
	}
	c.JSON(http.StatusOK, edited)
}

// AcceptRide handles POST /api/rides/:id/accept.
func (h *Handler) AcceptRide(c *gin.Context) {
	h.transition(c, h.rides.Accept)
}

// CancelOffer handles POST /api/rides/:id/cancel-offer.
func (h *Handler) CancelOffer(c *gin.Context) {
	h.transition(c, h.rides.CancelOffer)
}

// CancelRequest handles POST /api/rides/:id/cancel-request.
func (h *Handler) CancelRequest(c *gin.Context) {
	h.transition(c, h.rides.CancelRequest)
}

// FinishRide handles POST /api/rides/:id/finish.
func (h *Handler) FinishRide(c *gin.Context) {
	h.transition(c, h.rides.Finish)
}

func (h *Handler) transition(c *gin.Context, op func(ctx context.Context, rideID, actorID string) (*model.Ride, error)) {
	updated, err := op(c.Request.Context(), c.Param("id"), mw.ActorID(c))
	if err != nil {
		h.writeRideError(c, err, updated)
		return
	}
	c.JSON(http.StatusOK, updated)
}
