package api

import (
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"rideshare-backend/config"
	"rideshare-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.ServerConfig, handler *Handler) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	// Short-lived response cache for static lookups only. Rides and notifications
	// are always read live.
	cacheStore := cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	caching := mw.Cache(cacheStore, cfg.CacheTTL)

	public := r.Group("/api")
	public.Use(rateLimiter)
	{
		public.GET("/vapid_public_key", caching, handler.GetVAPIDPublicKey)
	}

	api := r.Group("/api")
	api.Use(mw.Identity(cfg.IdentityHeader), rateLimiter)
	{
		api.POST("/rides", handler.CreateRide)
		api.GET("/rides/:id", handler.GetRide)
		api.PUT("/rides/:id", handler.EditRide)
		api.POST("/rides/:id/accept", handler.AcceptRide)
		api.POST("/rides/:id/cancel-offer", handler.CancelOffer)
		api.POST("/rides/:id/cancel-request", handler.CancelRequest)
		api.POST("/rides/:id/finish", handler.FinishRide)

		api.GET("/notifications", handler.ListNotifications)

		api.GET("/subscriptions", handler.GetSubscriptions)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
	}

	return r
}
