package mw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor_id"

// Identity reads the authenticated user id from header and stores it on the context.
// Requests without it are rejected with 401.
func Identity(header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(header))
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
			return
		}
		c.Set(actorKey, id)
		c.Next()
	}
}

// ActorID returns the user id set by Identity, or "" when absent.
func ActorID(c *gin.Context) string {
	return c.GetString(actorKey)
}
