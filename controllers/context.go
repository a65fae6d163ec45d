package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-pos/services"
)

// actorFrom builds the service-layer auth context from what the auth
// middleware stored on the gin context.
func actorFrom(c *gin.Context) services.AuthContext {
	actor := services.AuthContext{}
	if v, ok := c.Get("userID"); ok {
		actor.UserID = v.(uint)
	}
	if v, ok := c.Get("tenantID"); ok {
		actor.TenantID = v.(uint)
	}
	if v, ok := c.Get("role"); ok {
		actor.Role = v.(string)
	}
	return actor
}
