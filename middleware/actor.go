package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"hotel-reservation/services"
	"hotel-reservation/utils"

	"github.com/gin-gonic/gin"
)

// Identity headers are set by the gateway after authentication.
const (
	ActorHeader    = "X-Actor"
	RoleHeader     = "X-Actor-Role"
	ClientIDHeader = "X-Client-ID"

	actorKey = "actor"
)

// Actor resolves the caller from the gateway headers. A request without a
// role stays anonymous and fails every capability check.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := services.Actor{Name: strings.TrimSpace(c.GetHeader(ActorHeader))}

		if raw := c.GetHeader(RoleHeader); raw != "" {
			role, err := services.ParseRole(raw)
			if err != nil {
				utils.JSONError(c, http.StatusBadRequest, "error.invalid_role", err.Error())
				c.Abort()
				return
			}
			actor.Role = role
		}
		if raw := c.GetHeader(ClientIDHeader); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				utils.JSONError(c, http.StatusBadRequest, "error.invalid_client", "X-Client-ID must be numeric")
				c.Abort()
				return
			}
			actor.ClientID = uint(id)
		}
		if actor.Role == services.RoleClient && actor.ClientID == 0 {
			utils.JSONError(c, http.StatusBadRequest, "error.invalid_client", "client requests need X-Client-ID")
			c.Abort()
			return
		}
		if actor.Name == "" && actor.Role != "" {
			actor.Name = string(actor.Role)
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

func ActorFrom(c *gin.Context) services.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(services.Actor); ok {
			return actor
		}
	}
	return services.Actor{}
}

func RequireCapability(capability services.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFrom(c)
		if !services.Can(actor.Role, capability) {
			utils.JSONError(c, http.StatusForbidden, "error.forbidden",
				"missing capability "+string(capability))
			c.Abort()
			return
		}
		c.Next()
	}
}
