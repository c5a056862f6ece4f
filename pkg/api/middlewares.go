package api

import (
	"net/http"
	"strings"
	"time"

	"educrm-api/pkg/auth"
	"educrm-api/pkg/cache"
	"educrm-api/pkg/model"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const actorKey = "actor"

// AuthMiddleware checks if the request is authenticated. The claims carry the
// full staff identity, so handlers get their actor without a directory lookup.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.JSON(http.StatusUnauthorized, defaultErrorResponse("unauthorized"))
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, defaultErrorResponse("invalid authorization format"))
			c.Abort()
			return
		}

		claims, err := auth.ParseJWT(parts[1])
		if err != nil {
			log.Error().Err(err).Msg("Invalid token")
			c.JSON(http.StatusUnauthorized, defaultErrorResponse("invalid token"))
			c.Abort()
			return
		}
		if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
			c.JSON(http.StatusUnauthorized, defaultErrorResponse("token expired"))
			c.Abort()
			return
		}
		if !sessionActive(c, claims) {
			c.JSON(http.StatusUnauthorized, defaultErrorResponse("session revoked"))
			c.Abort()
			return
		}

		c.Set(actorKey, &model.Staff{
			ID:    claims.StaffID(),
			Name:  claims.Name,
			Role:  claims.Role,
			Email: claims.Email,
		})
		c.Set("claims", claims)
		c.Next()
	}
}

// AdminOnly guards the recurring-task admin surface.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := currentActor(c)
		if actor == nil || !actor.IsAdmin() {
			c.JSON(http.StatusForbidden, defaultErrorResponse("admin role required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// sessionActive enforces revocation only when a cache is wired; without Redis
// the token's own expiry is the sole lifetime check.
func sessionActive(c *gin.Context, claims *auth.Claims) bool {
	cacheInstance := cache.GetCacheInstance()
	if !cacheInstance.Enabled() {
		return true
	}
	_, err := cacheInstance.Get(c.Request.Context(), auth.SessionKey(claims.StaffID(), claims.ID))
	return err == nil
}

func currentActor(c *gin.Context) *model.Staff {
	actor, ok := c.Get(actorKey)
	if !ok {
		return nil
	}
	staff, ok := actor.(*model.Staff)
	if !ok {
		return nil
	}
	return staff
}
