// Package middleware carries the request-scoped concerns of the HTTP layer:
// bearer authentication, access-level gating and prometheus metrics.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sims-api/internal/identity"
	"github.com/noah-isme/sims-api/internal/models"
	"github.com/noah-isme/sims-api/internal/service"
	apperrors "github.com/noah-isme/sims-api/pkg/errors"
	"github.com/noah-isme/sims-api/pkg/response"
)

const (
	claimsKey = "auth_claims"
	actorKey  = "auth_actor"
)

// RequireAuth validates the bearer, resolves the caller and binds the actor
// to both the gin context and the request context so services downstream can
// attribute mutations.
func RequireAuth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			response.Error(c, apperrors.ErrAccessRequired)
			c.Abort()
			return
		}
		claims, err := auth.ValidateToken(c.Request.Context(), raw, models.TokenKindAccess)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		actor, err := auth.ResolveCaller(c.Request.Context(), claims)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(claimsKey, claims)
		c.Set(actorKey, actor)
		c.Request = c.Request.WithContext(identity.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

// RequireRefresh validates a refresh bearer without resolving the caller; the
// refresh handler does its own lookup.
func RequireRefresh(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			response.Error(c, apperrors.ErrRefreshRequired)
			c.Abort()
			return
		}
		claims, err := auth.ValidateToken(c.Request.Context(), raw, models.TokenKindRefresh)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireAccessLevel gates a route group on a minimum staff access level.
// Non-staff audiences carry the read-only floor.
func RequireAccessLevel(minimum int) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok || actor.AccessLevel < minimum {
			response.Error(c, apperrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// ClaimsFrom returns the validated claims bound by the auth middleware.
func ClaimsFrom(c *gin.Context) (*models.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*models.Claims)
	return claims, ok
}

// ActorFrom returns the resolved actor bound by the auth middleware.
func ActorFrom(c *gin.Context) (identity.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return identity.Actor{}, false
	}
	actor, ok := v.(identity.Actor)
	return actor, ok
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
