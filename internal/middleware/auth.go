package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"slotbook/internal/cache"
	"slotbook/internal/logger"
	"slotbook/internal/service"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// SessionLookup resolves a session token into the member behind it
type SessionLookup interface {
	Session(ctx context.Context, token string) (*cache.Session, error)
}

// Identity is what handlers know about the caller
type Identity struct {
	UserID         int64
	Name           string
	IsAdmin        bool
	IsPrivateAdmin bool
}

func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

func sessionToken(c *gin.Context, cookieName string) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie
	}
	return ""
}

// SessionAuth attaches an Identity when the request carries a live session.
// Anonymous requests pass through; RequireAuth decides where that matters.
func SessionAuth(sessions SessionLookup, members *service.UserService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c, cookieName)
		if token == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		s, err := sessions.Session(ctx, token)
		if err != nil {
			if !errors.Is(err, cache.ErrSessionNotFound) {
				logger.WithContext(ctx).Error("Session lookup failed", "error", err)
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Session store unavailable"})
				return
			}
			c.Next()
			return
		}

		user, err := members.EnsureMember(ctx, s.VID, s.Name, s.Email)
		if err != nil {
			logger.WithContext(ctx).Error("Failed to load member", "vid", s.VID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.Set(identityKey, Identity{
			UserID:         user.VID,
			Name:           user.Name,
			IsAdmin:        user.IsAdmin(),
			IsPrivateAdmin: user.IsPrivateAdmin(),
		})
		c.Request = c.Request.WithContext(logger.ContextWithUserID(ctx, user.VID))
		c.Next()
	}
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := IdentityFrom(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

func requireIdentity(allowed func(Identity) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if !allowed(id) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return requireIdentity(func(id Identity) bool { return id.IsAdmin })
}

func RequirePrivateAdmin() gin.HandlerFunc {
	return requireIdentity(func(id Identity) bool { return id.IsPrivateAdmin })
}
