package middleware

import (
	"context"
	"net/http"
	"strings"

	"foodgram/internal/auth"
	"foodgram/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const CheckUserKey = "user"
const TokenClaimsKey = "token_claims"
const SessionUserKey = "user_id"

// UserLoader finds users by id.
type UserLoader interface {
	ByID(ctx context.Context, id uint) (*models.User, error)
}

// AuthRequired rejects anonymous requests with 401.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "authentication credentials were not provided"})
			return
		}
		c.Next()
	}
}

// LoadUser resolves the current user from an Authorization token or, failing
// that, the cookie session, and stores it in the context.
func LoadUser(users UserLoader, issuer *auth.Issuer, revoked *auth.Revocations) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tok := tokenFromHeader(c.GetHeader("Authorization")); tok != "" {
			claims, err := issuer.Parse(tok)
			if err != nil || (revoked != nil && revoked.IsRevoked(claims.ID)) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "invalid token"})
				return
			}
			id, err := claims.UserID()
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "invalid token"})
				return
			}
			user, err := users.ByID(c.Request.Context(), id)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "user not found"})
				return
			}
			c.Set(CheckUserKey, user)
			c.Set(TokenClaimsKey, claims)
			c.Next()
			return
		}

		// Session middleware is optional.
		if _, ok := c.Get(sessions.DefaultKey); ok {
			session := sessions.Default(c)
			if id, ok := session.Get(SessionUserKey).(uint); ok {
				if user, err := users.ByID(c.Request.Context(), id); err == nil {
					c.Set(CheckUserKey, user)
				}
			}
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if u, exists := c.Get(CheckUserKey); exists {
		if user, ok := u.(*models.User); ok {
			return user
		}
	}
	return nil
}

// CurrentUserID is 0 for anonymous requests.
func CurrentUserID(c *gin.Context) uint {
	if u := CurrentUser(c); u != nil {
		return u.ID
	}
	return 0
}

func tokenFromHeader(h string) string {
	for _, prefix := range []string{"Bearer ", "Token "} {
		if strings.HasPrefix(h, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(h, prefix))
		}
	}
	return ""
}
