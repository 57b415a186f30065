package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"foodgram/internal/auth"
	"foodgram/internal/logger"
	"foodgram/internal/middleware"
	"foodgram/internal/store"
	"foodgram/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	users   *store.Users
	issuer  *auth.Issuer
	revoked *auth.Revocations
}

func NewAuthHandler(users *store.Users, issuer *auth.Issuer, revoked *auth.Revocations) *AuthHandler {
	return &AuthHandler{users: users, issuer: issuer, revoked: revoked}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login POST /api/auth/token/login/
// Issues a token and also opens a cookie session for browser clients.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.users.ByEmail(c.Request.Context(), strings.ToLower(req.Email))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		respondError(c, err)
		return
	}
	if user == nil || !utils.CheckPasswordHash(req.Password, user.Password) {
		respondError(c, store.ValidationErrors{{Field: "non_field_errors", Message: "unable to log in with provided credentials"}})
		return
	}

	token, _, err := h.issuer.Create(user.ID, user.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	if _, ok := c.Get(sessions.DefaultKey); ok {
		session := sessions.Default(c)
		session.Set(middleware.SessionUserKey, user.ID)
		if err := session.Save(); err != nil {
			logger.Warn("failed to save session", zap.Uint("user_id", user.ID), zap.Error(err))
		}
	}
	logger.Info("user logged in", zap.Uint("user_id", user.ID))
	c.JSON(http.StatusOK, gin.H{"auth_token": token})
}

// Logout POST /api/auth/token/logout/
// The token id stays revoked until the token would have expired anyway.
func (h *AuthHandler) Logout(c *gin.Context) {
	if v, ok := c.Get(middleware.TokenClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			ttl := h.issuer.TTL()
			if claims.ExpiresAt != nil {
				ttl = time.Until(claims.ExpiresAt.Time)
			}
			h.revoked.Revoke(claims.ID, ttl)
		}
	}
	if _, ok := c.Get(sessions.DefaultKey); ok {
		session := sessions.Default(c)
		session.Clear()
		if err := session.Save(); err != nil {
			logger.Warn("failed to clear session", zap.Error(err))
		}
	}
	c.Status(http.StatusNoContent)
}
