package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"foodgram/internal/auth"
	"foodgram/internal/logger"
	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/store"
	"foodgram/internal/utils"
	"foodgram/internal/validate"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	oauthStateKey     = "oauth_state"
)

// Accounts is what Google sign-in needs from the user store.
type Accounts interface {
	ByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
}

// GoogleAuthHandler signs users in with Google and answers with the same
// token the password login issues. Unknown verified emails are registered.
type GoogleAuthHandler struct {
	accounts    Accounts
	issuer      *auth.Issuer
	oauth       *oauth2.Config
	userInfoURL string
}

func NewGoogleAuthHandler(accounts Accounts, issuer *auth.Issuer, clientID, clientSecret, siteURL string) *GoogleAuthHandler {
	return &GoogleAuthHandler{
		accounts: accounts,
		issuer:   issuer,
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  strings.TrimSuffix(siteURL, "/") + "/api/auth/google/callback/",
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

func generateStateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// Login GET /api/auth/google/login/
func (h *GoogleAuthHandler) Login(c *gin.Context) {
	state, err := generateStateToken()
	if err != nil {
		respondError(c, err)
		return
	}
	session := sessions.Default(c)
	session.Set(oauthStateKey, state)
	if err := session.Save(); err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, h.oauth.AuthCodeURL(state))
}

// Callback GET /api/auth/google/callback/
func (h *GoogleAuthHandler) Callback(c *gin.Context) {
	session := sessions.Default(c)
	saved, _ := session.Get(oauthStateKey).(string)
	session.Delete(oauthStateKey)
	_ = session.Save()

	if saved == "" || c.Query("state") != saved {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid oauth state"})
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "missing authorization code"})
		return
	}

	ctx := c.Request.Context()
	token, err := h.oauth.Exchange(ctx, code)
	if err != nil {
		logger.Warn("google token exchange failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"detail": "google sign-in failed"})
		return
	}
	info, err := h.fetchUserInfo(ctx, token)
	if err != nil {
		logger.Warn("google userinfo failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"detail": "google sign-in failed"})
		return
	}
	if !info.VerifiedEmail {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "google email is not verified"})
		return
	}

	user, err := h.findOrRegister(ctx, info)
	if err != nil {
		respondError(c, err)
		return
	}
	signed, _, err := h.issuer.Create(user.ID, user.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	session.Set(middleware.SessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		logger.Warn("failed to save session", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"auth_token": signed})
}

func (h *GoogleAuthHandler) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	resp, err := h.oauth.Client(ctx, token).Get(h.userInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}
	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

var usernameStrip = regexp.MustCompile(`[^\w.@+-]`)

func (h *GoogleAuthHandler) findOrRegister(ctx context.Context, info *googleUserInfo) (*models.User, error) {
	email := strings.ToLower(info.Email)
	user, err := h.accounts.ByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	// Google accounts get an unusable random password until set_password.
	hash, err := utils.HashPassword(uuid.NewString())
	if err != nil {
		return nil, err
	}
	username := usernameStrip.ReplaceAllString(strings.Split(email, "@")[0], "")
	if validate.Username(username) != "" {
		username = "cook"
	}
	user = &models.User{
		Email:     email,
		Username:  username,
		FirstName: nameOr(info.GivenName, "Google"),
		LastName:  nameOr(info.FamilyName, "User"),
		Password:  hash,
	}
	err = h.accounts.Create(ctx, user)
	if store.IsUniqueViolation(err) {
		user.Username = username + "-" + uuid.NewString()[:6]
		err = h.accounts.Create(ctx, user)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("registered user via google", zap.Uint("user_id", user.ID))
	return user, nil
}

func nameOr(name, fallback string) string {
	if validate.PersonName(name) == "" {
		return name
	}
	return fallback
}
