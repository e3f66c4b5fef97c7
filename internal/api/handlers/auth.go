package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shotlist/analytics-backend/internal/api/middleware"
	"github.com/shotlist/analytics-backend/internal/auth"
	"github.com/shotlist/analytics-backend/internal/services"
)

type AuthHandler struct {
	services *services.Container
}

func NewAuthHandler(s *services.Container) *AuthHandler {
	return &AuthHandler{services: s}
}

// Login opens a session for username-or-email plus password.
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Username and password are required")
		return
	}

	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}
	limit, err := h.services.RateLimiter.Check(c.Request.Context(),
		fmt.Sprintf("login:%s:%s", c.ClientIP(), identifier), auth.RateLimitLogin)
	if err == nil && !limit.Allowed {
		respondError(c, http.StatusTooManyRequests,
			"Too many login attempts. Please try again later.", codeRateLimited)
		return
	}

	user, token, err := h.services.Auth.Login(&req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": token,
		"user":       user,
	})
}

// Logout revokes the presented session. Missing or unknown tokens
// still succeed; logout is idempotent.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetHeader(middleware.SessionHeader)
	if token != "" {
		if err := h.services.Auth.Revoke(token); err != nil {
			fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Username, email and password are required")
		return
	}

	user, err := h.services.Auth.Register(&req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "user": user})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword rotates the password and revokes every other session
// of the user. The calling session stays valid.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Old and new password are required")
		return
	}

	token := c.GetHeader(middleware.SessionHeader)
	if err := h.services.Auth.ChangePassword(token, req.OldPassword, req.NewPassword); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password changed"})
}

type socialLoginRequest struct {
	Provider string `json:"provider" binding:"required"`
}

// SocialLogin starts the OAuth flow and hands the authorization URL
// back to the frontend.
func (h *AuthHandler) SocialLogin(c *gin.Context) {
	var req socialLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Provider is required")
		return
	}

	url, err := h.services.OAuth.AuthorizeURL(req.Provider)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "authorizationUrl": url})
}

// OAuthCallback finishes the flow: verifies state, exchanges the code,
// upserts the user and opens a session.
func (h *AuthHandler) OAuthCallback(c *gin.Context) {
	provider := c.Param("provider")
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		badRequest(c, "Missing code or state")
		return
	}

	if err := h.services.OAuth.VerifyState(provider, state); err != nil {
		fail(c, err)
		return
	}

	token, err := h.services.OAuth.Exchange(c.Request.Context(), provider, code)
	if err != nil {
		h.services.Log.Error().Err(err).Str("provider", provider).Msg("OAuth code exchange failed")
		fail(c, err)
		return
	}

	info, err := h.services.OAuth.Userinfo(c.Request.Context(), provider, token.AccessToken)
	if err != nil {
		h.services.Log.Error().Err(err).Str("provider", provider).Msg("OAuth userinfo failed")
		fail(c, err)
		return
	}

	user, err := h.services.Auth.FindOrCreateOAuthUser(provider, info.Email, info.FullName, info.ProviderUserID)
	if err != nil {
		fail(c, err)
		return
	}

	sessionID, err := h.services.Auth.CreateSession(user.ID, false)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": sessionID,
		"user":       user,
	})
}
