package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shotlist/analytics-backend/internal/auth"
	"github.com/shotlist/analytics-backend/internal/integrations/oauth"
	"github.com/shotlist/analytics-backend/internal/services"
)

// Error codes of the response envelope.
const (
	codeValidation   = "VALIDATION"
	codeUnauthorized = "UNAUTHORIZED"
	codeForbidden    = "FORBIDDEN"
	codeNotFound     = "NOT_FOUND"
	codeConflict     = "CONFLICT"
	codeInternal     = "INTERNAL_SERVER_ERROR"
	codeRateLimited  = "RATE_LIMITED"
)

func respondError(c *gin.Context, status int, message, code string) {
	c.JSON(status, gin.H{
		"success":    false,
		"message":    message,
		"error_code": code,
	})
}

// fail maps a service error onto the response taxonomy. Anything
// unrecognized is an internal error and its message stays server-side.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "Invalid credentials", codeUnauthorized)
	case errors.Is(err, auth.ErrUnauthorized):
		respondError(c, http.StatusUnauthorized, "Invalid or expired session", codeUnauthorized)
	case errors.Is(err, auth.ErrAccountInactive):
		respondError(c, http.StatusForbidden, "Account is inactive", codeForbidden)
	case errors.Is(err, auth.ErrWeakPassword):
		respondError(c, http.StatusBadRequest, err.Error(), codeValidation)
	case errors.Is(err, auth.ErrEmailExists):
		respondError(c, http.StatusConflict, "Email or username already registered", codeConflict)
	case errors.Is(err, services.ErrAccountExists):
		respondError(c, http.StatusConflict, "Account already connected", codeConflict)
	case errors.Is(err, services.ErrNotFound):
		respondError(c, http.StatusNotFound, "Resource not found", codeNotFound)
	case errors.Is(err, oauth.ErrUnknownProvider):
		respondError(c, http.StatusBadRequest, "Unsupported provider", codeValidation)
	case errors.Is(err, oauth.ErrInvalidState):
		respondError(c, http.StatusUnauthorized, "Invalid or expired state", codeUnauthorized)
	default:
		respondError(c, http.StatusInternalServerError,
			"Internal server error. Please try again later.", codeInternal)
	}
}

func badRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, message, codeValidation)
}

// queryInt parses an int query parameter with a fallback.
func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

// queryUint parses a numeric ID parameter; 0 means absent.
func queryUint(c *gin.Context, key string) uint {
	raw := c.Query(key)
	if raw == "" || raw == "all" {
		return 0
	}
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0
	}
	return uint(value)
}

func paramUint(c *gin.Context, key string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(key), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(value), true
}
