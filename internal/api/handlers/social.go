package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shotlist/analytics-backend/internal/api/middleware"
	"github.com/shotlist/analytics-backend/internal/models"
	"github.com/shotlist/analytics-backend/internal/services"
)

type SocialHandler struct {
	services *services.Container
}

func NewSocialHandler(s *services.Container) *SocialHandler {
	return &SocialHandler{services: s}
}

func (h *SocialHandler) ConnectAccount(c *gin.Context) {
	user := middleware.GetUser(c)

	var req services.ConnectAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Platform, username, account email and access token are required")
		return
	}

	account, err := h.services.Social.ConnectAccount(user.ID, &req, c.ClientIP())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "account": account})
}

func (h *SocialHandler) Accounts(c *gin.Context) {
	user := middleware.GetUser(c)

	accounts, err := h.services.Social.Accounts(user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

func (h *SocialHandler) Disconnect(c *gin.Context) {
	user := middleware.GetUser(c)

	if err := h.services.Social.Disconnect(user.ID, c.Param("platform"), c.ClientIP()); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Account disconnected"})
}

func (h *SocialHandler) Settings(c *gin.Context) {
	user := middleware.GetUser(c)

	settings, err := h.services.Social.Settings(user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *SocialHandler) SaveSettings(c *gin.Context) {
	user := middleware.GetUser(c)

	var settings models.SocialSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		badRequest(c, "Invalid settings payload")
		return
	}

	if err := h.services.Social.SaveSettings(user.ID, &settings); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "settings": settings})
}

func (h *SocialHandler) TrackingConfig(c *gin.Context) {
	configs, err := h.services.Social.TrackingConfig()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"platforms": configs})
}

func (h *SocialHandler) SaveTrackingConfig(c *gin.Context) {
	var req struct {
		Platforms []models.TrackingConfig `json:"platforms" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Platforms payload is required")
		return
	}

	if err := h.services.Social.SaveTrackingConfig(req.Platforms); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AddDailyMetrics ingests one day's snapshot. Re-posting the same
// (account, platform, date) overwrites the stored values.
func (h *SocialHandler) AddDailyMetrics(c *gin.Context) {
	var metric models.DailyMetric
	if err := c.ShouldBindJSON(&metric); err != nil || metric.AccountID == 0 || metric.Platform == "" {
		badRequest(c, "Account, platform and metric values are required")
		return
	}

	if err := h.services.Social.AddDailyMetrics(&metric); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *SocialHandler) DailyMetrics(c *gin.Context) {
	accountID, ok := paramUint(c, "account_id")
	if !ok {
		badRequest(c, "Invalid account id")
		return
	}

	metrics, err := h.services.Social.DailyMetrics(accountID, c.Query("platform"), queryInt(c, "days", 30))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"metrics": metrics})
}

func (h *SocialHandler) AddContent(c *gin.Context) {
	var content models.ContentPerformance
	if err := c.ShouldBindJSON(&content); err != nil || content.AccountID == 0 || content.PostID == "" {
		badRequest(c, "Account, platform and post id are required")
		return
	}

	if err := h.services.Social.AddContentPerformance(&content); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *SocialHandler) TopContent(c *gin.Context) {
	accountID, ok := paramUint(c, "account_id")
	if !ok {
		badRequest(c, "Invalid account id")
		return
	}

	content, err := h.services.Social.TopContent(accountID, c.Query("platform"), queryInt(c, "limit", 10))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": content})
}

func (h *SocialHandler) AddDemographics(c *gin.Context) {
	var demo models.AudienceDemographic
	if err := c.ShouldBindJSON(&demo); err != nil || demo.AccountID == 0 || demo.Platform == "" {
		badRequest(c, "Account and platform are required")
		return
	}

	if err := h.services.Social.AddAudienceDemographics(&demo); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *SocialHandler) AudienceInsights(c *gin.Context) {
	accountID, ok := paramUint(c, "account_id")
	if !ok {
		badRequest(c, "Invalid account id")
		return
	}

	insights, err := h.services.Social.AudienceInsights(accountID, c.Query("platform"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, insights)
}

func (h *SocialHandler) PerformanceSummary(c *gin.Context) {
	accountID, ok := paramUint(c, "account_id")
	if !ok {
		badRequest(c, "Invalid account id")
		return
	}

	summary, err := h.services.Social.PerformanceSummary(accountID, c.Query("platform"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *SocialHandler) AuditLog(c *gin.Context) {
	accountID, ok := paramUint(c, "account_id")
	if !ok {
		badRequest(c, "Invalid account id")
		return
	}

	entries, err := h.services.Social.AuditLog(accountID, queryInt(c, "limit", 50))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"audit": entries})
}

// Sync refreshes metrics for every connected account of the caller.
// Partial failures are reported, not fatal.
func (h *SocialHandler) Sync(c *gin.Context) {
	user := middleware.GetUser(c)

	result, err := h.services.Social.SyncAll(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
