package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shotlist/analytics-backend/internal/api/middleware"
	"github.com/shotlist/analytics-backend/internal/integrations/notion"
	"github.com/shotlist/analytics-backend/internal/models"
	"github.com/shotlist/analytics-backend/internal/services"
)

// IntegrationHandler covers the ad-platform, Notion and Figma surfaces.
type IntegrationHandler struct {
	services *services.Container
}

func NewIntegrationHandler(s *services.Container) *IntegrationHandler {
	return &IntegrationHandler{services: s}
}

func (h *IntegrationHandler) ConnectAds(c *gin.Context) {
	user := middleware.GetUser(c)

	var req services.ConnectAdsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Platform and credentials are required")
		return
	}

	config, err := h.services.Ads.Connect(user.ID, &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "platform": config.Platform})
}

func (h *IntegrationHandler) AdsStatus(c *gin.Context) {
	user := middleware.GetUser(c)

	statuses, err := h.services.Ads.Status(user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"platforms": statuses})
}

func (h *IntegrationHandler) DisconnectAds(c *gin.Context) {
	user := middleware.GetUser(c)

	if err := h.services.Ads.Disconnect(user.ID, c.Param("platform")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Platform disconnected"})
}

type notionConnectRequest struct {
	APIKey     string `json:"api_key" binding:"required"`
	DatabaseID string `json:"database_id" binding:"required"`
}

// ConnectNotion verifies the key against the live API before storing
// the binding.
func (h *IntegrationHandler) ConnectNotion(c *gin.Context) {
	user := middleware.GetUser(c)

	var req notionConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "API key and database id are required")
		return
	}

	database, err := h.services.Notion.TestConnection(c.Request.Context(), req.APIKey, req.DatabaseID)
	if err != nil {
		h.services.Log.Error().Err(err).Msg("Notion connection test failed")
		respondError(c, http.StatusBadRequest, "Could not connect to Notion with the given credentials", codeValidation)
		return
	}

	if _, err := h.services.Ads.SaveNotionConfig(user.ID, req.APIKey, req.DatabaseID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "database": database})
}

func (h *IntegrationHandler) NotionConfig(c *gin.Context) {
	user := middleware.GetUser(c)

	config, err := h.services.Ads.NotionConfig(user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, config)
}

func (h *IntegrationHandler) NotionEvents(c *gin.Context) {
	user := middleware.GetUser(c)

	config, err := h.services.Ads.NotionConfig(user.ID)
	if err != nil {
		fail(c, err)
		return
	}

	events, err := h.services.Notion.QueryEvents(c.Request.Context(), config.APIKey, config.DatabaseID)
	if err != nil {
		h.services.Log.Error().Err(err).Msg("Notion event query failed")
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *IntegrationHandler) CreateNotionEvent(c *gin.Context) {
	user := middleware.GetUser(c)

	var event notion.Event
	if err := c.ShouldBindJSON(&event); err != nil || event.Title == "" || event.Date == "" {
		badRequest(c, "Title and date are required")
		return
	}

	config, err := h.services.Ads.NotionConfig(user.ID)
	if err != nil {
		fail(c, err)
		return
	}

	pageID, err := h.services.Notion.CreateEvent(c.Request.Context(), config.APIKey, config.DatabaseID, &event)
	if err != nil {
		h.services.Log.Error().Err(err).Msg("Notion event creation failed")
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "page_id": pageID})
}

type figmaTestRequest struct {
	AccessToken string `json:"access_token" binding:"required"`
	FileKey     string `json:"file_key" binding:"required"`
}

// TestFigma checks a file token and reports the node count a sync
// would cover.
func (h *IntegrationHandler) TestFigma(c *gin.Context) {
	var req figmaTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Access token and file key are required")
		return
	}

	file, err := h.services.Figma.GetFile(c.Request.Context(), req.AccessToken, req.FileKey)
	if err != nil {
		h.services.Log.Error().Err(err).Msg("Figma file fetch failed")
		respondError(c, http.StatusBadRequest, "Could not read the Figma file with the given token", codeValidation)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "file": file})
}

func (h *IntegrationHandler) FigmaConfigs(c *gin.Context) {
	configs, err := h.services.Ads.FigmaConfigs()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"configs": configs})
}

func (h *IntegrationHandler) SaveFigmaConfig(c *gin.Context) {
	var config models.FigmaSyncConfig
	if err := c.ShouldBindJSON(&config); err != nil || config.FilePath == "" {
		badRequest(c, "File path is required")
		return
	}

	if err := h.services.Ads.SaveFigmaConfig(&config); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "config": config})
}
