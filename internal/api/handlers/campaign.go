package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shotlist/analytics-backend/internal/api/middleware"
	"github.com/shotlist/analytics-backend/internal/services"
)

type CampaignHandler struct {
	services *services.Container
}

func NewCampaignHandler(s *services.Container) *CampaignHandler {
	return &CampaignHandler{services: s}
}

// List returns the campaigns visible to the caller with computed
// spend, revenue and ROI. type/status filters accept "all" or empty.
func (h *CampaignHandler) List(c *gin.Context) {
	scope := services.ScopeFor(middleware.GetUser(c))

	campaigns, err := h.services.Campaign.List(scope, c.Query("type"), c.Query("status"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": campaigns})
}

// Export streams the campaign report as a CSV attachment.
func (h *CampaignHandler) Export(c *gin.Context) {
	scope := services.ScopeFor(middleware.GetUser(c))

	rows, err := h.services.Campaign.ExportRows(scope)
	if err != nil {
		fail(c, err)
		return
	}

	filename := fmt.Sprintf("campaign_report_%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	writer := csv.NewWriter(c.Writer)
	if err := writer.Write(services.ExportHeader); err != nil {
		return
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return
		}
	}
	writer.Flush()
}
