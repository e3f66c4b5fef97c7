package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shotlist/analytics-backend/internal/api/middleware"
	"github.com/shotlist/analytics-backend/internal/services"
)

type DashboardHandler struct {
	services *services.Container
}

func NewDashboardHandler(s *services.Container) *DashboardHandler {
	return &DashboardHandler{services: s}
}

// KPIs returns the headline metrics for the requested window, each
// with its percent change against the preceding window.
func (h *DashboardHandler) KPIs(c *gin.Context) {
	scope := services.ScopeFor(middleware.GetUser(c))
	days := queryInt(c, "days", 30)
	campaignID := queryUint(c, "campaign_id")

	kpis, err := h.services.Metrics.KPIs(scope, days, campaignID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kpis": kpis})
}

func (h *DashboardHandler) ROITrend(c *gin.Context) {
	scope := services.ScopeFor(middleware.GetUser(c))
	days := queryInt(c, "days", 30)
	campaignID := queryUint(c, "campaign_id")

	trend, err := h.services.Metrics.ROITrend(scope, days, campaignID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trend": trend})
}

func (h *DashboardHandler) RevenueCost(c *gin.Context) {
	scope := services.ScopeFor(middleware.GetUser(c))
	days := queryInt(c, "days", 30)
	campaignID := queryUint(c, "campaign_id")

	series, err := h.services.Metrics.RevenueCost(scope, days, campaignID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": series})
}

// SEOMetrics is site-wide, not tenant-scoped.
func (h *DashboardHandler) SEOMetrics(c *gin.Context) {
	days := queryInt(c, "days", 30)

	summary, err := h.services.Metrics.SEO(days)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"metrics": summary})
}

func (h *DashboardHandler) SocialMedia(c *gin.Context) {
	scope := services.ScopeFor(middleware.GetUser(c))
	days := queryInt(c, "days", 30)
	campaignID := queryUint(c, "campaign_id")

	summary, err := h.services.Metrics.SocialSummary(scope, days, campaignID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"platforms": summary})
}
