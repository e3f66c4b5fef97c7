package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shotlist/analytics-backend/internal/api/handlers"
	"github.com/shotlist/analytics-backend/internal/api/middleware"
	"github.com/shotlist/analytics-backend/internal/health"
	"github.com/shotlist/analytics-backend/internal/logger"
	"github.com/shotlist/analytics-backend/internal/services"
	"github.com/shotlist/analytics-backend/internal/websocket"
)

type Server struct {
	router   *gin.Engine
	services *services.Container
	health   *health.Checker
}

func NewServer(svc *services.Container) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		router:   gin.New(),
		services: svc,
		health:   health.NewChecker(svc.DB, svc.Redis),
	}

	server.router.Use(middleware.CORS(svc.Config.CORSOrigin))
	server.router.Use(logger.GinMiddleware(svc.Log))
	server.router.Use(logger.GinRecovery(svc.Log))

	server.setupRoutes()
	return server
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

// SetReady flips the readiness probe once startup has finished.
func (s *Server) SetReady(ready bool) {
	s.health.SetReady(ready)
}

func (s *Server) setupRoutes() {
	s.router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "shotlist-analytics-backend",
			"status":  "running",
		})
	})
	s.router.GET("/api/health", s.health.Health)
	s.health.RegisterRoutes(s.router)

	authHandler := handlers.NewAuthHandler(s.services)
	dashboardHandler := handlers.NewDashboardHandler(s.services)
	campaignHandler := handlers.NewCampaignHandler(s.services)
	socialHandler := handlers.NewSocialHandler(s.services)
	integrationHandler := handlers.NewIntegrationHandler(s.services)

	// Public
	s.router.POST("/api/login", authHandler.Login)
	s.router.POST("/api/logout", authHandler.Logout)
	s.router.POST("/api/register", authHandler.Register)
	s.router.POST("/api/social-login", authHandler.SocialLogin)
	s.router.GET("/oauth/callback/:provider", authHandler.OAuthCallback)

	// Session-authenticated
	protected := s.router.Group("/api")
	protected.Use(middleware.Session(s.services.Auth))
	{
		protected.POST("/change-password", authHandler.ChangePassword)

		protected.GET("/campaigns", campaignHandler.List)
		protected.GET("/export", campaignHandler.Export)
		protected.GET("/kpis", dashboardHandler.KPIs)
		protected.GET("/roi-trend", dashboardHandler.ROITrend)
		protected.GET("/revenue-cost", dashboardHandler.RevenueCost)
		protected.GET("/seo-metrics", dashboardHandler.SEOMetrics)
		protected.GET("/social-media", dashboardHandler.SocialMedia)

		social := protected.Group("/social-media")
		{
			social.GET("/accounts", socialHandler.Accounts)
			social.POST("/accounts", socialHandler.ConnectAccount)
			social.DELETE("/accounts/:platform", socialHandler.Disconnect)
			social.GET("/settings", socialHandler.Settings)
			social.POST("/settings", socialHandler.SaveSettings)
			social.GET("/tracking-config", socialHandler.TrackingConfig)
			social.POST("/tracking-config", socialHandler.SaveTrackingConfig)
			social.POST("/metrics", socialHandler.AddDailyMetrics)
			social.GET("/metrics/:account_id", socialHandler.DailyMetrics)
			social.POST("/content", socialHandler.AddContent)
			social.GET("/content/:account_id", socialHandler.TopContent)
			social.POST("/demographics", socialHandler.AddDemographics)
			social.GET("/demographics/:account_id", socialHandler.AudienceInsights)
			social.GET("/performance/:account_id", socialHandler.PerformanceSummary)
			social.GET("/audit/:account_id", socialHandler.AuditLog)
			social.POST("/sync", socialHandler.Sync)
		}

		ads := protected.Group("/ads")
		{
			ads.POST("/connect", integrationHandler.ConnectAds)
			ads.GET("/status", integrationHandler.AdsStatus)
			ads.DELETE("/:platform", integrationHandler.DisconnectAds)
		}

		notion := protected.Group("/notion")
		{
			notion.POST("/connect", integrationHandler.ConnectNotion)
			notion.GET("/config", integrationHandler.NotionConfig)
			notion.GET("/events", integrationHandler.NotionEvents)
			notion.POST("/events", integrationHandler.CreateNotionEvent)
		}

		figma := protected.Group("/figma")
		{
			figma.POST("/test", integrationHandler.TestFigma)
			figma.GET("/sync-config", integrationHandler.FigmaConfigs)
			figma.POST("/sync-config", integrationHandler.SaveFigmaConfig)
		}
	}

	// The websocket upgrade cannot carry custom headers from browsers,
	// so the session token arrives as a query parameter.
	s.router.GET("/api/ws", s.serveWs)
}

func (s *Server) serveWs(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = c.GetHeader(middleware.SessionHeader)
	}

	user, err := s.services.Auth.Authenticate(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success":    false,
			"message":    "Invalid or expired session",
			"error_code": "UNAUTHORIZED",
		})
		return
	}

	websocket.ServeWs(s.services.WSHub, c.Writer, c.Request, strconv.FormatUint(uint64(user.ID), 10))
}
