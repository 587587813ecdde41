package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/jengzang/riskdash-backend/internal/config"
	"github.com/jengzang/riskdash-backend/internal/handler"
	"github.com/jengzang/riskdash-backend/internal/middleware"
	"github.com/jengzang/riskdash-backend/internal/observability"
	"github.com/jengzang/riskdash-backend/internal/service"
	"github.com/jengzang/riskdash-backend/pkg/response"
)

// Services groups what the router needs to build its handlers
type Services struct {
	State     *service.State
	Analytics *service.AnalyticsService
	Chat      *service.ChatService
	Crimes    *service.CrimeService
	Geo       *service.GeoService
	// Limiter throttles /chatbot; nil disables throttling
	Limiter *middleware.RateLimiter
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, svc Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(observability.ServiceName))
	}
	r.Use(middleware.Logger(), middleware.CORS(), middleware.Metrics())

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "route not found")
	})

	// 健康检查
	r.GET("/health", handler.NewHealthHandler(svc.State).Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.NewAnalyticsHandler(svc.Analytics, svc.State.Region()).
		RegisterRoutes(r.Group("/analytics"))

	chatbot := r.Group("/chatbot")
	if svc.Limiter != nil {
		chatbot.Use(middleware.RateLimit(svc.Limiter))
	}
	if cfg.Auth.JWTSecret != "" {
		chatbot.Use(middleware.BearerAuth([]byte(cfg.Auth.JWTSecret)))
	}
	handler.NewChatbotHandler(svc.Chat).RegisterRoutes(chatbot)

	handler.NewCrimesHandler(svc.Crimes).RegisterRoutes(r.Group("/crimes"))
	handler.NewGeoHandler(svc.Geo).RegisterRoutes(r.Group("/geo"))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Risk dashboard API"})
	})
	return r
}
