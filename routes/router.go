package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openagora/forum/config"
	"github.com/openagora/forum/controllers"
	"github.com/openagora/forum/forum"
	"github.com/openagora/forum/middleware"
	"github.com/openagora/forum/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(svc *forum.Service) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger.
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Trace-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.MetricsMiddleware())

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authController := controllers.NewAuthController(svc)
	threadController := controllers.NewThreadController(svc)
	statsController := controllers.NewStatsController(svc)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	// Public reads resolve the caller when a token is presented but
	// never require one.
	public := api.Group("", middleware.AuthOptional())
	public.GET("/threads", threadController.ListThreads)
	public.GET("/threads/:id", threadController.GetThread)
	public.GET("/stats", statsController.GetStats)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	protected.POST("/threads", threadController.CreateThread)
	protected.POST("/threads/:id/comments", threadController.CreateComment)
	protected.POST("/vote/:type/:id", threadController.ToggleUpvote)
	protected.POST("/flag/:type/:id", threadController.FlagContent)
	protected.GET("/flags", threadController.PendingFlags)
	protected.POST("/flags/:id/resolve", threadController.ResolveFlag)
	protected.PATCH("/threads/:id/visibility", threadController.SetThreadVisibility)
	protected.POST("/threads/:id/subscribe", threadController.ToggleSubscription)
	protected.GET("/threads/:id/subscription", threadController.GetSubscription)
	protected.GET("/notifications", threadController.Notifications)
	protected.POST("/notifications/read", threadController.MarkNotificationsRead)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
