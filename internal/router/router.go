package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prepwise/prepwise-backend/internal/config"
	"github.com/prepwise/prepwise-backend/internal/handler"
	"github.com/prepwise/prepwise-backend/internal/middleware"
	"github.com/prepwise/prepwise-backend/internal/response"
	"github.com/prepwise/prepwise-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	Subject *handler.SubjectHandler
	Exam    *handler.ExamHandler
	WS      *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(authService *service.AuthService, handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/signup", handlers.Auth.SignUp)
		auth.POST("/signin", handlers.Auth.SignIn)

		// Authenticated profile routes
		auth.POST("/signout", middleware.RequireUserJWT(authService), handlers.Auth.SignOut)
		auth.GET("/me", middleware.RequireUserJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. App Group (JWT + Single Device) ────────────────────────────
	api := router.Group("/api/v1")
	api.Use(
		middleware.RequireUserJWT(authService),
		middleware.CheckActiveDevice(authService),
	)
	{
		api.GET("/subjects", handlers.Subject.List)
		api.POST("/subjects", handlers.Subject.Create)

		api.POST("/exams", handlers.Exam.Start)
		api.GET("/exams", handlers.Exam.GetState)
		api.DELETE("/exams", handlers.Exam.Quit)
		api.PUT("/exams/subject", handlers.Exam.SelectSubject)
		api.PUT("/exams/position", handlers.Exam.Move)
		api.PUT("/exams/answers", handlers.Exam.Answer)
		api.PUT("/exams/flags", handlers.Exam.ToggleFlag)
		api.POST("/exams/submit", handlers.Exam.Submit)
		api.GET("/exams/result", handlers.Exam.GetResult)
		api.GET("/exams/history", handlers.Exam.History)
	}

	// ─── 3. WebSocket Group (WS Auth via query token) ──────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/exams/stream", handlers.WS.ExamStream)
	}

	return router
}
