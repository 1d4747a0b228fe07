package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/strokecovery/strokecovery-backend/internal/http/handlers"
	httpMW "github.com/strokecovery/strokecovery-backend/internal/http/middleware"
	"github.com/strokecovery/strokecovery-backend/internal/observability"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler       *httpH.HealthHandler
	AuthHandler         *httpH.AuthHandler
	ProfileHandler      *httpH.ProfileHandler
	MedicineHandler     *httpH.MedicineHandler
	MedicineInfoHandler *httpH.MedicineInfoHandler
	MoodHandler         *httpH.MoodHandler
	AilmentHandler      *httpH.AilmentHandler
	TherapyHandler      *httpH.TherapyHandler
	CalendarHandler     *httpH.CalendarHandler
	GamesHandler        *httpH.GamesHandler
	StrokeBitesHandler  *httpH.StrokeBitesHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.RequestContext(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")

	// Auth (public)
	if cfg.AuthHandler != nil {
		api.POST("/auth/register", cfg.AuthHandler.Register)
		api.POST("/auth/login", cfg.AuthHandler.Login)
	}

	protected := api.Group("")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}

	if cfg.AuthHandler != nil {
		protected.GET("/auth/me", cfg.AuthHandler.Me)
	}

	if h := cfg.ProfileHandler; h != nil {
		protected.GET("/profile", h.Get)
		protected.GET("/profile/check", h.Check)
		protected.PUT("/profile", h.Update)
		protected.POST("/profile/onboarding", h.Onboarding)
	}

	if h := cfg.MedicineHandler; h != nil {
		protected.POST("/medicines", h.Create)
		protected.GET("/medicines", h.List)
		protected.GET("/medicines/today", h.Today)
		protected.GET("/medicines/:id", h.Get)
		protected.PUT("/medicines/:id", h.Update)
		protected.DELETE("/medicines/:id", h.Delete)
		protected.POST("/medicines/:id/log", h.LogDose)
		protected.GET("/medicines/:id/logs", h.Logs)
	}

	if h := cfg.MedicineInfoHandler; h != nil {
		protected.GET("/medicine-info/lookup", h.Lookup)
		protected.GET("/medicine-info/search", h.Search)
	}

	if h := cfg.MoodHandler; h != nil {
		protected.POST("/mood", h.Create)
		protected.GET("/mood", h.List)
		protected.GET("/mood/:id", h.Get)
		protected.PUT("/mood/:id", h.Update)
		protected.DELETE("/mood/:id", h.Delete)
	}

	if h := cfg.AilmentHandler; h != nil {
		protected.POST("/ailments", h.Create)
		protected.GET("/ailments", h.List)
		protected.GET("/ailments/:id", h.Get)
		protected.PUT("/ailments/:id", h.Update)
		protected.DELETE("/ailments/:id", h.Delete)
	}

	if h := cfg.TherapyHandler; h != nil {
		protected.POST("/therapy/sessions", h.Create)
		protected.GET("/therapy/sessions", h.List)
		protected.GET("/therapy/sessions/:id", h.Get)
		protected.PUT("/therapy/sessions/:id", h.Update)
		protected.DELETE("/therapy/sessions/:id", h.Delete)
		protected.GET("/therapy/calendar/:year/:month", h.Calendar)
		protected.GET("/therapy/stats", h.Stats)
	}

	if h := cfg.CalendarHandler; h != nil {
		protected.GET("/calendar", h.Range)
		protected.GET("/calendar/:date", h.Day)
	}

	if h := cfg.GamesHandler; h != nil {
		protected.POST("/games/results", h.SaveResult)
		protected.GET("/games/results", h.ListResults)
		protected.GET("/games/stats", h.Stats)
	}

	if h := cfg.StrokeBitesHandler; h != nil {
		protected.GET("/stroke-bites/today", h.Today)
		protected.POST("/stroke-bites/generate", h.Generate)
		protected.POST("/stroke-bites/answers", h.SaveAnswers)
	}

	return r
}
