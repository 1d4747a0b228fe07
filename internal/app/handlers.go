package app

import (
	"gorm.io/gorm"

	apphttp "github.com/strokecovery/strokecovery-backend/internal/http"
	httpH "github.com/strokecovery/strokecovery-backend/internal/http/handlers"
	httpMW "github.com/strokecovery/strokecovery-backend/internal/http/middleware"
	"github.com/strokecovery/strokecovery-backend/internal/observability"
	"github.com/strokecovery/strokecovery-backend/internal/pkg/dates"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

func wireRouterConfig(log *logger.Logger, cfg Config, db *gorm.DB, s Services, c Clients, metrics *observability.Metrics) apphttp.RouterConfig {
	log.Info("Wiring handlers...")
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return apphttp.RouterConfig{
		Log:         log,
		Metrics:     metrics,
		ServiceName: serviceName,
		CORSOrigins: cfg.CORSOrigins,

		AuthMiddleware: httpMW.NewAuthMiddleware(log, s.Auth),

		HealthHandler:       httpH.NewHealthHandler(db, c.Redis),
		AuthHandler:         httpH.NewAuthHandler(s.Auth),
		ProfileHandler:      httpH.NewProfileHandler(s.Profile),
		MedicineHandler:     httpH.NewMedicineHandler(s.Medicine),
		MedicineInfoHandler: httpH.NewMedicineInfoHandler(s.MedicineInfo),
		MoodHandler:         httpH.NewMoodHandler(s.Mood),
		AilmentHandler:      httpH.NewAilmentHandler(s.Ailment),
		TherapyHandler:      httpH.NewTherapyHandler(s.Therapy),
		CalendarHandler:     httpH.NewCalendarHandler(s.Calendar, dates.SystemClock),
		GamesHandler:        httpH.NewGamesHandler(s.Games),
		StrokeBitesHandler:  httpH.NewStrokeBitesHandler(s.StrokeBites),
	}
}
