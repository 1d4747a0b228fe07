package app

import (
	"gorm.io/gorm"

	"github.com/strokecovery/strokecovery-backend/internal/modules/bites"
	"github.com/strokecovery/strokecovery-backend/internal/observability"
	"github.com/strokecovery/strokecovery-backend/internal/pkg/dates"
	"github.com/strokecovery/strokecovery-backend/internal/platform/llm"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
	"github.com/strokecovery/strokecovery-backend/internal/services"
)

type Services struct {
	Auth         services.AuthService
	Profile      services.ProfileService
	Medicine     services.MedicineService
	MedicineInfo services.MedicineInfoService
	Mood         services.MoodService
	Ailment      services.AilmentService
	Therapy      services.TherapyService
	Calendar     services.CalendarService
	Games        services.GamesService
	StrokeBites  services.StrokeBitesService

	DailyBites *bites.DailyCache
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	clock := dates.SystemClock

	orchestrator := bites.NewOrchestrator(bites.OrchestratorDeps{
		Log:       log,
		Bites:     r.StrokeBite,
		Answers:   r.StrokeBiteAnswer,
		Retriever: bites.NewRetriever(log, r.Insight, c.Embedder, clock),
		Generator: bites.NewGenerator(log, c.Chat, llm.Options{
			Temperature: cfg.Bites.Temperature,
			MaxTokens:   cfg.Bites.MaxTokens,
		}),
		Observer:             metrics,
		Clock:                clock,
		ExclusionWindowDays:  cfg.Bites.ExclusionWindowDays,
		PreferenceWindowDays: cfg.Bites.PreferenceWindowDays,
	})
	daily := bites.NewDailyCache(bites.DailyCacheDeps{
		Log:       log,
		DB:        db,
		Bites:     r.StrokeBite,
		Profiles:  r.Profile,
		Generator: orchestrator,
		Redis:     c.Redis,
		RedisTTL:  cfg.Bites.RedisTTL,
		Observer:  metrics,
	})

	return Services{
		Auth:         services.NewAuthService(log, r.User, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		Profile:      services.NewProfileService(log, r.Profile),
		Medicine:     services.NewMedicineService(log, r.Profile, r.Medicine, r.MedicineLog, clock),
		MedicineInfo: services.NewMedicineInfoService(log, r.MedicineInfo, c.Chat),
		Mood:         services.NewMoodService(log, r.Profile, r.Mood, clock),
		Ailment:      services.NewAilmentService(log, r.Profile, r.Ailment, clock),
		Therapy:      services.NewTherapyService(log, r.Profile, r.Therapy, clock),
		Calendar:     services.NewCalendarService(log, r.Profile, r.MedicineLog, r.Therapy, r.Mood, r.Ailment),
		Games:        services.NewGamesService(log, r.Profile, r.GameResult, clock),
		StrokeBites:  services.NewStrokeBitesService(log, r.Profile, r.StrokeBite, r.StrokeBiteAnswer, daily, clock),
		DailyBites:   daily,
	}
}
