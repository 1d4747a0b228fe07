package app

import (
	"gorm.io/gorm"

	"github.com/strokecovery/strokecovery-backend/internal/data/repos"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

type Repos struct {
	User    repos.UserRepo
	Profile repos.ProfileRepo

	Medicine     repos.MedicineRepo
	MedicineLog  repos.MedicineLogRepo
	MedicineInfo repos.MedicineInfoRepo

	Mood    repos.MoodRepo
	Ailment repos.AilmentRepo
	Therapy repos.TherapyRepo

	GameResult repos.GameResultRepo

	StrokeBite       repos.StrokeBiteRepo
	StrokeBiteAnswer repos.StrokeBiteAnswerRepo

	Insight repos.InsightRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:    repos.NewUserRepo(db, log),
		Profile: repos.NewProfileRepo(db, log),

		Medicine:     repos.NewMedicineRepo(db, log),
		MedicineLog:  repos.NewMedicineLogRepo(db, log),
		MedicineInfo: repos.NewMedicineInfoRepo(db, log),

		Mood:    repos.NewMoodRepo(db, log),
		Ailment: repos.NewAilmentRepo(db, log),
		Therapy: repos.NewTherapyRepo(db, log),

		GameResult: repos.NewGameResultRepo(db, log),

		StrokeBite:       repos.NewStrokeBiteRepo(db, log),
		StrokeBiteAnswer: repos.NewStrokeBiteAnswerRepo(db, log),

		Insight: repos.NewInsightRepo(db, log),
	}
}
