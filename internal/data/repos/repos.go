package repos

import (
	"gorm.io/gorm"

	"github.com/strokecovery/strokecovery-backend/internal/data/repos/bites"
	"github.com/strokecovery/strokecovery-backend/internal/data/repos/games"
	"github.com/strokecovery/strokecovery-backend/internal/data/repos/journal"
	"github.com/strokecovery/strokecovery-backend/internal/data/repos/medication"
	"github.com/strokecovery/strokecovery-backend/internal/data/repos/patient"
	"github.com/strokecovery/strokecovery-backend/internal/data/repos/research"
	"github.com/strokecovery/strokecovery-backend/internal/data/repos/user"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type ProfileRepo = patient.ProfileRepo

type MedicineRepo = medication.MedicineRepo
type MedicineLogRepo = medication.MedicineLogRepo
type MedicineInfoRepo = medication.MedicineInfoRepo

type MoodRepo = journal.MoodRepo
type AilmentRepo = journal.AilmentRepo
type TherapyRepo = journal.TherapyRepo
type JournalFilter = journal.ListFilter

type GameResultRepo = games.ResultRepo

type StrokeBiteRepo = bites.StrokeBiteRepo
type StrokeBiteAnswerRepo = bites.AnswerRepo

type PaperRepo = research.PaperRepo
type PaperSectionRepo = research.SectionRepo
type InsightRepo = research.InsightRepo
type InsightFilter = research.InsightFilter

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return patient.NewProfileRepo(db, baseLog)
}

func NewMedicineRepo(db *gorm.DB, baseLog *logger.Logger) MedicineRepo {
	return medication.NewMedicineRepo(db, baseLog)
}
func NewMedicineLogRepo(db *gorm.DB, baseLog *logger.Logger) MedicineLogRepo {
	return medication.NewMedicineLogRepo(db, baseLog)
}
func NewMedicineInfoRepo(db *gorm.DB, baseLog *logger.Logger) MedicineInfoRepo {
	return medication.NewMedicineInfoRepo(db, baseLog)
}

func NewMoodRepo(db *gorm.DB, baseLog *logger.Logger) MoodRepo { return journal.NewMoodRepo(db, baseLog) }
func NewAilmentRepo(db *gorm.DB, baseLog *logger.Logger) AilmentRepo {
	return journal.NewAilmentRepo(db, baseLog)
}
func NewTherapyRepo(db *gorm.DB, baseLog *logger.Logger) TherapyRepo {
	return journal.NewTherapyRepo(db, baseLog)
}

func NewGameResultRepo(db *gorm.DB, baseLog *logger.Logger) GameResultRepo {
	return games.NewResultRepo(db, baseLog)
}

func NewStrokeBiteRepo(db *gorm.DB, baseLog *logger.Logger) StrokeBiteRepo {
	return bites.NewStrokeBiteRepo(db, baseLog)
}
func NewStrokeBiteAnswerRepo(db *gorm.DB, baseLog *logger.Logger) StrokeBiteAnswerRepo {
	return bites.NewAnswerRepo(db, baseLog)
}

func NewPaperRepo(db *gorm.DB, baseLog *logger.Logger) PaperRepo { return research.NewPaperRepo(db, baseLog) }
func NewPaperSectionRepo(db *gorm.DB, baseLog *logger.Logger) PaperSectionRepo {
	return research.NewSectionRepo(db, baseLog)
}
func NewInsightRepo(db *gorm.DB, baseLog *logger.Logger) InsightRepo {
	return research.NewInsightRepo(db, baseLog)
}
