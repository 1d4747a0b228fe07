package domain

import (
	"github.com/strokecovery/strokecovery-backend/internal/domain/bites"
	"github.com/strokecovery/strokecovery-backend/internal/domain/games"
	"github.com/strokecovery/strokecovery-backend/internal/domain/journal"
	"github.com/strokecovery/strokecovery-backend/internal/domain/medication"
	"github.com/strokecovery/strokecovery-backend/internal/domain/patient"
	"github.com/strokecovery/strokecovery-backend/internal/domain/research"
	"github.com/strokecovery/strokecovery-backend/internal/domain/user"
)

type User = user.User
type PatientProfile = patient.Profile

type Medicine = medication.Medicine
type MedicineLog = medication.Log
type MedicineInfo = medication.Info

type MoodEntry = journal.MoodEntry
type AilmentEntry = journal.AilmentEntry
type TherapySession = journal.TherapySession

type GameResult = games.Result

type StrokeBite = bites.StrokeBite
type StrokeBiteAnswer = bites.Answer

type Paper = research.Paper
type PaperSection = research.Section
type Insight = research.Insight
type ScoredInsight = research.ScoredInsight

const EmbeddingDimensions = research.EmbeddingDimensions
