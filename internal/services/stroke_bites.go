package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/strokecovery/strokecovery-backend/internal/data/repos"
	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/modules/bites"
	"github.com/strokecovery/strokecovery-backend/internal/pkg/dates"
	"github.com/strokecovery/strokecovery-backend/internal/platform/apierr"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

// DailyBiteStore is the slice of *bites.DailyCache the service needs.
type DailyBiteStore interface {
	Get(ctx context.Context, patientID uuid.UUID, day time.Time) (*bites.DailyBite, error)
	GetOrGenerate(ctx context.Context, patientID uuid.UUID, day time.Time) (*bites.DailyBite, bool, error)
}

type BiteAnswerInput struct {
	CardID        string
	QuestionText  *string
	SelectedKey   string
	SelectedLabel *string
}

type BiteAnswersResult struct {
	ID           uuid.UUID `json:"id"`
	BiteID       uuid.UUID `json:"bite_id"`
	Saved        bool      `json:"saved"`
	AnswersCount int       `json:"answers_count"`
}

type StrokeBitesService interface {
	Today(ctx context.Context, userID uuid.UUID) (*bites.DailyBite, error)
	// Generate returns today's set, creating it if needed; created is false when it already existed.
	Generate(ctx context.Context, userID uuid.UUID) (bite *bites.DailyBite, created bool, err error)
	SaveAnswers(ctx context.Context, userID, biteID uuid.UUID, answers []BiteAnswerInput) (*BiteAnswersResult, error)
}

type strokeBitesService struct {
	log      *logger.Logger
	profiles repos.ProfileRepo
	bites    repos.StrokeBiteRepo
	answers  repos.StrokeBiteAnswerRepo
	store    DailyBiteStore
	now      dates.Clock
}

func NewStrokeBitesService(
	log *logger.Logger,
	profiles repos.ProfileRepo,
	biteRepo repos.StrokeBiteRepo,
	answers repos.StrokeBiteAnswerRepo,
	store DailyBiteStore,
	now dates.Clock,
) StrokeBitesService {
	if now == nil {
		now = dates.SystemClock
	}
	return &strokeBitesService{
		log:      log.With("service", "StrokeBitesService"),
		profiles: profiles,
		bites:    biteRepo,
		answers:  answers,
		store:    store,
		now:      now,
	}
}

func (s *strokeBitesService) Today(ctx context.Context, userID uuid.UUID) (*bites.DailyBite, error) {
	p, err := loadPatient(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	b, err := s.store.Get(ctx, p.ID, dates.Day(s.now()))
	if err != nil {
		return nil, internalErr("load_bites_failed", err)
	}
	if b == nil {
		return nil, apierr.NotFound("bites_not_found", "No bites generated for today yet")
	}
	return b, nil
}

func (s *strokeBitesService) Generate(ctx context.Context, userID uuid.UUID) (*bites.DailyBite, bool, error) {
	p, err := loadPatient(ctx, s.profiles, userID)
	if err != nil {
		return nil, false, err
	}
	b, created, err := s.store.GetOrGenerate(ctx, p.ID, dates.Day(s.now()))
	if err != nil {
		switch {
		case errors.Is(err, bites.ErrProfileNotFound):
			return nil, false, apierr.NotFound("profile_not_found", msgProfileMissing)
		case errors.Is(err, bites.ErrStorageInconsistent):
			s.log.Error("Stroke bite storage inconsistent", "patient_id", p.ID, "error", err)
			return nil, false, internalErr("storage_inconsistent", errors.New("failed to store generated bites"))
		}
		return nil, false, internalErr("generate_bites_failed", fmt.Errorf("failed to generate bites: %w", err))
	}
	return b, created, nil
}

func (s *strokeBitesService) SaveAnswers(ctx context.Context, userID, biteID uuid.UUID, answers []BiteAnswerInput) (*BiteAnswersResult, error) {
	if biteID == uuid.Nil {
		return nil, apierr.BadRequest("invalid_bite_id", "bite_id is required")
	}
	if len(answers) == 0 {
		return nil, apierr.BadRequest("empty_answers", "answers cannot be empty")
	}
	for _, a := range answers {
		cardID, key := strings.TrimSpace(a.CardID), strings.TrimSpace(a.SelectedKey)
		if cardID == "" || len(cardID) > 20 || key == "" || len(key) > 10 {
			return nil, apierr.BadRequest("invalid_answer", "each answer needs a card_id and a selected_key")
		}
	}

	p, err := loadPatient(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	bite, err := s.bites.GetByIDForPatient(ctx, nil, p.ID, biteID)
	if err != nil {
		return nil, internalErr("load_bite_failed", err)
	}
	if bite == nil {
		return nil, apierr.NotFound("bite_not_found", "Bite session not found or doesn't belong to you")
	}

	rows := make([]*types.StrokeBiteAnswer, 0, len(answers))
	for _, a := range answers {
		rows = append(rows, &types.StrokeBiteAnswer{
			BiteID:        bite.ID,
			PatientID:     p.ID,
			CardID:        strings.TrimSpace(a.CardID),
			SelectedKey:   strings.TrimSpace(a.SelectedKey),
			QuestionText:  a.QuestionText,
			SelectedLabel: a.SelectedLabel,
		})
	}
	saved, err := s.answers.CreateBatch(ctx, nil, rows)
	if err != nil {
		return nil, internalErr("save_answers_failed", fmt.Errorf("create answers: %w", err))
	}
	out := &BiteAnswersResult{ID: bite.ID, BiteID: bite.ID, Saved: true, AnswersCount: len(saved)}
	if len(saved) > 0 && saved[0].ID != uuid.Nil {
		out.ID = saved[0].ID
	}
	return out, nil
}
