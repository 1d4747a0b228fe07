package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/strokecovery/strokecovery-backend/internal/data/repos"
	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/pkg/dates"
	"github.com/strokecovery/strokecovery-backend/internal/platform/apierr"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

// ListQuery is the shared date-range and paging filter of the journal listings.
type ListQuery struct {
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

func (q ListQuery) validate() error {
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return apierr.BadRequest("invalid_range", "end_date must be on or after start_date")
	}
	return nil
}

func (q ListQuery) filter(defLimit int) repos.JournalFilter {
	return repos.JournalFilter{
		From:   q.From,
		To:     q.To,
		Limit:  clampLimit(q.Limit, defLimit, 200),
		Offset: clampOffset(q.Offset),
	}
}

type MoodInput struct {
	EntryDate *time.Time
	MoodLevel *int
	Notes     *string
}

type MoodService interface {
	Create(ctx context.Context, userID uuid.UUID, in MoodInput) (*types.MoodEntry, error)
	List(ctx context.Context, userID uuid.UUID, q ListQuery) ([]*types.MoodEntry, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*types.MoodEntry, error)
	Update(ctx context.Context, userID, id uuid.UUID, in MoodInput) (*types.MoodEntry, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type moodService struct {
	log      *logger.Logger
	profiles repos.ProfileRepo
	moods    repos.MoodRepo
	now      dates.Clock
}

func NewMoodService(log *logger.Logger, profiles repos.ProfileRepo, moods repos.MoodRepo, now dates.Clock) MoodService {
	if now == nil {
		now = dates.SystemClock
	}
	return &moodService{log: log.With("service", "MoodService"), profiles: profiles, moods: moods, now: now}
}

func validMoodLevel(v *int) error {
	if v != nil && (*v < 1 || *v > 5) {
		return apierr.BadRequest("invalid_mood_level", "mood_level must be between 1 and 5")
	}
	return nil
}

func (s *moodService) Create(ctx context.Context, userID uuid.UUID, in MoodInput) (*types.MoodEntry, error) {
	if in.MoodLevel == nil {
		return nil, apierr.BadRequest("invalid_mood_level", "mood_level is required")
	}
	if err := validMoodLevel(in.MoodLevel); err != nil {
		return nil, err
	}
	p, err := loadPatient(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	day := dates.Day(s.now())
	if in.EntryDate != nil {
		day = dates.Day(*in.EntryDate)
	}
	existing, err := s.moods.GetByDate(ctx, nil, p.ID, day)
	if err != nil {
		return nil, internalErr("create_mood_failed", err)
	}
	if existing != nil {
		return nil, apierr.BadRequest("mood_exists", "Mood entry already exists for this date. Use PUT to update.")
	}
	created, err := s.moods.Create(ctx, nil, &types.MoodEntry{
		PatientID: p.ID,
		EntryDate: day,
		MoodLevel: *in.MoodLevel,
		Notes:     in.Notes,
	})
	if err != nil {
		return nil, internalErr("create_mood_failed", fmt.Errorf("create mood: %w", err))
	}
	return created, nil
}

func (s *moodService) List(ctx context.Context, userID uuid.UUID, q ListQuery) ([]*types.MoodEntry, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	p, err := loadPatient(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	out, err := s.moods.List(ctx, nil, p.ID, q.filter(30))
	if err != nil {
		return nil, internalErr("list_mood_failed", err)
	}
	return out, nil
}

func (s *moodService) get(ctx context.Context, patientID, id uuid.UUID) (*types.MoodEntry, error) {
	e, err := s.moods.GetForPatient(ctx, nil, patientID, id)
	if err != nil {
		return nil, internalErr("load_mood_failed", err)
	}
	if e == nil {
		return nil, apierr.NotFound("mood_not_found", "Mood entry not found")
	}
	return e, nil
}

func (s *moodService) Get(ctx context.Context, userID, id uuid.UUID) (*types.MoodEntry, error) {
	p, err := loadPatient(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, p.ID, id)
}

func (s *moodService) Update(ctx context.Context, userID, id uuid.UUID, in MoodInput) (*types.MoodEntry, error) {
	if err := validMoodLevel(in.MoodLevel); err != nil {
		return nil, err
	}
	p, err := loadPatient(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	e, err := s.get(ctx, p.ID, id)
	if err != nil {
		return nil, err
	}
	if in.EntryDate != nil {
		day := dates.Day(*in.EntryDate)
		if !day.Equal(dates.Day(e.EntryDate)) {
			other, err := s.moods.GetByDate(ctx, nil, p.ID, day)
			if err != nil {
				return nil, internalErr("update_mood_failed", err)
			}
			if other != nil && other.ID != e.ID {
				return nil, apierr.BadRequest("mood_exists", "Mood entry already exists for this date")
			}
		}
		e.EntryDate = day
	}
	if in.MoodLevel != nil {
		e.MoodLevel = *in.MoodLevel
	}
	if in.Notes != nil {
		e.Notes = in.Notes
	}
	if err := s.moods.Save(ctx, nil, e); err != nil {
		return nil, internalErr("update_mood_failed", fmt.Errorf("save mood: %w", err))
	}
	return e, nil
}

func (s *moodService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	p, err := loadPatient(ctx, s.profiles, userID)
	if err != nil {
		return err
	}
	ok, err := s.moods.Delete(ctx, nil, p.ID, id)
	if err != nil {
		return internalErr("delete_mood_failed", err)
	}
	if !ok {
		return apierr.NotFound("mood_not_found", "Mood entry not found")
	}
	return nil
}
