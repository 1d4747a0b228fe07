package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/strokecovery/strokecovery-backend/internal/data/repos"
	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/pkg/dates"
	"github.com/strokecovery/strokecovery-backend/internal/platform/apierr"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

type AilmentInput struct {
	EntryDate    *time.Time
	Symptom      *string
	BodyLocation *string
	Severity     *int
	Notes        *string
}

type AilmentService interface {
	Create(ctx context.Context, userID uuid.UUID, in AilmentInput) (*types.AilmentEntry, error)
	List(ctx context.Context, userID uuid.UUID, symptom string, q ListQuery) ([]*types.AilmentEntry, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*types.AilmentEntry, error)
	Update(ctx context.Context, userID, id uuid.UUID, in AilmentInput) (*types.AilmentEntry, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type ailmentService struct {
	log      *logger.Logger
	profiles repos.ProfileRepo
	ailments repos.AilmentRepo
	now      dates.Clock
}

func NewAilmentService(log *logger.Logger, profiles repos.ProfileRepo, ailments repos.AilmentRepo, now dates.Clock) AilmentService {
	if now == nil {
		now = dates.SystemClock
	}
	return &ailmentService{log: log.With("service", "AilmentService"), profiles: profiles, ailments: ailments, now: now}
}

func validateAilment(in *AilmentInput) error {
	if in.Severity != nil && (*in.Severity < 1 || *in.Severity > 10) {
		return apierr.BadRequest("invalid_severity", "severity must be between 1 and 10")
	}
	if in.Symptom != nil {
		s := strings.TrimSpace(*in.Symptom)
		if s == "" || len(s) > 50 {
			return apierr.BadRequest("invalid_symptom", "symptom must be 1 to 50 characters")
		}
		in.Symptom = &s
	}
	if in.BodyLocation != nil && len(*in.BodyLocation) > 50 {
		return apierr.BadRequest("invalid_body_location", "body_location must be at most 50 characters")
	}
	return nil
}

func (s *ailmentService) Create(ctx context.Context, userID uuid.UUID, in AilmentInput) (*types.AilmentEntry, error) {
	if in.Symptom == nil || in.Severity == nil {
		return nil, apierr.BadRequest("invalid_request", "symptom and severity are required")
	}
	if err := validateAilment(&in); err != nil {
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
	created, err := s.ailments.Create(ctx, nil, &types.AilmentEntry{
		PatientID:    p.ID,
		EntryDate:    day,
		Symptom:      *in.Symptom,
		BodyLocation: in.BodyLocation,
		Severity:     *in.Severity,
		Notes:        in.Notes,
	})
	if err != nil {
		return nil, internalErr("create_ailment_failed", fmt.Errorf("create ailment: %w", err))
	}
	return created, nil
}

func (s *ailmentService) List(ctx context.Context, userID uuid.UUID, symptom string, q ListQuery) ([]*types.AilmentEntry, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	p, err := loadPatient(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	out, err := s.ailments.List(ctx, nil, p.ID, strings.TrimSpace(symptom), q.filter(50))
	if err != nil {
		return nil, internalErr("list_ailments_failed", err)
	}
	return out, nil
}

func (s *ailmentService) get(ctx context.Context, patientID, id uuid.UUID) (*types.AilmentEntry, error) {
	e, err := s.ailments.GetForPatient(ctx, nil, patientID, id)
	if err != nil {
		return nil, internalErr("load_ailment_failed", err)
	}
	if e == nil {
		return nil, apierr.NotFound("ailment_not_found", "Ailment entry not found")
	}
	return e, nil
}

func (s *ailmentService) Get(ctx context.Context, userID, id uuid.UUID) (*types.AilmentEntry, error) {
	p, err := loadPatient(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, p.ID, id)
}

func (s *ailmentService) Update(ctx context.Context, userID, id uuid.UUID, in AilmentInput) (*types.AilmentEntry, error) {
	if err := validateAilment(&in); err != nil {
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
		e.EntryDate = dates.Day(*in.EntryDate)
	}
	if in.Symptom != nil {
		e.Symptom = *in.Symptom
	}
	if in.BodyLocation != nil {
		e.BodyLocation = in.BodyLocation
	}
	if in.Severity != nil {
		e.Severity = *in.Severity
	}
	if in.Notes != nil {
		e.Notes = in.Notes
	}
	if err := s.ailments.Save(ctx, nil, e); err != nil {
		return nil, internalErr("update_ailment_failed", fmt.Errorf("save ailment: %w", err))
	}
	return e, nil
}

func (s *ailmentService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	p, err := loadPatient(ctx, s.profiles, userID)
	if err != nil {
		return err
	}
	ok, err := s.ailments.Delete(ctx, nil, p.ID, id)
	if err != nil {
		return internalErr("delete_ailment_failed", err)
	}
	if !ok {
		return apierr.NotFound("ailment_not_found", "Ailment entry not found")
	}
	return nil
}
