package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/strokecovery/strokecovery-backend/internal/data/repos"
	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/domain/patient"
	"github.com/strokecovery/strokecovery-backend/internal/platform/apierr"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

// ProfileInput carries onboarding and update fields; nil means "not provided".
type ProfileInput struct {
	StrokeDate          *time.Time
	StrokeType          *string
	AffectedSide        *string
	CurrentTherapies    []string
	TherapiesSet        bool
	OnboardingCompleted *bool
}

type ProfileStatus struct {
	HasProfile          bool `json:"has_profile"`
	OnboardingCompleted bool `json:"onboarding_completed"`
}

type ProfileService interface {
	Get(ctx context.Context, userID uuid.UUID) (*types.PatientProfile, error)
	Check(ctx context.Context, userID uuid.UUID) (*ProfileStatus, error)
	Update(ctx context.Context, userID uuid.UUID, in ProfileInput) (*types.PatientProfile, error)
	// CompleteOnboarding upserts the profile; created reports whether a new row was inserted.
	CompleteOnboarding(ctx context.Context, userID uuid.UUID, in ProfileInput) (p *types.PatientProfile, created bool, err error)
}

type profileService struct {
	log      *logger.Logger
	profiles repos.ProfileRepo
}

func NewProfileService(log *logger.Logger, profiles repos.ProfileRepo) ProfileService {
	return &profileService{log: log.With("service", "ProfileService"), profiles: profiles}
}

func validateProfileInput(in *ProfileInput) error {
	if in.StrokeType != nil {
		v := strings.ToLower(strings.TrimSpace(*in.StrokeType))
		if !patient.ValidStrokeType(v) {
			return apierr.BadRequest("invalid_stroke_type", "stroke_type must be one of ischemic, hemorrhagic, tbi, unspecified")
		}
		in.StrokeType = &v
	}
	if in.AffectedSide != nil {
		v := strings.ToLower(strings.TrimSpace(*in.AffectedSide))
		if !patient.ValidAffectedSide(v) {
			return apierr.BadRequest("invalid_affected_side", "affected_side must be one of left, right, both, unknown")
		}
		in.AffectedSide = &v
	}
	if in.TherapiesSet {
		clean := make([]string, 0, len(in.CurrentTherapies))
		for _, t := range in.CurrentTherapies {
			if t = strings.TrimSpace(t); t != "" {
				clean = append(clean, t)
			}
		}
		in.CurrentTherapies = clean
	}
	return nil
}

func (ps *profileService) Get(ctx context.Context, userID uuid.UUID) (*types.PatientProfile, error) {
	p, err := loadPatient(ctx, ps.profiles, userID)
	if err != nil {
		if ae, ok := apierr.As(err); ok && ae.Code == "profile_not_found" {
			return nil, apierr.NotFound("profile_not_found", "Profile not found. Complete onboarding first.")
		}
		return nil, err
	}
	return p, nil
}

func (ps *profileService) Check(ctx context.Context, userID uuid.UUID) (*ProfileStatus, error) {
	p, err := ps.profiles.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, internalErr("load_profile_failed", err)
	}
	if p == nil {
		return &ProfileStatus{}, nil
	}
	return &ProfileStatus{HasProfile: true, OnboardingCompleted: p.OnboardingCompleted}, nil
}

func (ps *profileService) Update(ctx context.Context, userID uuid.UUID, in ProfileInput) (*types.PatientProfile, error) {
	if err := validateProfileInput(&in); err != nil {
		return nil, err
	}
	p, err := ps.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.StrokeDate != nil {
		p.StrokeDate = in.StrokeDate
	}
	if in.StrokeType != nil {
		p.StrokeType = in.StrokeType
	}
	if in.AffectedSide != nil {
		p.AffectedSide = in.AffectedSide
	}
	if in.TherapiesSet {
		p.CurrentTherapies = pq.StringArray(in.CurrentTherapies)
	}
	if in.OnboardingCompleted != nil {
		p.OnboardingCompleted = *in.OnboardingCompleted
	}
	if err := ps.profiles.Save(ctx, nil, p); err != nil {
		return nil, internalErr("update_profile_failed", fmt.Errorf("save profile: %w", err))
	}
	return p, nil
}

func (ps *profileService) CompleteOnboarding(ctx context.Context, userID uuid.UUID, in ProfileInput) (*types.PatientProfile, bool, error) {
	if userID == uuid.Nil {
		return nil, false, apierr.Unauthorized("unauthorized", "Invalid or expired token")
	}
	if err := validateProfileInput(&in); err != nil {
		return nil, false, err
	}
	existing, err := ps.profiles.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, false, internalErr("load_profile_failed", err)
	}
	// Onboarding replaces every field, including clearing ones the client omitted.
	if existing != nil {
		existing.StrokeDate = in.StrokeDate
		existing.StrokeType = in.StrokeType
		existing.AffectedSide = in.AffectedSide
		existing.CurrentTherapies = pq.StringArray(in.CurrentTherapies)
		existing.OnboardingCompleted = true
		if err := ps.profiles.Save(ctx, nil, existing); err != nil {
			return nil, false, internalErr("onboarding_failed", fmt.Errorf("save profile: %w", err))
		}
		return existing, false, nil
	}
	created, err := ps.profiles.Create(ctx, nil, &types.PatientProfile{
		UserID:              userID,
		StrokeDate:          in.StrokeDate,
		StrokeType:          in.StrokeType,
		AffectedSide:        in.AffectedSide,
		CurrentTherapies:    pq.StringArray(in.CurrentTherapies),
		OnboardingCompleted: true,
	})
	if err != nil {
		return nil, false, internalErr("onboarding_failed", fmt.Errorf("create profile: %w", err))
	}
	ps.log.Info("Onboarding completed", "user_id", userID, "profile_id", created.ID)
	return created, true, nil
}
