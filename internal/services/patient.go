package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/strokecovery/strokecovery-backend/internal/data/repos"
	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/platform/apierr"
)

const msgProfileMissing = "Patient profile not found. Complete onboarding first."

// loadPatient resolves the caller's profile; every patient-scoped service goes through it.
func loadPatient(ctx context.Context, profiles repos.ProfileRepo, userID uuid.UUID) (*types.PatientProfile, error) {
	if userID == uuid.Nil {
		return nil, apierr.Unauthorized("unauthorized", "Invalid or expired token")
	}
	p, err := profiles.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_profile_failed", fmt.Errorf("load profile: %w", err))
	}
	if p == nil {
		return nil, apierr.NotFound("profile_not_found", msgProfileMissing)
	}
	return p, nil
}

// clampLimit applies a default for non-positive values and caps at max.
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

func internalErr(code string, err error) *apierr.Error {
	return apierr.New(http.StatusInternalServerError, code, err)
}
