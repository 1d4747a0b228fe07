package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/strokecovery/strokecovery-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	hash := "hash"
	u := &types.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: &hash,
		AuthProvider: "email",
		Role:         "patient",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID) *types.PatientProfile {
	tb.Helper()
	p := &types.PatientProfile{
		ID:                  uuid.New(),
		UserID:              userID,
		CurrentTherapies:    []string{"PT"},
		OnboardingCompleted: true,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return p
}

func SeedMedicine(tb testing.TB, ctx context.Context, tx *gorm.DB, patientID uuid.UUID, name string) *types.Medicine {
	tb.Helper()
	m := &types.Medicine{
		ID:        uuid.New(),
		PatientID: patientID,
		Name:      name,
		Morning:   true,
		Night:     true,
		Timing:    "any_time",
		StartDate: time.Now().UTC().AddDate(0, 0, -3).Truncate(24 * time.Hour),
		IsActive:  true,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed medicine: %v", err)
	}
	return m
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
