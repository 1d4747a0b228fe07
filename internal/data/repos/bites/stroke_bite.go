package bites

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/strokecovery/strokecovery-backend/internal/data/dberr"
	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

type StrokeBiteRepo interface {
	// Create surfaces the unique (patient_id, generated_date) violation untouched; callers detect it with dberr.
	Create(ctx context.Context, tx *gorm.DB, b *types.StrokeBite) (*types.StrokeBite, error)
	GetByPatientDate(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, day time.Time) (*types.StrokeBite, error)
	GetByIDForPatient(ctx context.Context, tx *gorm.DB, patientID, id uuid.UUID) (*types.StrokeBite, error)
	// ListSince returns bites generated on or after since, newest first.
	ListSince(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, since time.Time) ([]*types.StrokeBite, error)
}

type strokeBiteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStrokeBiteRepo(db *gorm.DB, baseLog *logger.Logger) StrokeBiteRepo {
	return &strokeBiteRepo{db: db, log: baseLog.With("repo", "StrokeBiteRepo")}
}

func (r *strokeBiteRepo) Create(ctx context.Context, tx *gorm.DB, b *types.StrokeBite) (*types.StrokeBite, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(b).Error; err != nil {
		return nil, err
	}
	return b, nil
}

func (r *strokeBiteRepo) GetByPatientDate(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, day time.Time) (*types.StrokeBite, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var b types.StrokeBite
	err := transaction.WithContext(ctx).
		Where("patient_id = ? AND generated_date = ?", patientID, day).
		First(&b).Error
	if dberr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *strokeBiteRepo) GetByIDForPatient(ctx context.Context, tx *gorm.DB, patientID, id uuid.UUID) (*types.StrokeBite, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var b types.StrokeBite
	err := transaction.WithContext(ctx).
		Where("id = ? AND patient_id = ?", id, patientID).
		First(&b).Error
	if dberr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *strokeBiteRepo) ListSince(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, since time.Time) ([]*types.StrokeBite, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.StrokeBite
	if err := transaction.WithContext(ctx).
		Where("patient_id = ? AND generated_date >= ?", patientID, since).
		Order("generated_date DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
