package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/strokecovery/strokecovery-backend/internal/data/dberr"
	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

// TherapyTotals is the aggregate row behind the therapy stats endpoint.
type TherapyTotals struct {
	TotalSessions int64    `gorm:"column:total_sessions"`
	TotalMinutes  int64    `gorm:"column:total_minutes"`
	AvgFeeling    *float64 `gorm:"column:avg_feeling"`
}

type TherapyTypeCount struct {
	TherapyType string `gorm:"column:therapy_type"`
	Count       int64  `gorm:"column:count"`
}

type TherapyRepo interface {
	Create(ctx context.Context, tx *gorm.DB, s *types.TherapySession) (*types.TherapySession, error)
	GetForPatient(ctx context.Context, tx *gorm.DB, patientID, id uuid.UUID) (*types.TherapySession, error)
	List(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, therapyType string, f ListFilter) ([]*types.TherapySession, error)
	// ListBetween returns every session in [from, to], oldest first.
	ListBetween(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, from, to time.Time) ([]*types.TherapySession, error)
	Save(ctx context.Context, tx *gorm.DB, s *types.TherapySession) error
	Delete(ctx context.Context, tx *gorm.DB, patientID, id uuid.UUID) (bool, error)
	Totals(ctx context.Context, tx *gorm.DB, patientID uuid.UUID) (*TherapyTotals, error)
	CountByType(ctx context.Context, tx *gorm.DB, patientID uuid.UUID) ([]TherapyTypeCount, error)
	CountSince(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, since time.Time) (int64, error)
}

type therapyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTherapyRepo(db *gorm.DB, baseLog *logger.Logger) TherapyRepo {
	return &therapyRepo{db: db, log: baseLog.With("repo", "TherapyRepo")}
}

func (r *therapyRepo) Create(ctx context.Context, tx *gorm.DB, s *types.TherapySession) (*types.TherapySession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

func (r *therapyRepo) GetForPatient(ctx context.Context, tx *gorm.DB, patientID, id uuid.UUID) (*types.TherapySession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var s types.TherapySession
	err := transaction.WithContext(ctx).Where("id = ? AND patient_id = ?", id, patientID).First(&s).Error
	if dberr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *therapyRepo) List(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, therapyType string, f ListFilter) ([]*types.TherapySession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Where("patient_id = ?", patientID)
	if therapyType != "" {
		q = q.Where("therapy_type = ?", therapyType)
	}
	q = f.apply(q, "session_date", 50)
	var out []*types.TherapySession
	if err := q.Order("session_date DESC").Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *therapyRepo) ListBetween(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, from, to time.Time) ([]*types.TherapySession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.TherapySession
	if err := transaction.WithContext(ctx).
		Where("patient_id = ? AND session_date >= ? AND session_date <= ?", patientID, from, to).
		Order("session_date ASC").
		Order("session_time ASC NULLS LAST").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *therapyRepo) Save(ctx context.Context, tx *gorm.DB, s *types.TherapySession) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(s).Error
}

func (r *therapyRepo) Delete(ctx context.Context, tx *gorm.DB, patientID, id uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).Where("id = ? AND patient_id = ?", id, patientID).Delete(&types.TherapySession{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *therapyRepo) Totals(ctx context.Context, tx *gorm.DB, patientID uuid.UUID) (*TherapyTotals, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out TherapyTotals
	if err := transaction.WithContext(ctx).
		Model(&types.TherapySession{}).
		Select("COUNT(*) AS total_sessions, COALESCE(SUM(duration_minutes), 0) AS total_minutes, AVG(feeling_rating) AS avg_feeling").
		Where("patient_id = ?", patientID).
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *therapyRepo) CountByType(ctx context.Context, tx *gorm.DB, patientID uuid.UUID) ([]TherapyTypeCount, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []TherapyTypeCount
	if err := transaction.WithContext(ctx).
		Model(&types.TherapySession{}).
		Select("therapy_type, COUNT(*) AS count").
		Where("patient_id = ?", patientID).
		Group("therapy_type").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *therapyRepo) CountSince(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, since time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	err := transaction.WithContext(ctx).
		Model(&types.TherapySession{}).
		Where("patient_id = ? AND session_date >= ?", patientID, since).
		Count(&n).Error
	return n, err
}
