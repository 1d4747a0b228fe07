package journal

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/strokecovery/strokecovery-backend/internal/data/dberr"
	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

type AilmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, e *types.AilmentEntry) (*types.AilmentEntry, error)
	GetForPatient(ctx context.Context, tx *gorm.DB, patientID, id uuid.UUID) (*types.AilmentEntry, error)
	// List filters by exact symptom when symptom is non-empty.
	List(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, symptom string, f ListFilter) ([]*types.AilmentEntry, error)
	ListBetween(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, from, to time.Time) ([]*types.AilmentEntry, error)
	Save(ctx context.Context, tx *gorm.DB, e *types.AilmentEntry) error
	Delete(ctx context.Context, tx *gorm.DB, patientID, id uuid.UUID) (bool, error)
}

type ailmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAilmentRepo(db *gorm.DB, baseLog *logger.Logger) AilmentRepo {
	return &ailmentRepo{db: db, log: baseLog.With("repo", "AilmentRepo")}
}

func (r *ailmentRepo) Create(ctx context.Context, tx *gorm.DB, e *types.AilmentEntry) (*types.AilmentEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

func (r *ailmentRepo) GetForPatient(ctx context.Context, tx *gorm.DB, patientID, id uuid.UUID) (*types.AilmentEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var e types.AilmentEntry
	err := transaction.WithContext(ctx).Where("id = ? AND patient_id = ?", id, patientID).First(&e).Error
	if dberr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *ailmentRepo) List(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, symptom string, f ListFilter) ([]*types.AilmentEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Where("patient_id = ?", patientID)
	if s := strings.TrimSpace(symptom); s != "" {
		q = q.Where("symptom = ?", s)
	}
	q = f.apply(q, "entry_date", 50)
	var out []*types.AilmentEntry
	if err := q.Order("entry_date DESC").Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ailmentRepo) Save(ctx context.Context, tx *gorm.DB, e *types.AilmentEntry) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(e).Error
}

func (r *ailmentRepo) Delete(ctx context.Context, tx *gorm.DB, patientID, id uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).Where("id = ? AND patient_id = ?", id, patientID).Delete(&types.AilmentEntry{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ailmentRepo) ListBetween(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, from, to time.Time) ([]*types.AilmentEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.AilmentEntry
	if err := transaction.WithContext(ctx).
		Where("patient_id = ? AND entry_date >= ? AND entry_date <= ?", patientID, from, to).
		Order("entry_date ASC").
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
