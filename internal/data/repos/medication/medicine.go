package medication

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/strokecovery/strokecovery-backend/internal/data/dberr"
	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

type MedicineRepo interface {
	Create(ctx context.Context, tx *gorm.DB, m *types.Medicine) (*types.Medicine, error)
	GetForPatient(ctx context.Context, tx *gorm.DB, patientID, id uuid.UUID) (*types.Medicine, error)
	ListByPatient(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, includeInactive bool, today time.Time) ([]*types.Medicine, error)
	// ListActiveOn returns medicines whose course covers day.
	ListActiveOn(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, day time.Time) ([]*types.Medicine, error)
	Save(ctx context.Context, tx *gorm.DB, m *types.Medicine) error
	Delete(ctx context.Context, tx *gorm.DB, patientID, id uuid.UUID) (bool, error)
}

type medicineRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMedicineRepo(db *gorm.DB, baseLog *logger.Logger) MedicineRepo {
	return &medicineRepo{db: db, log: baseLog.With("repo", "MedicineRepo")}
}

func (r *medicineRepo) Create(ctx context.Context, tx *gorm.DB, m *types.Medicine) (*types.Medicine, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

func (r *medicineRepo) GetForPatient(ctx context.Context, tx *gorm.DB, patientID, id uuid.UUID) (*types.Medicine, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var m types.Medicine
	err := transaction.WithContext(ctx).
		Where("id = ? AND patient_id = ?", id, patientID).
		First(&m).Error
	if dberr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *medicineRepo) ListByPatient(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, includeInactive bool, today time.Time) ([]*types.Medicine, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Where("patient_id = ?", patientID)
	if !includeInactive {
		q = q.Where("is_active = ?", true).Where("(end_date IS NULL OR end_date >= ?)", today)
	}
	var out []*types.Medicine
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *medicineRepo) ListActiveOn(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, day time.Time) ([]*types.Medicine, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Medicine
	if err := transaction.WithContext(ctx).
		Where("patient_id = ? AND is_active = ?", patientID, true).
		Where("start_date <= ?", day).
		Where("(end_date IS NULL OR end_date >= ?)", day).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *medicineRepo) Save(ctx context.Context, tx *gorm.DB, m *types.Medicine) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(m).Error
}

// Delete soft-deletes; it reports false when nothing matched.
func (r *medicineRepo) Delete(ctx context.Context, tx *gorm.DB, patientID, id uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Where("id = ? AND patient_id = ?", id, patientID).
		Delete(&types.Medicine{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
