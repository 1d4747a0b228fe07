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

type MedicineLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, l *types.MedicineLog) (*types.MedicineLog, error)
	Save(ctx context.Context, tx *gorm.DB, l *types.MedicineLog) error
	// FindForSlot matches on the calendar day of scheduled_time, not the exact instant.
	FindForSlot(ctx context.Context, tx *gorm.DB, medicineID uuid.UUID, timeOfDay string, day time.Time) (*types.MedicineLog, error)
	ListByMedicine(ctx context.Context, tx *gorm.DB, medicineID uuid.UUID, limit int) ([]*types.MedicineLog, error)
	ListForMedicinesBetween(ctx context.Context, tx *gorm.DB, medicineIDs []uuid.UUID, from, to time.Time) ([]*types.MedicineLog, error)
	// ListForPatientBetween preloads Medicine on every log.
	ListForPatientBetween(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, from, to time.Time) ([]*types.MedicineLog, error)
}

type medicineLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMedicineLogRepo(db *gorm.DB, baseLog *logger.Logger) MedicineLogRepo {
	return &medicineLogRepo{db: db, log: baseLog.With("repo", "MedicineLogRepo")}
}

func (r *medicineLogRepo) Create(ctx context.Context, tx *gorm.DB, l *types.MedicineLog) (*types.MedicineLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Omit("Medicine").Create(l).Error; err != nil {
		return nil, err
	}
	return l, nil
}

func (r *medicineLogRepo) Save(ctx context.Context, tx *gorm.DB, l *types.MedicineLog) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Omit("Medicine").Save(l).Error
}

func (r *medicineLogRepo) FindForSlot(ctx context.Context, tx *gorm.DB, medicineID uuid.UUID, timeOfDay string, day time.Time) (*types.MedicineLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var l types.MedicineLog
	err := transaction.WithContext(ctx).
		Where("medicine_id = ? AND time_of_day = ?", medicineID, timeOfDay).
		Where("scheduled_time >= ? AND scheduled_time < ?", day, day.AddDate(0, 0, 1)).
		Order("scheduled_time ASC").
		First(&l).Error
	if dberr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *medicineLogRepo) ListByMedicine(ctx context.Context, tx *gorm.DB, medicineID uuid.UUID, limit int) ([]*types.MedicineLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 30
	}
	var out []*types.MedicineLog
	if err := transaction.WithContext(ctx).
		Where("medicine_id = ?", medicineID).
		Order("scheduled_time DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *medicineLogRepo) ListForMedicinesBetween(ctx context.Context, tx *gorm.DB, medicineIDs []uuid.UUID, from, to time.Time) ([]*types.MedicineLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	out := []*types.MedicineLog{}
	if len(medicineIDs) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(ctx).
		Where("medicine_id IN ?", medicineIDs).
		Where("scheduled_time >= ? AND scheduled_time < ?", from, to).
		Order("scheduled_time ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *medicineLogRepo) ListForPatientBetween(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, from, to time.Time) ([]*types.MedicineLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.MedicineLog
	if err := transaction.WithContext(ctx).
		Joins("Medicine").
		Where(`"Medicine"."patient_id" = ?`, patientID).
		Where("medicine_logs.scheduled_time >= ? AND medicine_logs.scheduled_time < ?", from, to).
		Order("medicine_logs.scheduled_time ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
