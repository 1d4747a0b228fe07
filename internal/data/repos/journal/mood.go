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

type MoodRepo interface {
	Create(ctx context.Context, tx *gorm.DB, e *types.MoodEntry) (*types.MoodEntry, error)
	GetForPatient(ctx context.Context, tx *gorm.DB, patientID, id uuid.UUID) (*types.MoodEntry, error)
	GetByDate(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, day time.Time) (*types.MoodEntry, error)
	List(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, f ListFilter) ([]*types.MoodEntry, error)
	ListBetween(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, from, to time.Time) ([]*types.MoodEntry, error)
	Save(ctx context.Context, tx *gorm.DB, e *types.MoodEntry) error
	Delete(ctx context.Context, tx *gorm.DB, patientID, id uuid.UUID) (bool, error)
}

type moodRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMoodRepo(db *gorm.DB, baseLog *logger.Logger) MoodRepo {
	return &moodRepo{db: db, log: baseLog.With("repo", "MoodRepo")}
}

func (r *moodRepo) Create(ctx context.Context, tx *gorm.DB, e *types.MoodEntry) (*types.MoodEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

func (r *moodRepo) GetForPatient(ctx context.Context, tx *gorm.DB, patientID, id uuid.UUID) (*types.MoodEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var e types.MoodEntry
	err := transaction.WithContext(ctx).Where("id = ? AND patient_id = ?", id, patientID).First(&e).Error
	if dberr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *moodRepo) GetByDate(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, day time.Time) (*types.MoodEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var e types.MoodEntry
	err := transaction.WithContext(ctx).Where("patient_id = ? AND entry_date = ?", patientID, day).First(&e).Error
	if dberr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *moodRepo) List(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, f ListFilter) ([]*types.MoodEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Where("patient_id = ?", patientID)
	q = f.apply(q, "entry_date", 30)
	var out []*types.MoodEntry
	if err := q.Order("entry_date DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *moodRepo) Save(ctx context.Context, tx *gorm.DB, e *types.MoodEntry) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(e).Error
}

func (r *moodRepo) Delete(ctx context.Context, tx *gorm.DB, patientID, id uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).Where("id = ? AND patient_id = ?", id, patientID).Delete(&types.MoodEntry{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *moodRepo) ListBetween(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, from, to time.Time) ([]*types.MoodEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.MoodEntry
	if err := transaction.WithContext(ctx).
		Where("patient_id = ? AND entry_date >= ? AND entry_date <= ?", patientID, from, to).
		Order("entry_date ASC").
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
