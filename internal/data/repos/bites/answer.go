package bites

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

type AnswerRepo interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, answers []*types.StrokeBiteAnswer) ([]*types.StrokeBiteAnswer, error)
	// ListSince returns answers created at or after since, oldest first.
	ListSince(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, since time.Time) ([]*types.StrokeBiteAnswer, error)
}

type answerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnswerRepo(db *gorm.DB, baseLog *logger.Logger) AnswerRepo {
	return &answerRepo{db: db, log: baseLog.With("repo", "StrokeBiteAnswerRepo")}
}

func (r *answerRepo) CreateBatch(ctx context.Context, tx *gorm.DB, answers []*types.StrokeBiteAnswer) ([]*types.StrokeBiteAnswer, error) {
	if len(answers) == 0 {
		return answers, nil
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *answerRepo) ListSince(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, since time.Time) ([]*types.StrokeBiteAnswer, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.StrokeBiteAnswer
	if err := transaction.WithContext(ctx).
		Where("patient_id = ? AND created_at >= ?", patientID, since).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
