package games

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

type ResultRepo interface {
	Create(ctx context.Context, tx *gorm.DB, res *types.GameResult) (*types.GameResult, error)
	List(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, gameType string, limit, offset int) ([]*types.GameResult, error)
	// Count ignores paging; it is the total behind List.
	Count(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, gameType string) (int64, error)
	Counts(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, since *time.Time) (played, correct int64, err error)
	// PlayDates returns distinct UTC play dates, newest first.
	PlayDates(ctx context.Context, tx *gorm.DB, patientID uuid.UUID) ([]time.Time, error)
}

type resultRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResultRepo(db *gorm.DB, baseLog *logger.Logger) ResultRepo {
	return &resultRepo{db: db, log: baseLog.With("repo", "GameResultRepo")}
}

func (r *resultRepo) Create(ctx context.Context, tx *gorm.DB, res *types.GameResult) (*types.GameResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

func (r *resultRepo) List(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, gameType string, limit, offset int) ([]*types.GameResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 50
	}
	q := transaction.WithContext(ctx).Where("patient_id = ?", patientID)
	if gameType != "" {
		q = q.Where("game_type = ?", gameType)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	var out []*types.GameResult
	if err := q.Order("played_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *resultRepo) Count(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, gameType string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Model(&types.GameResult{}).Where("patient_id = ?", patientID)
	if gameType != "" {
		q = q.Where("game_type = ?", gameType)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

type counts struct {
	Played  int64 `gorm:"column:played"`
	Correct int64 `gorm:"column:correct"`
}

func (r *resultRepo) Counts(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, since *time.Time) (int64, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).
		Model(&types.GameResult{}).
		Select("COUNT(*) AS played, COALESCE(SUM(score), 0) AS correct").
		Where("patient_id = ?", patientID)
	if since != nil {
		q = q.Where("played_at >= ?", *since)
	}
	var c counts
	if err := q.Scan(&c).Error; err != nil {
		return 0, 0, err
	}
	return c.Played, c.Correct, nil
}

func (r *resultRepo) PlayDates(ctx context.Context, tx *gorm.DB, patientID uuid.UUID) ([]time.Time, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []time.Time
	if err := transaction.WithContext(ctx).
		Model(&types.GameResult{}).
		Distinct("(played_at AT TIME ZONE 'UTC')::date AS play_date").
		Where("patient_id = ?", patientID).
		Order("play_date DESC").
		Pluck("play_date", &out).Error; err != nil {
		return nil, err
	}
	for i := range out {
		out[i] = time.Date(out[i].Year(), out[i].Month(), out[i].Day(), 0, 0, 0, 0, time.UTC)
	}
	return out, nil
}
