package research

import (
	"context"

	"gorm.io/gorm"

	"github.com/strokecovery/strokecovery-backend/internal/data/dberr"
	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

type PaperRepo interface {
	Create(ctx context.Context, tx *gorm.DB, p *types.Paper) (*types.Paper, error)
	GetByHash(ctx context.Context, tx *gorm.DB, hash string) (*types.Paper, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type paperRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPaperRepo(db *gorm.DB, baseLog *logger.Logger) PaperRepo {
	return &paperRepo{db: db, log: baseLog.With("repo", "PaperRepo")}
}

func (r *paperRepo) Create(ctx context.Context, tx *gorm.DB, p *types.Paper) (*types.Paper, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *paperRepo) GetByHash(ctx context.Context, tx *gorm.DB, hash string) (*types.Paper, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var p types.Paper
	err := transaction.WithContext(ctx).Where("hash = ?", hash).First(&p).Error
	if dberr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paperRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	err := transaction.WithContext(ctx).Model(&types.Paper{}).Count(&n).Error
	return n, err
}
