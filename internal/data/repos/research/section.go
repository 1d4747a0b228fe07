package research

import (
	"context"

	"gorm.io/gorm"

	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

type SectionRepo interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, sections []*types.PaperSection) error
}

type sectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSectionRepo(db *gorm.DB, baseLog *logger.Logger) SectionRepo {
	return &sectionRepo{db: db, log: baseLog.With("repo", "PaperSectionRepo")}
}

func (r *sectionRepo) CreateBatch(ctx context.Context, tx *gorm.DB, sections []*types.PaperSection) error {
	if len(sections) == 0 {
		return nil
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).CreateInBatches(&sections, 100).Error
}
