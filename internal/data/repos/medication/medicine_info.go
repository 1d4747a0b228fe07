package medication

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/strokecovery/strokecovery-backend/internal/data/dberr"
	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

type MedicineInfoRepo interface {
	// GetByName matches case-insensitively; (nil, nil) on miss.
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.MedicineInfo, error)
	Create(ctx context.Context, tx *gorm.DB, info *types.MedicineInfo) (*types.MedicineInfo, error)
	// Search returns rows whose name contains q and whose drug class is known.
	Search(ctx context.Context, tx *gorm.DB, q string, limit int) ([]*types.MedicineInfo, error)
}

type medicineInfoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMedicineInfoRepo(db *gorm.DB, baseLog *logger.Logger) MedicineInfoRepo {
	return &medicineInfoRepo{db: db, log: baseLog.With("repo", "MedicineInfoRepo")}
}

func (r *medicineInfoRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.MedicineInfo, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var info types.MedicineInfo
	err := transaction.WithContext(ctx).
		Where("lower(medicine_name) = lower(?)", strings.TrimSpace(name)).
		First(&info).Error
	if dberr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (r *medicineInfoRepo) Create(ctx context.Context, tx *gorm.DB, info *types.MedicineInfo) (*types.MedicineInfo, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(info).Error; err != nil {
		return nil, err
	}
	return info, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *medicineInfoRepo) Search(ctx context.Context, tx *gorm.DB, q string, limit int) ([]*types.MedicineInfo, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 10
	}
	var out []*types.MedicineInfo
	if err := transaction.WithContext(ctx).
		Where("medicine_name ILIKE ?", "%"+escapeLike(strings.TrimSpace(q))+"%").
		Where("drug_class IS NOT NULL AND lower(drug_class) <> 'unknown'").
		Order("medicine_name ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
