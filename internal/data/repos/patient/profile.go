package patient

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/strokecovery/strokecovery-backend/internal/data/dberr"
	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

type ProfileRepo interface {
	Create(ctx context.Context, tx *gorm.DB, p *types.PatientProfile) (*types.PatientProfile, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.PatientProfile, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.PatientProfile, error)
	Save(ctx context.Context, tx *gorm.DB, p *types.PatientProfile) error
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return &profileRepo{db: db, log: baseLog.With("repo", "ProfileRepo")}
}

func (r *profileRepo) Create(ctx context.Context, tx *gorm.DB, p *types.PatientProfile) (*types.PatientProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// GetByUserID returns (nil, nil) when the user has not onboarded.
func (r *profileRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.PatientProfile, error) {
	return r.first(ctx, tx, "user_id = ?", userID)
}

func (r *profileRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.PatientProfile, error) {
	return r.first(ctx, tx, "id = ?", id)
}

func (r *profileRepo) first(ctx context.Context, tx *gorm.DB, where string, arg any) (*types.PatientProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var p types.PatientProfile
	err := transaction.WithContext(ctx).Where(where, arg).First(&p).Error
	if dberr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Save writes every column of p, nil pointers included.
func (r *profileRepo) Save(ctx context.Context, tx *gorm.DB, p *types.PatientProfile) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(p).Error
}
