package research

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

// InsightFilter narrows insight queries. Zero values mean "no filter".
type InsightFilter struct {
	// StrokeTypes matches insights sharing at least one type (&&).
	StrokeTypes []string
	// StrokeType matches insights whose types contain it (@>).
	StrokeType    string
	RecoveryPhase string
	ExcludeIDs    []uuid.UUID
}

func (f InsightFilter) apply(q *gorm.DB) *gorm.DB {
	if len(f.StrokeTypes) > 0 {
		q = q.Where("stroke_types && ?", pq.StringArray(f.StrokeTypes))
	}
	if f.StrokeType != "" {
		q = q.Where("stroke_types @> ?", pq.StringArray{f.StrokeType})
	}
	if f.RecoveryPhase != "" {
		q = q.Where("recovery_phase = ?", f.RecoveryPhase)
	}
	if len(f.ExcludeIDs) > 0 {
		q = q.Where("id NOT IN ?", f.ExcludeIDs)
	}
	return q
}

type InsightRepo interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, insights []*types.Insight) error
	// SearchSimilar orders by cosine distance; Similarity is 1 - distance.
	SearchSimilar(ctx context.Context, tx *gorm.DB, embedding []float32, f InsightFilter, limit int) ([]*types.ScoredInsight, error)
	RandomSample(ctx context.Context, tx *gorm.DB, f InsightFilter, limit int) ([]*types.Insight, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type insightRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInsightRepo(db *gorm.DB, baseLog *logger.Logger) InsightRepo {
	return &insightRepo{db: db, log: baseLog.With("repo", "InsightRepo")}
}

func (r *insightRepo) CreateBatch(ctx context.Context, tx *gorm.DB, insights []*types.Insight) error {
	if len(insights) == 0 {
		return nil
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).CreateInBatches(&insights, 100).Error
}

func (r *insightRepo) SearchSimilar(ctx context.Context, tx *gorm.DB, embedding []float32, f InsightFilter, limit int) ([]*types.ScoredInsight, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 5
	}
	vec := pgvector.NewVector(embedding)
	q := transaction.WithContext(ctx).
		Model(&types.Insight{}).
		Select("insights.*, 1 - (embedding <=> ?) AS similarity", vec).
		Where("embedding IS NOT NULL")
	q = f.apply(q)
	var out []*types.ScoredInsight
	if err := q.
		Order(clause.Expr{SQL: "embedding <=> ?", Vars: []any{vec}}).
		Limit(limit).
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *insightRepo) RandomSample(ctx context.Context, tx *gorm.DB, f InsightFilter, limit int) ([]*types.Insight, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	out := []*types.Insight{}
	if limit <= 0 {
		return out, nil
	}
	q := f.apply(transaction.WithContext(ctx).Omit("embedding"))
	if err := q.Order("random()").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *insightRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	err := transaction.WithContext(ctx).Model(&types.Insight{}).Count(&n).Error
	return n, err
}
