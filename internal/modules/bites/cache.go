package bites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/strokecovery/strokecovery-backend/internal/data/dberr"
	"github.com/strokecovery/strokecovery-backend/internal/data/repos"
	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/pkg/dates"
	pkgerrors "github.com/strokecovery/strokecovery-backend/internal/pkg/errors"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
	"github.com/strokecovery/strokecovery-backend/internal/platform/rediscache"
)

// ErrStorageInconsistent means an insert hit the unique (patient, date)
// constraint but the re-read did not return that patient's row for that date.
var ErrStorageInconsistent = errors.New("stroke bite storage inconsistent")

var ErrProfileNotFound = fmt.Errorf("patient profile: %w", pkgerrors.ErrNotFound)

// SetGenerator produces a card set for one patient; *Orchestrator implements it.
type SetGenerator interface {
	GenerateForToday(ctx context.Context, profile *types.PatientProfile) (*GeneratedSet, error)
}

// DailyBite is a stored card set decoded for callers.
type DailyBite struct {
	ID            uuid.UUID
	PatientID     uuid.UUID
	GeneratedDate time.Time
	Set           GeneratedSet
	CreatedAt     time.Time
}

type DailyCacheDeps struct {
	Log       *logger.Logger
	DB        *gorm.DB
	Bites     repos.StrokeBiteRepo
	Profiles  repos.ProfileRepo
	Generator SetGenerator
	// Redis is optional; Postgres stays the source of truth.
	Redis     rediscache.Cache
	RedisTTL  time.Duration
	Observer  Observer
}

type DailyCache struct {
	deps DailyCacheDeps
	log  *logger.Logger
}

func NewDailyCache(deps DailyCacheDeps) *DailyCache {
	if deps.RedisTTL <= 0 {
		deps.RedisTTL = 26 * time.Hour
	}
	return &DailyCache{deps: deps, log: deps.Log.With("component", "BiteDailyCache")}
}

// Get returns the stored set for (patientID, day), or nil when none exists.
func (c *DailyCache) Get(ctx context.Context, patientID uuid.UUID, day time.Time) (*DailyBite, error) {
	day = dates.Day(day)
	if hit := c.readRedis(ctx, patientID, day); hit != nil {
		return hit, nil
	}
	row, err := c.deps.Bites.GetByPatientDate(ctx, nil, patientID, day)
	if err != nil {
		return nil, fmt.Errorf("load bite: %w", err)
	}
	if row == nil {
		return nil, nil
	}
	bite, err := DecodeBite(row)
	if err != nil {
		return nil, err
	}
	c.writeRedis(ctx, row)
	return bite, nil
}

// GetOrGenerate returns the day's set, generating and storing it on a miss.
// created reports whether this call's insert won. A concurrent creator that
// loses the insert returns the winner's row.
func (c *DailyCache) GetOrGenerate(ctx context.Context, patientID uuid.UUID, day time.Time) (*DailyBite, bool, error) {
	day = dates.Day(day)
	existing, err := c.Get(ctx, patientID, day)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		c.outcome(OutcomeCached)
		return existing, false, nil
	}

	profile, err := c.deps.Profiles.GetByID(ctx, nil, patientID)
	if err != nil {
		return nil, false, fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		return nil, false, ErrProfileNotFound
	}

	// The model call runs outside any transaction.
	set, err := c.deps.Generator.GenerateForToday(ctx, profile)
	if err != nil {
		return nil, false, fmt.Errorf("generate bites: %w", err)
	}
	doc, err := json.Marshal(set)
	if err != nil {
		return nil, false, fmt.Errorf("encode cards: %w", err)
	}
	row := &types.StrokeBite{
		PatientID:          patientID,
		GeneratedDate:      day,
		CardsJSON:          datatypes.JSON(doc),
		StartCardID:        set.StartCardID,
		CardSequenceLength: set.CardSequenceLength,
	}

	err = c.insert(ctx, row)
	if err == nil {
		c.writeRedis(ctx, row)
		return &DailyBite{
			ID:            row.ID,
			PatientID:     patientID,
			GeneratedDate: day,
			Set:           *set,
			CreatedAt:     row.CreatedAt,
		}, true, nil
	}
	if !dberr.IsUniqueViolation(err) {
		return nil, false, fmt.Errorf("store bite: %w", err)
	}

	winner, err := c.deps.Bites.GetByPatientDate(ctx, nil, patientID, day)
	if err != nil {
		return nil, false, fmt.Errorf("re-read bite after conflict: %w", err)
	}
	if winner == nil || winner.PatientID != patientID || !dates.Day(winner.GeneratedDate).Equal(day) {
		c.log.Error("Bite conflict re-read mismatch", "patient_id", patientID, "date", dates.Format(day), "found", winner != nil)
		return nil, false, ErrStorageInconsistent
	}
	c.outcome(OutcomeRaceLost)
	c.log.Info("Lost bite insert race, returning stored set", "patient_id", patientID, "date", dates.Format(day))
	bite, err := DecodeBite(winner)
	if err != nil {
		return nil, false, err
	}
	c.writeRedis(ctx, winner)
	return bite, false, nil
}

func (c *DailyCache) insert(ctx context.Context, row *types.StrokeBite) error {
	if c.deps.DB == nil {
		_, err := c.deps.Bites.Create(ctx, nil, row)
		return err
	}
	return c.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := c.deps.Bites.Create(ctx, tx, row)
		return err
	})
}

// DecodeBite turns a stored row into its card set.
func DecodeBite(row *types.StrokeBite) (*DailyBite, error) {
	var set GeneratedSet
	if err := json.Unmarshal(row.CardsJSON, &set); err != nil {
		return nil, fmt.Errorf("decode stored cards for bite %s: %w", row.ID, err)
	}
	if set.StartCardID == "" {
		set.StartCardID = row.StartCardID
	}
	if set.TotalCards == 0 {
		set.TotalCards = len(set.Cards)
	}
	if set.CardSequenceLength == 0 {
		set.CardSequenceLength = row.CardSequenceLength
	}
	return &DailyBite{
		ID:            row.ID,
		PatientID:     row.PatientID,
		GeneratedDate: dates.Day(row.GeneratedDate),
		Set:           set,
		CreatedAt:     row.CreatedAt,
	}, nil
}

type cachedBite struct {
	ID                 uuid.UUID       `json:"id"`
	PatientID          uuid.UUID       `json:"patient_id"`
	GeneratedDate      string          `json:"generated_date"`
	Cards              json.RawMessage `json:"cards_json"`
	StartCardID        string          `json:"start_card_id"`
	CardSequenceLength int             `json:"card_sequence_length"`
	CreatedAt          time.Time       `json:"created_at"`
}

func redisKey(patientID uuid.UUID, day time.Time) string {
	return "bites:" + patientID.String() + ":" + dates.Format(day)
}

func (c *DailyCache) readRedis(ctx context.Context, patientID uuid.UUID, day time.Time) *DailyBite {
	if c.deps.Redis == nil {
		return nil
	}
	raw, ok, err := c.deps.Redis.Get(ctx, redisKey(patientID, day))
	if err != nil {
		c.log.Warn("Redis bite read failed", "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	var cb cachedBite
	if err := json.Unmarshal(raw, &cb); err != nil {
		c.log.Warn("Dropping undecodable cached bite", "error", err)
		_ = c.deps.Redis.Delete(ctx, redisKey(patientID, day))
		return nil
	}
	gd, err := dates.Parse(cb.GeneratedDate)
	if err != nil || cb.PatientID != patientID || !gd.Equal(day) {
		return nil
	}
	bite, err := DecodeBite(&types.StrokeBite{
		ID:                 cb.ID,
		PatientID:          cb.PatientID,
		GeneratedDate:      gd,
		CardsJSON:          datatypes.JSON(cb.Cards),
		StartCardID:        cb.StartCardID,
		CardSequenceLength: cb.CardSequenceLength,
		CreatedAt:          cb.CreatedAt,
	})
	if err != nil {
		c.log.Warn("Dropping undecodable cached bite", "error", err)
		return nil
	}
	return bite
}

func (c *DailyCache) writeRedis(ctx context.Context, row *types.StrokeBite) {
	if c.deps.Redis == nil {
		return
	}
	raw, err := json.Marshal(cachedBite{
		ID:                 row.ID,
		PatientID:          row.PatientID,
		GeneratedDate:      dates.Format(row.GeneratedDate),
		Cards:              json.RawMessage(row.CardsJSON),
		StartCardID:        row.StartCardID,
		CardSequenceLength: row.CardSequenceLength,
		CreatedAt:          row.CreatedAt,
	})
	if err != nil {
		return
	}
	if err := c.deps.Redis.Set(ctx, redisKey(row.PatientID, row.GeneratedDate), raw, c.deps.RedisTTL); err != nil {
		c.log.Warn("Redis bite write failed", "error", err)
	}
}

func (c *DailyCache) outcome(name string) {
	if c.deps.Observer != nil {
		c.deps.Observer.IncBiteOutcome(name)
	}
}
