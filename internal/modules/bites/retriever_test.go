package bites

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

var retrieverNow = time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)

func scored(ins ...*types.Insight) []*types.ScoredInsight {
	out := make([]*types.ScoredInsight, len(ins))
	for i, in := range ins {
		out[i] = &types.ScoredInsight{Insight: *in, Similarity: 0.9}
	}
	return out
}

func TestRetrieveWithoutTherapiesUsesRandomOnly(t *testing.T) {
	store := &fakeInsights{random: []*types.Insight{insight("a"), insight("b")}}
	emb := &fakeEmbedder{}
	r := NewRetriever(logger.Nop(), store, emb, fixedClock(retrieverNow))

	got := r.Retrieve(context.Background(), &types.PatientProfile{}, nil)
	assert.Len(t, got, 2)
	assert.Equal(t, 0, emb.calls)
	assert.Equal(t, 0, store.similarCalls)
	assert.Equal(t, 6, store.randomLimit)
	assert.Empty(t, store.lastRandom.StrokeType)
	assert.Empty(t, store.lastRandom.RecoveryPhase)
}

func TestRetrieveSemanticFailureFallsBackToRandom(t *testing.T) {
	store := &fakeInsights{random: []*types.Insight{insight("r")}}
	emb := &fakeEmbedder{err: errors.New("embedding down")}
	r := NewRetriever(logger.Nop(), store, emb, fixedClock(retrieverNow))

	got := r.Retrieve(context.Background(), &types.PatientProfile{CurrentTherapies: pq.StringArray{"PT"}}, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "r", got[0].Claim)
	assert.Equal(t, 1, emb.calls)
}

func TestRetrieveBothStepsFailReturnsEmpty(t *testing.T) {
	store := &fakeInsights{similarErr: errors.New("db"), randomErr: errors.New("db")}
	r := NewRetriever(logger.Nop(), store, &fakeEmbedder{}, fixedClock(retrieverNow))
	got := r.Retrieve(context.Background(), &types.PatientProfile{CurrentTherapies: pq.StringArray{"OT"}}, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRetrieveSemanticThenSupplement(t *testing.T) {
	s1, s2 := insight("s1"), insight("s2")
	store := &fakeInsights{
		similar: scored(s1, s2),
		random:  []*types.Insight{insight("r1"), insight("r2"), insight("r3"), insight("r4"), insight("r5")},
	}
	emb := &fakeEmbedder{}
	stroke := retrieverNow.AddDate(0, 0, -400)
	excluded := uuid.New()
	profile := &types.PatientProfile{
		StrokeDate:       &stroke,
		StrokeType:       strp("hemorrhagic"),
		CurrentTherapies: pq.StringArray{"Speech"},
	}
	r := NewRetriever(logger.Nop(), store, emb, fixedClock(retrieverNow))

	got := r.Retrieve(context.Background(), profile, []uuid.UUID{excluded})
	require.Len(t, got, 6)
	assert.Equal(t, "s1", got[0].Claim)
	assert.Equal(t, "s2", got[1].Claim)
	assert.Equal(t, 4, store.randomLimit)

	assert.Equal(t, []string{"Speech hemorrhagic stroke chronic phase recovery"}, emb.inputs)
	assert.Equal(t, []string{"hemorrhagic"}, store.lastSimilar.StrokeTypes)
	assert.Equal(t, "chronic", store.lastSimilar.RecoveryPhase)
	assert.Equal(t, []uuid.UUID{excluded}, store.lastSimilar.ExcludeIDs)

	assert.Equal(t, "hemorrhagic", store.lastRandom.StrokeType)
	assert.ElementsMatch(t, []uuid.UUID{excluded, s1.ID, s2.ID}, store.lastRandom.ExcludeIDs)
}

func TestRetrieveFiveSemanticSkipsRandom(t *testing.T) {
	store := &fakeInsights{
		similar: scored(insight("1"), insight("2"), insight("3"), insight("4"), insight("5")),
		random:  []*types.Insight{insight("r")},
	}
	r := NewRetriever(logger.Nop(), store, &fakeEmbedder{}, fixedClock(retrieverNow))
	got := r.Retrieve(context.Background(), &types.PatientProfile{CurrentTherapies: pq.StringArray{"PT"}}, nil)
	assert.Len(t, got, 5)
	assert.Zero(t, store.randomLimit)
}
