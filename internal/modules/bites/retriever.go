package bites

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/strokecovery/strokecovery-backend/internal/data/repos"
	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/pkg/dates"
	"github.com/strokecovery/strokecovery-backend/internal/platform/llm"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

const (
	semanticLimit = 5
	maxInsights   = 6
)

// InsightRetriever picks research insights for a patient's daily set.
type InsightRetriever interface {
	Retrieve(ctx context.Context, profile *types.PatientProfile, exclude []uuid.UUID) []*types.Insight
}

type retriever struct {
	log      *logger.Logger
	insights repos.InsightRepo
	embedder llm.Embedder
	now      dates.Clock
}

func NewRetriever(log *logger.Logger, insights repos.InsightRepo, embedder llm.Embedder, now dates.Clock) InsightRetriever {
	if now == nil {
		now = dates.SystemClock
	}
	return &retriever{
		log:      log.With("component", "InsightRetriever"),
		insights: insights,
		embedder: embedder,
		now:      now,
	}
}

// Retrieve never fails: semantic and random lookups that error are logged and
// contribute nothing.
func (r *retriever) Retrieve(ctx context.Context, profile *types.PatientProfile, exclude []uuid.UUID) []*types.Insight {
	phase := ClassifyPhase(profile.StrokeDate, r.now())
	strokeType := ""
	if profile.StrokeType != nil {
		strokeType = strings.TrimSpace(*profile.StrokeType)
	}
	phaseFilter := ""
	if phase != PhaseUnknown {
		phaseFilter = string(phase)
	}

	out := make([]*types.Insight, 0, maxInsights)
	if len(profile.CurrentTherapies) > 0 {
		found, err := r.semantic(ctx, profile, strokeType, phase, phaseFilter, exclude)
		if err != nil {
			r.log.Warn("Semantic insight search failed, falling back to random", "error", err)
		}
		out = append(out, found...)
	}

	if len(out) < semanticLimit {
		skip := make([]uuid.UUID, 0, len(exclude)+len(out))
		skip = append(skip, exclude...)
		for _, in := range out {
			skip = append(skip, in.ID)
		}
		extra, err := r.insights.RandomSample(ctx, nil, repos.InsightFilter{
			StrokeType:    strokeType,
			RecoveryPhase: phaseFilter,
			ExcludeIDs:    skip,
		}, maxInsights-len(out))
		if err != nil {
			r.log.Warn("Random insight selection failed", "error", err)
		}
		out = append(out, extra...)
	}

	if len(out) > maxInsights {
		out = out[:maxInsights]
	}
	return out
}

func (r *retriever) semantic(ctx context.Context, profile *types.PatientProfile, strokeType string, phase Phase, phaseFilter string, exclude []uuid.UUID) ([]*types.Insight, error) {
	if r.embedder == nil {
		return nil, fmt.Errorf("no embedder configured")
	}
	vecs, err := r.embedder.Embed(ctx, []string{SemanticQuery(profile.CurrentTherapies, strokeType, phase)})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embed query: empty response")
	}
	f := repos.InsightFilter{RecoveryPhase: phaseFilter, ExcludeIDs: exclude}
	if strokeType != "" {
		f.StrokeTypes = []string{strokeType}
	}
	scored, err := r.insights.SearchSimilar(ctx, nil, vecs[0], f, semanticLimit)
	if err != nil {
		return nil, fmt.Errorf("search insights: %w", err)
	}
	out := make([]*types.Insight, 0, len(scored))
	for _, s := range scored {
		in := s.Insight
		out = append(out, &in)
	}
	return out, nil
}

// SemanticQuery is the free-text query embedded for step one.
func SemanticQuery(therapies []string, strokeType string, phase Phase) string {
	parts := []string{strings.Join(therapies, " ")}
	if strokeType != "" {
		parts = append(parts, strokeType+" stroke")
	}
	if phase != PhaseUnknown {
		parts = append(parts, string(phase)+" phase recovery")
	}
	return strings.Join(parts, " ")
}

// exclusionIDs parses source insight ids. Ids the model invented that are not
// UUIDs cannot match a stored insight and are dropped.
func exclusionIDs(raw []string) []uuid.UUID {
	seen := map[uuid.UUID]struct{}{}
	out := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

