package bites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/strokecovery/strokecovery-backend/internal/data/repos"
	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/pkg/dates"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

// Outcome labels reported to the metrics observer.
const (
	OutcomeGenerated       = "generated"
	OutcomeFallbackLLM     = "fallback_llm"
	OutcomeFallbackInvalid = "fallback_invalid"
	OutcomeCached          = "cached"
	OutcomeRaceLost        = "race_lost"
)

// Observer receives generation outcomes; *observability.Metrics implements it.
type Observer interface {
	IncBiteOutcome(outcome string)
	ObserveInsightsRetrieved(n int)
}

type OrchestratorDeps struct {
	Log       *logger.Logger
	Bites     repos.StrokeBiteRepo
	Answers   repos.StrokeBiteAnswerRepo
	Retriever InsightRetriever
	Generator CardGenerator
	Observer  Observer
	Clock     dates.Clock

	ExclusionWindowDays  int
	PreferenceWindowDays int
}

type Orchestrator struct {
	deps OrchestratorDeps
	log  *logger.Logger
}

func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	if deps.Clock == nil {
		deps.Clock = dates.SystemClock
	}
	if deps.ExclusionWindowDays <= 0 {
		deps.ExclusionWindowDays = 14
	}
	if deps.PreferenceWindowDays <= 0 {
		deps.PreferenceWindowDays = 30
	}
	return &Orchestrator{deps: deps, log: deps.Log.With("component", "BiteOrchestrator")}
}

// GenerateForToday builds a card set for the profile. Model and validation
// failures yield the fallback set; only storage reads return an error.
func (o *Orchestrator) GenerateForToday(ctx context.Context, profile *types.PatientProfile) (*GeneratedSet, error) {
	if profile == nil {
		return nil, fmt.Errorf("generate bites: nil profile")
	}
	now := o.deps.Clock()

	var (
		insights []*types.Insight
		prefs    map[string]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		exclude, err := o.recentInsightIDs(gctx, profile.ID, now)
		if err != nil {
			return err
		}
		insights = o.deps.Retriever.Retrieve(gctx, profile, exclude)
		return nil
	})
	g.Go(func() error {
		answers, err := o.deps.Answers.ListSince(gctx, nil, profile.ID, now.AddDate(0, 0, -o.deps.PreferenceWindowDays))
		if err != nil {
			return fmt.Errorf("load past answers: %w", err)
		}
		prefs = ExtractPreferences(answers)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	o.observeInsights(len(insights))
	o.log.Debug("Bite inputs loaded", "patient_id", profile.ID, "insights", len(insights), "preferences", len(prefs))

	system, user := BuildPrompts(profile, insights, prefs, now)
	draft, err := o.deps.Generator.Generate(ctx, system, user)
	if err != nil {
		var genErr *GenerationError
		if errors.As(err, &genErr) {
			o.log.Warn("Bite generation failed, using fallback", "patient_id", profile.ID, "stage", genErr.Stage, "error", genErr.Err)
		} else {
			o.log.Warn("Bite generation failed, using fallback", "patient_id", profile.ID, "error", err)
		}
		o.outcome(OutcomeFallbackLLM)
		return FallbackSet(), nil
	}

	if !ValidateGraph(draft.Cards, draft.StartCardID) {
		o.log.Warn("Generated card graph invalid, using fallback", "patient_id", profile.ID, "cards", len(draft.Cards), "start_card_id", draft.StartCardID)
		o.outcome(OutcomeFallbackInvalid)
		return FallbackSet(), nil
	}

	cards := AssignColors(draft.Cards)
	o.outcome(OutcomeGenerated)
	return &GeneratedSet{
		Cards:              cards,
		StartCardID:        draft.StartCardID,
		TotalCards:         len(cards),
		CardSequenceLength: draft.CardSequenceLength,
	}, nil
}

func (o *Orchestrator) recentInsightIDs(ctx context.Context, patientID uuid.UUID, now time.Time) ([]uuid.UUID, error) {
	since := dates.Day(now).AddDate(0, 0, -o.deps.ExclusionWindowDays)
	rows, err := o.deps.Bites.ListSince(ctx, nil, patientID, since)
	if err != nil {
		return nil, fmt.Errorf("load recent bites: %w", err)
	}
	var raw []string
	for _, row := range rows {
		raw = append(raw, storedInsightIDs(row.CardsJSON)...)
	}
	return exclusionIDs(raw), nil
}

func storedInsightIDs(doc []byte) []string {
	if len(doc) == 0 {
		return nil
	}
	var stored GeneratedSet
	if err := json.Unmarshal(doc, &stored); err != nil {
		return nil
	}
	return stored.SourceInsightIDs()
}

func (o *Orchestrator) outcome(name string) {
	if o.deps.Observer != nil {
		o.deps.Observer.IncBiteOutcome(name)
	}
}

func (o *Orchestrator) observeInsights(n int) {
	if o.deps.Observer != nil {
		o.deps.Observer.ObserveInsightsRetrieved(n)
	}
}
