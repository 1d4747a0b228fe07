package bites

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/strokecovery/strokecovery-backend/internal/data/repos"
	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/pkg/dates"
	"github.com/strokecovery/strokecovery-backend/internal/platform/llm"
)

type fakeBites struct {
	mu          sync.Mutex
	rows        map[string]*types.StrokeBite
	creates     int
	createErr   error
	rereadHook  func() *types.StrokeBite
	conflictHit bool
	listErr     error
}

func newFakeBites() *fakeBites { return &fakeBites{rows: map[string]*types.StrokeBite{}} }

func biteKey(p uuid.UUID, d time.Time) string { return p.String() + "|" + dates.Format(d) }

func (f *fakeBites) Create(_ context.Context, _ *gorm.DB, b *types.StrokeBite) (*types.StrokeBite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		f.conflictHit = true
		return nil, f.createErr
	}
	k := biteKey(b.PatientID, b.GeneratedDate)
	if _, ok := f.rows[k]; ok {
		f.conflictHit = true
		return nil, gorm.ErrDuplicatedKey
	}
	b.ID = uuid.New()
	b.CreatedAt = time.Now()
	cp := *b
	f.rows[k] = &cp
	return b, nil
}

func (f *fakeBites) GetByPatientDate(_ context.Context, _ *gorm.DB, p uuid.UUID, d time.Time) (*types.StrokeBite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conflictHit && f.rereadHook != nil {
		return f.rereadHook(), nil
	}
	if row, ok := f.rows[biteKey(p, d)]; ok {
		cp := *row
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeBites) GetByIDForPatient(_ context.Context, _ *gorm.DB, p, id uuid.UUID) (*types.StrokeBite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ID == id && row.PatientID == p {
			cp := *row
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeBites) ListSince(_ context.Context, _ *gorm.DB, p uuid.UUID, since time.Time) ([]*types.StrokeBite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*types.StrokeBite
	for _, row := range f.rows {
		if row.PatientID == p && !row.GeneratedDate.Before(since) {
			out = append(out, row)
		}
	}
	return out, nil
}

var _ repos.StrokeBiteRepo = (*fakeBites)(nil)

type fakeAnswers struct {
	rows  []*types.StrokeBiteAnswer
	since time.Time
}

func (f *fakeAnswers) CreateBatch(_ context.Context, _ *gorm.DB, a []*types.StrokeBiteAnswer) ([]*types.StrokeBiteAnswer, error) {
	f.rows = append(f.rows, a...)
	return a, nil
}

func (f *fakeAnswers) ListSince(_ context.Context, _ *gorm.DB, _ uuid.UUID, since time.Time) ([]*types.StrokeBiteAnswer, error) {
	f.since = since
	return f.rows, nil
}

var _ repos.StrokeBiteAnswerRepo = (*fakeAnswers)(nil)

type fakeInsights struct {
	mu           sync.Mutex
	similar      []*types.ScoredInsight
	similarErr   error
	random       []*types.Insight
	randomErr    error
	similarCalls int
	lastSimilar  repos.InsightFilter
	lastRandom   repos.InsightFilter
	randomLimit  int
}

func (f *fakeInsights) CreateBatch(context.Context, *gorm.DB, []*types.Insight) error { return nil }
func (f *fakeInsights) Count(context.Context, *gorm.DB) (int64, error)                { return 0, nil }

func (f *fakeInsights) SearchSimilar(_ context.Context, _ *gorm.DB, _ []float32, flt repos.InsightFilter, limit int) ([]*types.ScoredInsight, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.similarCalls++
	f.lastSimilar = flt
	if f.similarErr != nil {
		return nil, f.similarErr
	}
	if len(f.similar) > limit {
		return f.similar[:limit], nil
	}
	return f.similar, nil
}

func (f *fakeInsights) RandomSample(_ context.Context, _ *gorm.DB, flt repos.InsightFilter, limit int) ([]*types.Insight, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastRandom = flt
	f.randomLimit = limit
	if f.randomErr != nil {
		return nil, f.randomErr
	}
	if len(f.random) > limit {
		return f.random[:limit], nil
	}
	return f.random, nil
}

var _ repos.InsightRepo = (*fakeInsights)(nil)

type fakeProfiles struct {
	profiles map[uuid.UUID]*types.PatientProfile
}

func (f *fakeProfiles) Create(_ context.Context, _ *gorm.DB, p *types.PatientProfile) (*types.PatientProfile, error) {
	f.profiles[p.ID] = p
	return p, nil
}
func (f *fakeProfiles) GetByUserID(_ context.Context, _ *gorm.DB, userID uuid.UUID) (*types.PatientProfile, error) {
	for _, p := range f.profiles {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, nil
}
func (f *fakeProfiles) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*types.PatientProfile, error) {
	return f.profiles[id], nil
}
func (f *fakeProfiles) Save(context.Context, *gorm.DB, *types.PatientProfile) error { return nil }

var _ repos.ProfileRepo = (*fakeProfiles)(nil)

type fakeEmbedder struct {
	calls  int
	inputs []string
	err    error
}

func (f *fakeEmbedder) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	f.calls++
	f.inputs = append(f.inputs, inputs...)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(inputs))
	for i := range out {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

var _ llm.Embedder = (*fakeEmbedder)(nil)

type fakeLLM struct {
	mu    sync.Mutex
	out   string
	err   error
	calls int
	opts  llm.Options
}

func (f *fakeLLM) GenerateText(_ context.Context, _, _ string, opts llm.Options) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.opts = opts
	return f.out, f.err
}

type countingObserver struct {
	mu       sync.Mutex
	outcomes map[string]int
	insights []int
}

func (o *countingObserver) IncBiteOutcome(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.outcomes == nil {
		o.outcomes = map[string]int{}
	}
	o.outcomes[name]++
}

func (o *countingObserver) ObserveInsightsRetrieved(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.insights = append(o.insights, n)
}

func strp(s string) *string { return &s }

func insight(claim string) *types.Insight {
	return &types.Insight{ID: uuid.New(), Claim: claim}
}

func fixedClock(t time.Time) dates.Clock { return func() time.Time { return t } }
