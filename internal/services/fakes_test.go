package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/strokecovery/strokecovery-backend/internal/data/repos"
	"github.com/strokecovery/strokecovery-backend/internal/data/repos/journal"
	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/modules/bites"
	"github.com/strokecovery/strokecovery-backend/internal/pkg/dates"
	"github.com/strokecovery/strokecovery-backend/internal/platform/llm"
)

var uniqueViolation = &pgconn.PgError{Code: "23505"}

func fixedClock(t time.Time) dates.Clock { return func() time.Time { return t } }

func intp(v int) *int { return &v }
func strp(v string) *string { return &v }
func boolp(v bool) *bool { return &v }
func timep(t time.Time) *time.Time { return &t }

type fakeUsers struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*types.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[uuid.UUID]*types.User{}} }

func (f *fakeUsers) Create(_ context.Context, _ *gorm.DB, u *types.User) (*types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return nil, uniqueViolation
		}
	}
	u.ID = uuid.New()
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id], nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, _ *gorm.DB, email string) (*types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == strings.ToLower(strings.TrimSpace(email)) {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	u, err := f.GetByEmail(ctx, tx, email)
	return u != nil, err
}

type fakeProfiles struct {
	mu     sync.Mutex
	byUser map[uuid.UUID]*types.PatientProfile
	saves  int
}

func newFakeProfiles() *fakeProfiles { return &fakeProfiles{byUser: map[uuid.UUID]*types.PatientProfile{}} }

// seed registers a completed profile for a fresh user and returns both ids.
func (f *fakeProfiles) seed() (userID uuid.UUID, p *types.PatientProfile) {
	userID = uuid.New()
	p = &types.PatientProfile{ID: uuid.New(), UserID: userID, OnboardingCompleted: true}
	f.byUser[userID] = p
	return userID, p
}

func (f *fakeProfiles) Create(_ context.Context, _ *gorm.DB, p *types.PatientProfile) (*types.PatientProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byUser[p.UserID]; ok {
		return nil, uniqueViolation
	}
	p.ID = uuid.New()
	f.byUser[p.UserID] = p
	return p, nil
}

func (f *fakeProfiles) GetByUserID(_ context.Context, _ *gorm.DB, userID uuid.UUID) (*types.PatientProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byUser[userID], nil
}

func (f *fakeProfiles) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*types.PatientProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byUser {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeProfiles) Save(_ context.Context, _ *gorm.DB, p *types.PatientProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	f.byUser[p.UserID] = p
	return nil
}

type fakeMedicines struct {
	rows []*types.Medicine
}

func (f *fakeMedicines) Create(_ context.Context, _ *gorm.DB, m *types.Medicine) (*types.Medicine, error) {
	m.ID = uuid.New()
	f.rows = append(f.rows, m)
	return m, nil
}

func (f *fakeMedicines) GetForPatient(_ context.Context, _ *gorm.DB, patientID, id uuid.UUID) (*types.Medicine, error) {
	for _, m := range f.rows {
		if m.ID == id && m.PatientID == patientID {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMedicines) ListByPatient(_ context.Context, _ *gorm.DB, patientID uuid.UUID, includeInactive bool, today time.Time) ([]*types.Medicine, error) {
	var out []*types.Medicine
	for _, m := range f.rows {
		if m.PatientID != patientID {
			continue
		}
		if !includeInactive && (!m.IsActive || (m.EndDate != nil && m.EndDate.Before(today))) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeMedicines) ListActiveOn(_ context.Context, _ *gorm.DB, patientID uuid.UUID, day time.Time) ([]*types.Medicine, error) {
	var out []*types.Medicine
	for _, m := range f.rows {
		if m.PatientID == patientID && m.IsActive && !m.StartDate.After(day) && (m.EndDate == nil || !m.EndDate.Before(day)) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMedicines) Save(context.Context, *gorm.DB, *types.Medicine) error { return nil }

func (f *fakeMedicines) Delete(_ context.Context, _ *gorm.DB, patientID, id uuid.UUID) (bool, error) {
	for i, m := range f.rows {
		if m.ID == id && m.PatientID == patientID {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fakeMedicineLogs struct {
	rows []*types.MedicineLog
}

func (f *fakeMedicineLogs) Create(_ context.Context, _ *gorm.DB, l *types.MedicineLog) (*types.MedicineLog, error) {
	l.ID = uuid.New()
	f.rows = append(f.rows, l)
	return l, nil
}

func (f *fakeMedicineLogs) Save(context.Context, *gorm.DB, *types.MedicineLog) error { return nil }

func (f *fakeMedicineLogs) FindForSlot(_ context.Context, _ *gorm.DB, medicineID uuid.UUID, slot string, day time.Time) (*types.MedicineLog, error) {
	for _, l := range f.rows {
		if l.MedicineID == medicineID && l.TimeOfDay == slot && dates.Day(l.ScheduledTime).Equal(dates.Day(day)) {
			return l, nil
		}
	}
	return nil, nil
}

func (f *fakeMedicineLogs) ListByMedicine(_ context.Context, _ *gorm.DB, medicineID uuid.UUID, limit int) ([]*types.MedicineLog, error) {
	var out []*types.MedicineLog
	for _, l := range f.rows {
		if l.MedicineID == medicineID && len(out) < limit {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeMedicineLogs) ListForMedicinesBetween(_ context.Context, _ *gorm.DB, ids []uuid.UUID, from, to time.Time) ([]*types.MedicineLog, error) {
	want := map[uuid.UUID]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []*types.MedicineLog
	for _, l := range f.rows {
		if want[l.MedicineID] && !l.ScheduledTime.Before(from) && l.ScheduledTime.Before(to) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeMedicineLogs) ListForPatientBetween(_ context.Context, _ *gorm.DB, patientID uuid.UUID, from, to time.Time) ([]*types.MedicineLog, error) {
	var out []*types.MedicineLog
	for _, l := range f.rows {
		if l.Medicine != nil && l.Medicine.PatientID == patientID && !l.ScheduledTime.Before(from) && l.ScheduledTime.Before(to) {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeMedicineInfo struct {
	rows       []*types.MedicineInfo
	gets       int
	createErr  error
	afterFail  *types.MedicineInfo
	searchArgs []string
}

func (f *fakeMedicineInfo) GetByName(_ context.Context, _ *gorm.DB, name string) (*types.MedicineInfo, error) {
	f.gets++
	for _, r := range f.rows {
		if strings.EqualFold(r.MedicineName, strings.TrimSpace(name)) {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeMedicineInfo) Create(_ context.Context, _ *gorm.DB, info *types.MedicineInfo) (*types.MedicineInfo, error) {
	if f.createErr != nil {
		if f.afterFail != nil {
			f.rows = append(f.rows, f.afterFail)
		}
		return nil, f.createErr
	}
	info.ID = uuid.New()
	f.rows = append(f.rows, info)
	return info, nil
}

func (f *fakeMedicineInfo) Search(_ context.Context, _ *gorm.DB, q string, limit int) ([]*types.MedicineInfo, error) {
	f.searchArgs = append(f.searchArgs, q)
	var out []*types.MedicineInfo
	for _, r := range f.rows {
		if strings.Contains(strings.ToLower(r.MedicineName), strings.ToLower(q)) && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeMoods struct {
	rows     []*types.MoodEntry
	lastList repos.JournalFilter
}

func (f *fakeMoods) Create(_ context.Context, _ *gorm.DB, e *types.MoodEntry) (*types.MoodEntry, error) {
	e.ID = uuid.New()
	f.rows = append(f.rows, e)
	return e, nil
}

func (f *fakeMoods) GetForPatient(_ context.Context, _ *gorm.DB, patientID, id uuid.UUID) (*types.MoodEntry, error) {
	for _, e := range f.rows {
		if e.ID == id && e.PatientID == patientID {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeMoods) GetByDate(_ context.Context, _ *gorm.DB, patientID uuid.UUID, day time.Time) (*types.MoodEntry, error) {
	for _, e := range f.rows {
		if e.PatientID == patientID && e.EntryDate.Equal(day) {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeMoods) List(_ context.Context, _ *gorm.DB, patientID uuid.UUID, lf repos.JournalFilter) ([]*types.MoodEntry, error) {
	f.lastList = lf
	return f.ListBetween(context.Background(), nil, patientID, time.Time{}, time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC))
}

func (f *fakeMoods) ListBetween(_ context.Context, _ *gorm.DB, patientID uuid.UUID, from, to time.Time) ([]*types.MoodEntry, error) {
	var out []*types.MoodEntry
	for _, e := range f.rows {
		if e.PatientID == patientID && !e.EntryDate.Before(from) && !e.EntryDate.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeMoods) Save(context.Context, *gorm.DB, *types.MoodEntry) error { return nil }

func (f *fakeMoods) Delete(_ context.Context, _ *gorm.DB, patientID, id uuid.UUID) (bool, error) {
	e, _ := f.GetForPatient(context.Background(), nil, patientID, id)
	return e != nil, nil
}

type fakeAilments struct {
	rows []*types.AilmentEntry
}

func (f *fakeAilments) Create(_ context.Context, _ *gorm.DB, e *types.AilmentEntry) (*types.AilmentEntry, error) {
	e.ID = uuid.New()
	f.rows = append(f.rows, e)
	return e, nil
}

func (f *fakeAilments) GetForPatient(_ context.Context, _ *gorm.DB, patientID, id uuid.UUID) (*types.AilmentEntry, error) {
	for _, e := range f.rows {
		if e.ID == id && e.PatientID == patientID {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeAilments) List(_ context.Context, _ *gorm.DB, patientID uuid.UUID, symptom string, _ journal.ListFilter) ([]*types.AilmentEntry, error) {
	var out []*types.AilmentEntry
	for _, e := range f.rows {
		if e.PatientID == patientID && (symptom == "" || e.Symptom == symptom) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeAilments) ListBetween(_ context.Context, _ *gorm.DB, patientID uuid.UUID, from, to time.Time) ([]*types.AilmentEntry, error) {
	var out []*types.AilmentEntry
	for _, e := range f.rows {
		if e.PatientID == patientID && !e.EntryDate.Before(from) && !e.EntryDate.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeAilments) Save(context.Context, *gorm.DB, *types.AilmentEntry) error { return nil }

func (f *fakeAilments) Delete(context.Context, *gorm.DB, uuid.UUID, uuid.UUID) (bool, error) {
	return false, nil
}

type fakeTherapy struct {
	rows   []*types.TherapySession
	totals *journal.TherapyTotals
	byType []journal.TherapyTypeCount
	since  map[time.Time]int64
}

func (f *fakeTherapy) Create(_ context.Context, _ *gorm.DB, s *types.TherapySession) (*types.TherapySession, error) {
	s.ID = uuid.New()
	f.rows = append(f.rows, s)
	return s, nil
}

func (f *fakeTherapy) GetForPatient(_ context.Context, _ *gorm.DB, patientID, id uuid.UUID) (*types.TherapySession, error) {
	for _, s := range f.rows {
		if s.ID == id && s.PatientID == patientID {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeTherapy) List(_ context.Context, _ *gorm.DB, patientID uuid.UUID, therapyType string, _ journal.ListFilter) ([]*types.TherapySession, error) {
	var out []*types.TherapySession
	for _, s := range f.rows {
		if s.PatientID == patientID && (therapyType == "" || s.TherapyType == therapyType) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeTherapy) ListBetween(_ context.Context, _ *gorm.DB, patientID uuid.UUID, from, to time.Time) ([]*types.TherapySession, error) {
	var out []*types.TherapySession
	for _, s := range f.rows {
		if s.PatientID == patientID && !s.SessionDate.Before(from) && !s.SessionDate.After(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeTherapy) Save(context.Context, *gorm.DB, *types.TherapySession) error { return nil }

func (f *fakeTherapy) Delete(context.Context, *gorm.DB, uuid.UUID, uuid.UUID) (bool, error) {
	return false, nil
}

func (f *fakeTherapy) Totals(context.Context, *gorm.DB, uuid.UUID) (*journal.TherapyTotals, error) {
	if f.totals == nil {
		return &journal.TherapyTotals{}, nil
	}
	return f.totals, nil
}

func (f *fakeTherapy) CountByType(context.Context, *gorm.DB, uuid.UUID) ([]journal.TherapyTypeCount, error) {
	return f.byType, nil
}

func (f *fakeTherapy) CountSince(_ context.Context, _ *gorm.DB, _ uuid.UUID, since time.Time) (int64, error) {
	return f.since[since], nil
}

type fakeGameResults struct {
	rows      []*types.GameResult
	playDates []time.Time
}

func (f *fakeGameResults) Create(_ context.Context, _ *gorm.DB, r *types.GameResult) (*types.GameResult, error) {
	r.ID = uuid.New()
	f.rows = append(f.rows, r)
	return r, nil
}

func (f *fakeGameResults) List(_ context.Context, _ *gorm.DB, patientID uuid.UUID, gameType string, limit, offset int) ([]*types.GameResult, error) {
	var out []*types.GameResult
	for _, r := range f.rows {
		if r.PatientID == patientID && (gameType == "" || r.GameType == gameType) {
			out = append(out, r)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeGameResults) Count(ctx context.Context, tx *gorm.DB, patientID uuid.UUID, gameType string) (int64, error) {
	rows, _ := f.List(ctx, tx, patientID, gameType, len(f.rows)+1, 0)
	return int64(len(rows)), nil
}

func (f *fakeGameResults) Counts(_ context.Context, _ *gorm.DB, patientID uuid.UUID, since *time.Time) (int64, int64, error) {
	var played, correct int64
	for _, r := range f.rows {
		if r.PatientID != patientID || (since != nil && r.PlayedAt.Before(*since)) {
			continue
		}
		played++
		correct += int64(r.Score)
	}
	return played, correct, nil
}

func (f *fakeGameResults) PlayDates(context.Context, *gorm.DB, uuid.UUID) ([]time.Time, error) {
	return f.playDates, nil
}

type fakeBiteRepo struct {
	rows []*types.StrokeBite
}

func (f *fakeBiteRepo) Create(_ context.Context, _ *gorm.DB, b *types.StrokeBite) (*types.StrokeBite, error) {
	b.ID = uuid.New()
	f.rows = append(f.rows, b)
	return b, nil
}

func (f *fakeBiteRepo) GetByPatientDate(_ context.Context, _ *gorm.DB, patientID uuid.UUID, day time.Time) (*types.StrokeBite, error) {
	for _, b := range f.rows {
		if b.PatientID == patientID && b.GeneratedDate.Equal(day) {
			return b, nil
		}
	}
	return nil, nil
}

func (f *fakeBiteRepo) GetByIDForPatient(_ context.Context, _ *gorm.DB, patientID, id uuid.UUID) (*types.StrokeBite, error) {
	for _, b := range f.rows {
		if b.ID == id && b.PatientID == patientID {
			return b, nil
		}
	}
	return nil, nil
}

func (f *fakeBiteRepo) ListSince(context.Context, *gorm.DB, uuid.UUID, time.Time) ([]*types.StrokeBite, error) {
	return f.rows, nil
}

type fakeAnswerRepo struct {
	saved []*types.StrokeBiteAnswer
}

func (f *fakeAnswerRepo) CreateBatch(_ context.Context, _ *gorm.DB, answers []*types.StrokeBiteAnswer) ([]*types.StrokeBiteAnswer, error) {
	for _, a := range answers {
		a.ID = uuid.New()
	}
	f.saved = append(f.saved, answers...)
	return answers, nil
}

func (f *fakeAnswerRepo) ListSince(context.Context, *gorm.DB, uuid.UUID, time.Time) ([]*types.StrokeBiteAnswer, error) {
	return f.saved, nil
}

type fakeStore struct {
	bite    *bites.DailyBite
	created bool
	err     error
	calls   int
}

func (f *fakeStore) Get(context.Context, uuid.UUID, time.Time) (*bites.DailyBite, error) {
	return f.bite, f.err
}

func (f *fakeStore) GetOrGenerate(_ context.Context, patientID uuid.UUID, day time.Time) (*bites.DailyBite, bool, error) {
	f.calls++
	if f.err != nil {
		return nil, false, f.err
	}
	if f.bite == nil {
		f.bite = &bites.DailyBite{ID: uuid.New(), PatientID: patientID, GeneratedDate: day, Set: *bites.FallbackSet()}
		f.created = true
		return f.bite, true, nil
	}
	return f.bite, false, nil
}

type fakeLLM struct {
	reply string
	err   error
	calls int
	opts  llm.Options
	user  string
}

func (f *fakeLLM) GenerateText(_ context.Context, _, user string, opts llm.Options) (string, error) {
	f.calls++
	f.opts = opts
	f.user = user
	return f.reply, f.err
}
