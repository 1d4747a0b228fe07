package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strokecovery/strokecovery-backend/internal/data/repos/journal"
	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	journaldomain "github.com/strokecovery/strokecovery-backend/internal/domain/journal"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

var journalNow = time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC) // a Wednesday

func TestMoodOnePerDay(t *testing.T) {
	profiles := newFakeProfiles()
	userID, _ := profiles.seed()
	moods := &fakeMoods{}
	svc := NewMoodService(logger.Nop(), profiles, moods, fixedClock(journalNow))
	ctx := context.Background()

	first, err := svc.Create(ctx, userID, MoodInput{MoodLevel: intp(4)})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC), first.EntryDate)

	_, err = svc.Create(ctx, userID, MoodInput{MoodLevel: intp(2)})
	requireAPIErr(t, err, http.StatusBadRequest, "mood_exists")

	_, err = svc.Create(ctx, userID, MoodInput{MoodLevel: intp(6)})
	requireAPIErr(t, err, http.StatusBadRequest, "invalid_mood_level")

	yesterday := journalNow.AddDate(0, 0, -1)
	second, err := svc.Create(ctx, userID, MoodInput{MoodLevel: intp(3), EntryDate: &yesterday})
	require.NoError(t, err)

	// Moving yesterday's entry onto today collides with the first one.
	_, err = svc.Update(ctx, userID, second.ID, MoodInput{EntryDate: timep(journalNow)})
	requireAPIErr(t, err, http.StatusBadRequest, "mood_exists")

	updated, err := svc.Update(ctx, userID, first.ID, MoodInput{EntryDate: timep(journalNow), MoodLevel: intp(5)})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.MoodLevel)
}

func TestMoodListClampsPaging(t *testing.T) {
	profiles := newFakeProfiles()
	userID, _ := profiles.seed()
	moods := &fakeMoods{}
	svc := NewMoodService(logger.Nop(), profiles, moods, fixedClock(journalNow))

	_, err := svc.List(context.Background(), userID, ListQuery{Limit: 1000, Offset: -5})
	require.NoError(t, err)
	assert.Equal(t, 200, moods.lastList.Limit)
	assert.Equal(t, 0, moods.lastList.Offset)

	_, err = svc.List(context.Background(), userID, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 30, moods.lastList.Limit)

	from, to := journalNow, journalNow.AddDate(0, 0, -3)
	_, err = svc.List(context.Background(), userID, ListQuery{From: &from, To: &to})
	requireAPIErr(t, err, http.StatusBadRequest, "invalid_range")
}

func TestAilmentValidation(t *testing.T) {
	profiles := newFakeProfiles()
	userID, _ := profiles.seed()
	svc := NewAilmentService(logger.Nop(), profiles, &fakeAilments{}, fixedClock(journalNow))
	ctx := context.Background()

	_, err := svc.Create(ctx, userID, AilmentInput{Symptom: strp("pain"), Severity: intp(11)})
	requireAPIErr(t, err, http.StatusBadRequest, "invalid_severity")

	_, err = svc.Create(ctx, userID, AilmentInput{Symptom: strp("  "), Severity: intp(3)})
	requireAPIErr(t, err, http.StatusBadRequest, "invalid_symptom")

	e, err := svc.Create(ctx, userID, AilmentInput{Symptom: strp(" fatigue "), Severity: intp(7)})
	require.NoError(t, err)
	assert.Equal(t, "fatigue", e.Symptom)
	assert.Equal(t, "Severe", journaldomain.SeverityLabel(e.Severity))

	err = svc.Delete(ctx, userID, e.ID)
	requireAPIErr(t, err, http.StatusNotFound, "ailment_not_found")
}

func TestTherapyValidationAndTimeNormalization(t *testing.T) {
	profiles := newFakeProfiles()
	userID, _ := profiles.seed()
	svc := NewTherapyService(logger.Nop(), profiles, &fakeTherapy{}, fixedClock(journalNow))
	ctx := context.Background()
	base := TherapyInput{
		TherapyType:     strp("PT"),
		SessionDate:     timep(journalNow),
		DurationMinutes: intp(45),
		FeelingRating:   intp(4),
	}

	bad := base
	bad.TherapyType = strp("Yoga")
	_, err := svc.Create(ctx, userID, bad)
	requireAPIErr(t, err, http.StatusBadRequest, "invalid_therapy_type")
	assert.Contains(t, err.Error(), "PT, OT, Speech, Other")

	bad = base
	bad.DurationMinutes = intp(481)
	_, err = svc.Create(ctx, userID, bad)
	requireAPIErr(t, err, http.StatusBadRequest, "invalid_duration")

	bad = base
	bad.FeelingRating = intp(0)
	_, err = svc.Create(ctx, userID, bad)
	requireAPIErr(t, err, http.StatusBadRequest, "invalid_feeling_rating")

	ok := base
	ok.SessionTime = strp("09:30:00")
	s, err := svc.Create(ctx, userID, ok)
	require.NoError(t, err)
	require.NotNil(t, s.SessionTime)
	assert.Equal(t, "09:30", *s.SessionTime)
}

func TestTherapyCalendarGroupsByDay(t *testing.T) {
	profiles := newFakeProfiles()
	userID, p := profiles.seed()
	repo := &fakeTherapy{}
	d1 := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	repo.rows = []*types.TherapySession{
		{PatientID: p.ID, TherapyType: "PT", SessionDate: d1},
		{PatientID: p.ID, TherapyType: "OT", SessionDate: d1},
		{PatientID: p.ID, TherapyType: "PT", SessionDate: d1},
		{PatientID: p.ID, TherapyType: "Speech", SessionDate: d2},
		{PatientID: p.ID, TherapyType: "PT", SessionDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
	}
	svc := NewTherapyService(logger.Nop(), profiles, repo, fixedClock(journalNow))

	cal, err := svc.CalendarMonth(context.Background(), userID, 2024, 5)
	require.NoError(t, err)
	require.Len(t, cal.Days, 2)
	assert.Equal(t, d1, cal.Days[0].Date)
	assert.Len(t, cal.Days[0].Sessions, 3)
	assert.Equal(t, []string{"PT", "OT"}, cal.Days[0].TherapyTypes)
	assert.Equal(t, []string{"Speech"}, cal.Days[1].TherapyTypes)

	_, err = svc.CalendarMonth(context.Background(), userID, 2024, 13)
	requireAPIErr(t, err, http.StatusBadRequest, "invalid_month")
}

func TestTherapyStats(t *testing.T) {
	profiles := newFakeProfiles()
	userID, _ := profiles.seed()
	avg := 3.666
	weekStart := time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	repo := &fakeTherapy{
		totals: &journal.TherapyTotals{TotalSessions: 6, TotalMinutes: 270, AvgFeeling: &avg},
		byType: []journal.TherapyTypeCount{{TherapyType: "PT", Count: 4}, {TherapyType: "OT", Count: 2}},
		since:  map[time.Time]int64{weekStart: 2, monthStart: 5},
	}
	svc := NewTherapyService(logger.Nop(), profiles, repo, fixedClock(journalNow))

	st, err := svc.Stats(context.Background(), userID)
	require.NoError(t, err)
	assert.EqualValues(t, 6, st.TotalSessions)
	assert.EqualValues(t, 270, st.TotalMinutes)
	assert.InDelta(t, 3.7, st.AverageFeeling, 1e-9)
	assert.Equal(t, map[string]int64{"PT": 4, "OT": 2}, st.SessionsByType)
	assert.EqualValues(t, 2, st.ThisWeekSessions)
	assert.EqualValues(t, 5, st.ThisMonthSessions)

	empty := NewTherapyService(logger.Nop(), profiles, &fakeTherapy{}, fixedClock(journalNow))
	st, err = empty.Stats(context.Background(), userID)
	require.NoError(t, err)
	assert.Zero(t, st.TotalSessions)
	assert.NotNil(t, st.SessionsByType)
}
