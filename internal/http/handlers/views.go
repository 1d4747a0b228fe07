package handlers

import (
	"github.com/google/uuid"

	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/domain/journal"
	"github.com/strokecovery/strokecovery-backend/internal/modules/bites"
	"github.com/strokecovery/strokecovery-backend/internal/pkg/dates"
	"github.com/strokecovery/strokecovery-backend/internal/services"
)

// Date columns are json:"-" on the models; these views render them as YYYY-MM-DD.

type profileView struct {
	*types.PatientProfile
	StrokeDate *string `json:"stroke_date"`
}

func newProfileView(p *types.PatientProfile) profileView {
	return profileView{PatientProfile: p, StrokeDate: dates.FormatPtr(p.StrokeDate)}
}

type medicineView struct {
	*types.Medicine
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Schedule  string  `json:"schedule"`
}

func newMedicineView(m *types.Medicine) medicineView {
	return medicineView{
		Medicine:  m,
		StartDate: dates.Format(m.StartDate),
		EndDate:   dates.FormatPtr(m.EndDate),
		Schedule:  m.ScheduleDisplay(),
	}
}

func medicineViews(in []*types.Medicine) []medicineView {
	out := make([]medicineView, 0, len(in))
	for _, m := range in {
		out = append(out, newMedicineView(m))
	}
	return out
}

type moodView struct {
	*types.MoodEntry
	EntryDate string `json:"entry_date"`
	Emoji     string `json:"emoji"`
	Label     string `json:"label"`
}

func newMoodView(e *types.MoodEntry) moodView {
	return moodView{
		MoodEntry: e,
		EntryDate: dates.Format(e.EntryDate),
		Emoji:     journal.MoodEmoji(e.MoodLevel),
		Label:     journal.MoodLabel(e.MoodLevel),
	}
}

type ailmentView struct {
	*types.AilmentEntry
	EntryDate     string `json:"entry_date"`
	SeverityLabel string `json:"severity_label"`
	SeverityColor string `json:"severity_color"`
}

func newAilmentView(e *types.AilmentEntry) ailmentView {
	return ailmentView{
		AilmentEntry:  e,
		EntryDate:     dates.Format(e.EntryDate),
		SeverityLabel: journal.SeverityLabel(e.Severity),
		SeverityColor: journal.SeverityColor(e.Severity),
	}
}

type therapyView struct {
	*types.TherapySession
	SessionDate  string `json:"session_date"`
	FeelingEmoji string `json:"feeling_emoji"`
	FeelingLabel string `json:"feeling_label"`
}

func newTherapyView(s *types.TherapySession) therapyView {
	return therapyView{
		TherapySession: s,
		SessionDate:    dates.Format(s.SessionDate),
		FeelingEmoji:   journal.FeelingEmoji(s.FeelingRating),
		FeelingLabel:   journal.FeelingLabel(s.FeelingRating),
	}
}

func therapyViews(in []*types.TherapySession) []therapyView {
	out := make([]therapyView, 0, len(in))
	for _, s := range in {
		out = append(out, newTherapyView(s))
	}
	return out
}

type therapyDayView struct {
	Date         string        `json:"date"`
	Sessions     []therapyView `json:"sessions"`
	SessionCount int           `json:"session_count"`
	TherapyTypes []string      `json:"therapy_types"`
}

type therapyCalendarView struct {
	Year  int              `json:"year"`
	Month int              `json:"month"`
	Days  []therapyDayView `json:"days"`
}

func newTherapyCalendarView(cal *services.TherapyCalendar) therapyCalendarView {
	out := therapyCalendarView{Year: cal.Year, Month: cal.Month, Days: make([]therapyDayView, 0, len(cal.Days))}
	for _, d := range cal.Days {
		out.Days = append(out.Days, therapyDayView{
			Date:         dates.Format(d.Date),
			Sessions:     therapyViews(d.Sessions),
			SessionCount: len(d.Sessions),
			TherapyTypes: d.TherapyTypes,
		})
	}
	return out
}

type biteView struct {
	ID                 uuid.UUID   `json:"id"`
	GeneratedDate      string      `json:"generated_date"`
	Cards              bites.Cards `json:"cards"`
	StartCardID        string      `json:"start_card_id"`
	TotalCards         int         `json:"total_cards"`
	CardSequenceLength int         `json:"card_sequence_length"`
}

func newBiteView(b *bites.DailyBite) biteView {
	return biteView{
		ID:                 b.ID,
		GeneratedDate:      dates.Format(b.GeneratedDate),
		Cards:              b.Set.Cards,
		StartCardID:        b.Set.StartCardID,
		TotalCards:         b.Set.TotalCards,
		CardSequenceLength: b.Set.CardSequenceLength,
	}
}
