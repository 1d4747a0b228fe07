package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/strokecovery/strokecovery-backend/internal/data/repos"
	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/domain/journal"
	"github.com/strokecovery/strokecovery-backend/internal/pkg/dates"
	"github.com/strokecovery/strokecovery-backend/internal/platform/apierr"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

type CalendarMedicineItem struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Dosage    *string    `json:"dosage"`
	Status    string     `json:"status"`
	TimeOfDay string     `json:"time_of_day"`
	TakenAt   *time.Time `json:"taken_at"`
}

type CalendarTherapyItem struct {
	ID           string  `json:"id"`
	Type         string  `json:"type"`
	Duration     int     `json:"duration"`
	Feeling      int     `json:"feeling"`
	FeelingEmoji string  `json:"feeling_emoji"`
	Notes        *string `json:"notes"`
}

type CalendarMoodItem struct {
	ID    string  `json:"id"`
	Level int     `json:"level"`
	Emoji string  `json:"emoji"`
	Label string  `json:"label"`
	Notes *string `json:"notes"`
}

type CalendarAilmentItem struct {
	ID            string  `json:"id"`
	Symptom       string  `json:"symptom"`
	BodyLocation  *string `json:"body_location"`
	Severity      int     `json:"severity"`
	SeverityLabel string  `json:"severity_label"`
	Notes         *string `json:"notes"`
}

type CalendarDayEntries struct {
	Medicines []CalendarMedicineItem `json:"medicines"`
	Therapy   []CalendarTherapyItem  `json:"therapy"`
	Mood      *CalendarMoodItem      `json:"mood"`
	Ailments  []CalendarAilmentItem  `json:"ailments"`
}

func newDayEntries() *CalendarDayEntries {
	return &CalendarDayEntries{
		Medicines: []CalendarMedicineItem{},
		Therapy:   []CalendarTherapyItem{},
		Ailments:  []CalendarAilmentItem{},
	}
}

type CalendarSummary struct {
	MedicineCount   int `json:"medicine_count"`
	TherapyCount    int `json:"therapy_count"`
	MoodCount       int `json:"mood_count"`
	AilmentCount    int `json:"ailment_count"`
	DaysWithEntries int `json:"days_with_entries"`
}

type CalendarRange struct {
	Entries map[string]*CalendarDayEntries `json:"entries"`
	Summary CalendarSummary                `json:"summary"`
}

type CalendarDay struct {
	Date    string              `json:"date"`
	Entries *CalendarDayEntries `json:"entries"`
}

type CalendarService interface {
	Range(ctx context.Context, userID uuid.UUID, from, to time.Time) (*CalendarRange, error)
	Day(ctx context.Context, userID uuid.UUID, day time.Time) (*CalendarDay, error)
}

type calendarService struct {
	log      *logger.Logger
	profiles repos.ProfileRepo
	logs     repos.MedicineLogRepo
	therapy  repos.TherapyRepo
	moods    repos.MoodRepo
	ailments repos.AilmentRepo
}

func NewCalendarService(
	log *logger.Logger,
	profiles repos.ProfileRepo,
	logs repos.MedicineLogRepo,
	therapy repos.TherapyRepo,
	moods repos.MoodRepo,
	ailments repos.AilmentRepo,
) CalendarService {
	return &calendarService{
		log:      log.With("service", "CalendarService"),
		profiles: profiles,
		logs:     logs,
		therapy:  therapy,
		moods:    moods,
		ailments: ailments,
	}
}

func (s *calendarService) Range(ctx context.Context, userID uuid.UUID, from, to time.Time) (*CalendarRange, error) {
	from, to = dates.Day(from), dates.Day(to)
	if to.Before(from) {
		return nil, apierr.BadRequest("invalid_range", "end_date must be after start_date")
	}
	p, err := loadPatient(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	entries, err := s.collect(ctx, p.ID, from, to)
	if err != nil {
		return nil, err
	}
	out := &CalendarRange{Entries: entries}
	for _, e := range entries {
		out.Summary.MedicineCount += len(e.Medicines)
		out.Summary.TherapyCount += len(e.Therapy)
		out.Summary.AilmentCount += len(e.Ailments)
		if e.Mood != nil {
			out.Summary.MoodCount++
		}
	}
	out.Summary.DaysWithEntries = len(entries)
	return out, nil
}

func (s *calendarService) Day(ctx context.Context, userID uuid.UUID, day time.Time) (*CalendarDay, error) {
	day = dates.Day(day)
	p, err := loadPatient(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	entries, err := s.collect(ctx, p.ID, day, day)
	if err != nil {
		return nil, err
	}
	key := dates.Format(day)
	e, ok := entries[key]
	if !ok {
		e = newDayEntries()
	}
	return &CalendarDay{Date: key, Entries: e}, nil
}

// collect loads every journal source for [from, to] and groups it by ISO date.
// Days with no rows are absent from the map.
func (s *calendarService) collect(ctx context.Context, patientID uuid.UUID, from, to time.Time) (map[string]*CalendarDayEntries, error) {
	var (
		logs     []*types.MedicineLog
		sessions []*types.TherapySession
		moods    []*types.MoodEntry
		ailments []*types.AilmentEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		logs, err = s.logs.ListForPatientBetween(gctx, nil, patientID, from, to.AddDate(0, 0, 1))
		return err
	})
	g.Go(func() (err error) {
		sessions, err = s.therapy.ListBetween(gctx, nil, patientID, from, to)
		return err
	})
	g.Go(func() (err error) {
		moods, err = s.moods.ListBetween(gctx, nil, patientID, from, to)
		return err
	})
	g.Go(func() (err error) {
		ailments, err = s.ailments.ListBetween(gctx, nil, patientID, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, internalErr("load_calendar_failed", err)
	}

	entries := map[string]*CalendarDayEntries{}
	at := func(t time.Time) *CalendarDayEntries {
		k := dates.Format(t)
		e, ok := entries[k]
		if !ok {
			e = newDayEntries()
			entries[k] = e
		}
		return e
	}

	for _, sess := range sessions {
		e := at(sess.SessionDate)
		e.Therapy = append(e.Therapy, CalendarTherapyItem{
			ID:           sess.ID.String(),
			Type:         sess.TherapyType,
			Duration:     sess.DurationMinutes,
			Feeling:      sess.FeelingRating,
			FeelingEmoji: journal.FeelingEmoji(sess.FeelingRating),
			Notes:        sess.Notes,
		})
	}
	for _, m := range moods {
		at(m.EntryDate).Mood = &CalendarMoodItem{
			ID:    m.ID.String(),
			Level: m.MoodLevel,
			Emoji: journal.MoodEmoji(m.MoodLevel),
			Label: journal.MoodLabel(m.MoodLevel),
			Notes: m.Notes,
		}
	}
	for _, a := range ailments {
		e := at(a.EntryDate)
		e.Ailments = append(e.Ailments, CalendarAilmentItem{
			ID:            a.ID.String(),
			Symptom:       a.Symptom,
			BodyLocation:  a.BodyLocation,
			Severity:      a.Severity,
			SeverityLabel: journal.SeverityLabel(a.Severity),
			Notes:         a.Notes,
		})
	}
	for _, l := range logs {
		item := CalendarMedicineItem{
			ID:        l.ID.String(),
			Status:    l.Status,
			TimeOfDay: l.TimeOfDay,
			TakenAt:   l.TakenAt,
		}
		if l.Medicine != nil {
			item.Name = l.Medicine.Name
			item.Dosage = l.Medicine.Dosage
		}
		e := at(l.ScheduledTime)
		e.Medicines = append(e.Medicines, item)
	}
	return entries, nil
}
