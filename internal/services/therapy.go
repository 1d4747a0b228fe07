package services

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/strokecovery/strokecovery-backend/internal/data/repos"
	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/domain/journal"
	"github.com/strokecovery/strokecovery-backend/internal/pkg/dates"
	"github.com/strokecovery/strokecovery-backend/internal/platform/apierr"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

type TherapyInput struct {
	TherapyType     *string
	SessionDate     *time.Time
	SessionTime     *string
	DurationMinutes *int
	Notes           *string
	FeelingRating   *int
	FeelingNotes    *string
}

type TherapyCalendarDay struct {
	Date         time.Time
	Sessions     []*types.TherapySession
	TherapyTypes []string
}

type TherapyCalendar struct {
	Year  int
	Month int
	Days  []TherapyCalendarDay
}

type TherapyStats struct {
	TotalSessions     int64            `json:"total_sessions"`
	TotalMinutes      int64            `json:"total_minutes"`
	SessionsByType    map[string]int64 `json:"sessions_by_type"`
	AverageFeeling    float64          `json:"average_feeling"`
	ThisWeekSessions  int64            `json:"this_week_sessions"`
	ThisMonthSessions int64            `json:"this_month_sessions"`
}

type TherapyService interface {
	Create(ctx context.Context, userID uuid.UUID, in TherapyInput) (*types.TherapySession, error)
	List(ctx context.Context, userID uuid.UUID, therapyType string, q ListQuery) ([]*types.TherapySession, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*types.TherapySession, error)
	Update(ctx context.Context, userID, id uuid.UUID, in TherapyInput) (*types.TherapySession, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	CalendarMonth(ctx context.Context, userID uuid.UUID, year, month int) (*TherapyCalendar, error)
	Stats(ctx context.Context, userID uuid.UUID) (*TherapyStats, error)
}

type therapyService struct {
	log      *logger.Logger
	profiles repos.ProfileRepo
	sessions repos.TherapyRepo
	now      dates.Clock
}

func NewTherapyService(log *logger.Logger, profiles repos.ProfileRepo, sessions repos.TherapyRepo, now dates.Clock) TherapyService {
	if now == nil {
		now = dates.SystemClock
	}
	return &therapyService{log: log.With("service", "TherapyService"), profiles: profiles, sessions: sessions, now: now}
}

func invalidTherapyType() *apierr.Error {
	return apierr.BadRequest("invalid_therapy_type", "Invalid therapy type. Must be one of: "+strings.Join(journal.TherapyTypes, ", "))
}

// normalizeSessionTime accepts HH:MM or HH:MM:SS and keeps HH:MM.
func normalizeSessionTime(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04"), nil
		}
	}
	return "", apierr.BadRequest("invalid_session_time", "session_time must be HH:MM")
}

func validateTherapy(in *TherapyInput) error {
	if in.TherapyType != nil && !journal.ValidTherapyType(*in.TherapyType) {
		return invalidTherapyType()
	}
	if in.DurationMinutes != nil && (*in.DurationMinutes < 1 || *in.DurationMinutes > 480) {
		return apierr.BadRequest("invalid_duration", "duration_minutes must be between 1 and 480")
	}
	if in.FeelingRating != nil && (*in.FeelingRating < 1 || *in.FeelingRating > 5) {
		return apierr.BadRequest("invalid_feeling_rating", "feeling_rating must be between 1 and 5")
	}
	if in.SessionTime != nil {
		t, err := normalizeSessionTime(*in.SessionTime)
		if err != nil {
			return err
		}
		in.SessionTime = &t
	}
	return nil
}

func (s *therapyService) Create(ctx context.Context, userID uuid.UUID, in TherapyInput) (*types.TherapySession, error) {
	if in.TherapyType == nil {
		return nil, invalidTherapyType()
	}
	if in.SessionDate == nil || in.DurationMinutes == nil || in.FeelingRating == nil {
		return nil, apierr.BadRequest("invalid_request", "session_date, duration_minutes and feeling_rating are required")
	}
	if err := validateTherapy(&in); err != nil {
		return nil, err
	}
	p, err := loadPatient(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	created, err := s.sessions.Create(ctx, nil, &types.TherapySession{
		PatientID:       p.ID,
		TherapyType:     *in.TherapyType,
		SessionDate:     dates.Day(*in.SessionDate),
		SessionTime:     in.SessionTime,
		DurationMinutes: *in.DurationMinutes,
		Notes:           in.Notes,
		FeelingRating:   *in.FeelingRating,
		FeelingNotes:    in.FeelingNotes,
	})
	if err != nil {
		return nil, internalErr("create_session_failed", fmt.Errorf("create therapy session: %w", err))
	}
	return created, nil
}

func (s *therapyService) List(ctx context.Context, userID uuid.UUID, therapyType string, q ListQuery) ([]*types.TherapySession, error) {
	if therapyType != "" && !journal.ValidTherapyType(therapyType) {
		return nil, invalidTherapyType()
	}
	if err := q.validate(); err != nil {
		return nil, err
	}
	p, err := loadPatient(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	out, err := s.sessions.List(ctx, nil, p.ID, therapyType, q.filter(50))
	if err != nil {
		return nil, internalErr("list_sessions_failed", err)
	}
	return out, nil
}

func (s *therapyService) get(ctx context.Context, patientID, id uuid.UUID) (*types.TherapySession, error) {
	sess, err := s.sessions.GetForPatient(ctx, nil, patientID, id)
	if err != nil {
		return nil, internalErr("load_session_failed", err)
	}
	if sess == nil {
		return nil, apierr.NotFound("session_not_found", "Session not found")
	}
	return sess, nil
}

func (s *therapyService) Get(ctx context.Context, userID, id uuid.UUID) (*types.TherapySession, error) {
	p, err := loadPatient(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, p.ID, id)
}

func (s *therapyService) Update(ctx context.Context, userID, id uuid.UUID, in TherapyInput) (*types.TherapySession, error) {
	if err := validateTherapy(&in); err != nil {
		return nil, err
	}
	p, err := loadPatient(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	sess, err := s.get(ctx, p.ID, id)
	if err != nil {
		return nil, err
	}
	if in.TherapyType != nil {
		sess.TherapyType = *in.TherapyType
	}
	if in.SessionDate != nil {
		sess.SessionDate = dates.Day(*in.SessionDate)
	}
	if in.SessionTime != nil {
		sess.SessionTime = in.SessionTime
	}
	if in.DurationMinutes != nil {
		sess.DurationMinutes = *in.DurationMinutes
	}
	if in.Notes != nil {
		sess.Notes = in.Notes
	}
	if in.FeelingRating != nil {
		sess.FeelingRating = *in.FeelingRating
	}
	if in.FeelingNotes != nil {
		sess.FeelingNotes = in.FeelingNotes
	}
	if err := s.sessions.Save(ctx, nil, sess); err != nil {
		return nil, internalErr("update_session_failed", fmt.Errorf("save therapy session: %w", err))
	}
	return sess, nil
}

func (s *therapyService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	p, err := loadPatient(ctx, s.profiles, userID)
	if err != nil {
		return err
	}
	ok, err := s.sessions.Delete(ctx, nil, p.ID, id)
	if err != nil {
		return internalErr("delete_session_failed", err)
	}
	if !ok {
		return apierr.NotFound("session_not_found", "Session not found")
	}
	return nil
}

func (s *therapyService) CalendarMonth(ctx context.Context, userID uuid.UUID, year, month int) (*TherapyCalendar, error) {
	if month < 1 || month > 12 {
		return nil, apierr.BadRequest("invalid_month", "Month must be between 1 and 12")
	}
	if year < 1 || year > 9999 {
		return nil, apierr.BadRequest("invalid_year", "Year is out of range")
	}
	p, err := loadPatient(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	sessions, err := s.sessions.ListBetween(ctx, nil, p.ID, first, last)
	if err != nil {
		return nil, internalErr("load_calendar_failed", err)
	}

	out := &TherapyCalendar{Year: year, Month: month, Days: []TherapyCalendarDay{}}
	index := map[time.Time]int{}
	for _, sess := range sessions {
		day := dates.Day(sess.SessionDate)
		i, ok := index[day]
		if !ok {
			i = len(out.Days)
			index[day] = i
			out.Days = append(out.Days, TherapyCalendarDay{Date: day})
		}
		d := &out.Days[i]
		d.Sessions = append(d.Sessions, sess)
		if !slices.Contains(d.TherapyTypes, sess.TherapyType) {
			d.TherapyTypes = append(d.TherapyTypes, sess.TherapyType)
		}
	}
	return out, nil
}

func (s *therapyService) Stats(ctx context.Context, userID uuid.UUID) (*TherapyStats, error) {
	p, err := loadPatient(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	totals, err := s.sessions.Totals(ctx, nil, p.ID)
	if err != nil {
		return nil, internalErr("load_stats_failed", err)
	}
	out := &TherapyStats{SessionsByType: map[string]int64{}}
	if totals == nil || totals.TotalSessions == 0 {
		return out, nil
	}
	out.TotalSessions = totals.TotalSessions
	out.TotalMinutes = totals.TotalMinutes
	if totals.AvgFeeling != nil {
		out.AverageFeeling = math.Round(*totals.AvgFeeling*10) / 10
	}

	byType, err := s.sessions.CountByType(ctx, nil, p.ID)
	if err != nil {
		return nil, internalErr("load_stats_failed", err)
	}
	for _, c := range byType {
		out.SessionsByType[c.TherapyType] = c.Count
	}

	today := dates.Day(s.now())
	if out.ThisWeekSessions, err = s.sessions.CountSince(ctx, nil, p.ID, dates.WeekStart(today)); err != nil {
		return nil, internalErr("load_stats_failed", err)
	}
	if out.ThisMonthSessions, err = s.sessions.CountSince(ctx, nil, p.ID, dates.MonthStart(today)); err != nil {
		return nil, internalErr("load_stats_failed", err)
	}
	return out, nil
}
