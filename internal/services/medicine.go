package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/strokecovery/strokecovery-backend/internal/data/repos"
	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/domain/medication"
	"github.com/strokecovery/strokecovery-backend/internal/pkg/dates"
	"github.com/strokecovery/strokecovery-backend/internal/platform/apierr"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

// slotTimes are the default reminder times, as offsets from midnight UTC.
var slotTimes = map[string]time.Duration{
	medication.SlotMorning:   8 * time.Hour,
	medication.SlotAfternoon: 14 * time.Hour,
	medication.SlotNight:     20 * time.Hour,
}

// missedGrace is how long after its scheduled time an unlogged dose stays pending.
const missedGrace = 2 * time.Hour

type MedicineInput struct {
	Name      string
	Dosage    *string
	Morning   bool
	Afternoon bool
	Night     bool
	Timing    string
	StartDate *time.Time
	EndDate   *time.Time
	Notes     *string
}

type MedicineUpdate struct {
	Name      *string
	Dosage    *string
	Morning   *bool
	Afternoon *bool
	Night     *bool
	Timing    *string
	StartDate *time.Time
	EndDate   *time.Time
	Notes     *string
	IsActive  *bool
}

type MedicineLogInput struct {
	TimeOfDay     string
	Status        string
	ScheduledTime *time.Time
	Notes         *string
}

type TodayItem struct {
	LogID         *uuid.UUID `json:"log_id"`
	MedicineID    uuid.UUID  `json:"medicine_id"`
	MedicineName  string     `json:"medicine_name"`
	Dosage        *string    `json:"dosage"`
	TimeOfDay     string     `json:"time_of_day"`
	Timing        string     `json:"timing"`
	ScheduledTime time.Time  `json:"scheduled_time"`
	Status        string     `json:"status"`
	TakenAt       *time.Time `json:"taken_at"`
}

type TodaySchedule struct {
	Date         string      `json:"date"`
	Morning      []TodayItem `json:"morning"`
	Afternoon    []TodayItem `json:"afternoon"`
	Night        []TodayItem `json:"night"`
	TotalPending int         `json:"total_pending"`
	TotalTaken   int         `json:"total_taken"`
	TotalMissed  int         `json:"total_missed"`
}

type MedicineService interface {
	Create(ctx context.Context, userID uuid.UUID, in MedicineInput) (*types.Medicine, error)
	List(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]*types.Medicine, error)
	Today(ctx context.Context, userID uuid.UUID) (*TodaySchedule, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*types.Medicine, error)
	Update(ctx context.Context, userID, id uuid.UUID, in MedicineUpdate) (*types.Medicine, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	// LogDose upserts the log for (medicine, slot, day of the scheduled time).
	LogDose(ctx context.Context, userID, id uuid.UUID, in MedicineLogInput) (*types.MedicineLog, error)
	Logs(ctx context.Context, userID, id uuid.UUID, limit int) ([]*types.MedicineLog, error)
}

type medicineService struct {
	log       *logger.Logger
	profiles  repos.ProfileRepo
	medicines repos.MedicineRepo
	logs      repos.MedicineLogRepo
	now       dates.Clock
}

func NewMedicineService(log *logger.Logger, profiles repos.ProfileRepo, medicines repos.MedicineRepo, logs repos.MedicineLogRepo, now dates.Clock) MedicineService {
	if now == nil {
		now = dates.SystemClock
	}
	return &medicineService{
		log:       log.With("service", "MedicineService"),
		profiles:  profiles,
		medicines: medicines,
		logs:      logs,
		now:       now,
	}
}

var errNoSlot = apierr.BadRequest("no_time_slot", "Select at least one time slot (morning, afternoon, or night)")

func validateCourse(start time.Time, end *time.Time) error {
	if end != nil && dates.Day(*end).Before(dates.Day(start)) {
		return apierr.BadRequest("invalid_end_date", "end_date must be on or after start_date")
	}
	return nil
}

func (ms *medicineService) Create(ctx context.Context, userID uuid.UUID, in MedicineInput) (*types.Medicine, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apierr.BadRequest("invalid_name", "name is required")
	}
	if !(in.Morning || in.Afternoon || in.Night) {
		return nil, errNoSlot
	}
	timing := strings.TrimSpace(in.Timing)
	if timing == "" {
		timing = "any_time"
	}
	if !medication.ValidTiming(timing) {
		return nil, apierr.BadRequest("invalid_timing", "timing must be one of before_food, after_food, with_food, any_time")
	}
	start := dates.Day(ms.now())
	if in.StartDate != nil {
		start = dates.Day(*in.StartDate)
	}
	if err := validateCourse(start, in.EndDate); err != nil {
		return nil, err
	}

	p, err := loadPatient(ctx, ms.profiles, userID)
	if err != nil {
		return nil, err
	}
	m := &types.Medicine{
		PatientID: p.ID,
		Name:      name,
		Dosage:    in.Dosage,
		Morning:   in.Morning,
		Afternoon: in.Afternoon,
		Night:     in.Night,
		Timing:    timing,
		StartDate: start,
		EndDate:   in.EndDate,
		Notes:     in.Notes,
		IsActive:  true,
	}
	if m.EndDate != nil {
		d := dates.Day(*m.EndDate)
		m.EndDate = &d
	}
	created, err := ms.medicines.Create(ctx, nil, m)
	if err != nil {
		return nil, internalErr("create_medicine_failed", fmt.Errorf("create medicine: %w", err))
	}
	return created, nil
}

func (ms *medicineService) List(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]*types.Medicine, error) {
	p, err := loadPatient(ctx, ms.profiles, userID)
	if err != nil {
		return nil, err
	}
	out, err := ms.medicines.ListByPatient(ctx, nil, p.ID, includeInactive, dates.Day(ms.now()))
	if err != nil {
		return nil, internalErr("list_medicines_failed", err)
	}
	return out, nil
}

func (ms *medicineService) get(ctx context.Context, patientID, id uuid.UUID) (*types.Medicine, error) {
	m, err := ms.medicines.GetForPatient(ctx, nil, patientID, id)
	if err != nil {
		return nil, internalErr("load_medicine_failed", err)
	}
	if m == nil {
		return nil, apierr.NotFound("medicine_not_found", "Medicine not found")
	}
	return m, nil
}

func (ms *medicineService) Get(ctx context.Context, userID, id uuid.UUID) (*types.Medicine, error) {
	p, err := loadPatient(ctx, ms.profiles, userID)
	if err != nil {
		return nil, err
	}
	return ms.get(ctx, p.ID, id)
}

func (ms *medicineService) Update(ctx context.Context, userID, id uuid.UUID, in MedicineUpdate) (*types.Medicine, error) {
	p, err := loadPatient(ctx, ms.profiles, userID)
	if err != nil {
		return nil, err
	}
	m, err := ms.get(ctx, p.ID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apierr.BadRequest("invalid_name", "name cannot be empty")
		}
		m.Name = name
	}
	if in.Dosage != nil {
		m.Dosage = in.Dosage
	}
	if in.Morning != nil {
		m.Morning = *in.Morning
	}
	if in.Afternoon != nil {
		m.Afternoon = *in.Afternoon
	}
	if in.Night != nil {
		m.Night = *in.Night
	}
	if in.Timing != nil {
		if !medication.ValidTiming(*in.Timing) {
			return nil, apierr.BadRequest("invalid_timing", "timing must be one of before_food, after_food, with_food, any_time")
		}
		m.Timing = *in.Timing
	}
	if in.StartDate != nil {
		m.StartDate = dates.Day(*in.StartDate)
	}
	if in.EndDate != nil {
		d := dates.Day(*in.EndDate)
		m.EndDate = &d
	}
	if in.Notes != nil {
		m.Notes = in.Notes
	}
	if in.IsActive != nil {
		m.IsActive = *in.IsActive
	}
	if !(m.Morning || m.Afternoon || m.Night) {
		return nil, errNoSlot
	}
	if err := validateCourse(m.StartDate, m.EndDate); err != nil {
		return nil, err
	}
	if err := ms.medicines.Save(ctx, nil, m); err != nil {
		return nil, internalErr("update_medicine_failed", fmt.Errorf("save medicine: %w", err))
	}
	return m, nil
}

func (ms *medicineService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	p, err := loadPatient(ctx, ms.profiles, userID)
	if err != nil {
		return err
	}
	ok, err := ms.medicines.Delete(ctx, nil, p.ID, id)
	if err != nil {
		return internalErr("delete_medicine_failed", err)
	}
	if !ok {
		return apierr.NotFound("medicine_not_found", "Medicine not found")
	}
	return nil
}

func (ms *medicineService) Today(ctx context.Context, userID uuid.UUID) (*TodaySchedule, error) {
	p, err := loadPatient(ctx, ms.profiles, userID)
	if err != nil {
		return nil, err
	}
	now := ms.now()
	today := dates.Day(now)

	meds, err := ms.medicines.ListActiveOn(ctx, nil, p.ID, today)
	if err != nil {
		return nil, internalErr("load_schedule_failed", err)
	}
	ids := make([]uuid.UUID, 0, len(meds))
	for _, m := range meds {
		ids = append(ids, m.ID)
	}
	logs, err := ms.logs.ListForMedicinesBetween(ctx, nil, ids, today, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, internalErr("load_schedule_failed", err)
	}
	type slotKey struct {
		medicineID uuid.UUID
		slot       string
	}
	bySlot := make(map[slotKey]*types.MedicineLog, len(logs))
	for _, l := range logs {
		k := slotKey{l.MedicineID, l.TimeOfDay}
		if _, seen := bySlot[k]; !seen {
			bySlot[k] = l
		}
	}

	out := &TodaySchedule{
		Date:      dates.Format(today),
		Morning:   []TodayItem{},
		Afternoon: []TodayItem{},
		Night:     []TodayItem{},
	}
	for _, m := range meds {
		for _, slot := range m.Slots() {
			item := TodayItem{
				MedicineID:    m.ID,
				MedicineName:  m.Name,
				Dosage:        m.Dosage,
				TimeOfDay:     slot,
				Timing:        m.Timing,
				ScheduledTime: today.Add(slotTimes[slot]),
			}
			if l, ok := bySlot[slotKey{m.ID, slot}]; ok {
				id := l.ID
				item.LogID = &id
				item.Status = l.Status
				item.TakenAt = l.TakenAt
			} else if item.ScheduledTime.Before(now.Add(-missedGrace)) {
				item.Status = medication.StatusMissed
			} else {
				item.Status = medication.StatusPending
			}

			switch slot {
			case medication.SlotMorning:
				out.Morning = append(out.Morning, item)
			case medication.SlotAfternoon:
				out.Afternoon = append(out.Afternoon, item)
			default:
				out.Night = append(out.Night, item)
			}
			switch item.Status {
			case medication.StatusPending:
				out.TotalPending++
			case medication.StatusTaken:
				out.TotalTaken++
			case medication.StatusMissed:
				out.TotalMissed++
			}
		}
	}
	return out, nil
}

func (ms *medicineService) LogDose(ctx context.Context, userID, id uuid.UUID, in MedicineLogInput) (*types.MedicineLog, error) {
	slot := strings.ToLower(strings.TrimSpace(in.TimeOfDay))
	if !medication.ValidSlot(slot) {
		return nil, apierr.BadRequest("invalid_time_of_day", "time_of_day must be morning, afternoon or night")
	}
	status := strings.ToLower(strings.TrimSpace(in.Status))
	if status == "" {
		status = medication.StatusPending
	}
	if !medication.ValidStatus(status) {
		return nil, apierr.BadRequest("invalid_status", "status must be one of taken, missed, skipped, pending")
	}

	p, err := loadPatient(ctx, ms.profiles, userID)
	if err != nil {
		return nil, err
	}
	m, err := ms.get(ctx, p.ID, id)
	if err != nil {
		return nil, err
	}

	now := ms.now()
	scheduled := dates.Day(now).Add(slotTimes[slot])
	if in.ScheduledTime != nil {
		scheduled = in.ScheduledTime.UTC()
	}
	var takenAt *time.Time
	if status == medication.StatusTaken {
		t := now
		takenAt = &t
	}

	existing, err := ms.logs.FindForSlot(ctx, nil, m.ID, slot, dates.Day(scheduled))
	if err != nil {
		return nil, internalErr("log_medicine_failed", err)
	}
	if existing != nil {
		existing.Status = status
		if takenAt != nil {
			existing.TakenAt = takenAt
		}
		existing.Notes = in.Notes
		if err := ms.logs.Save(ctx, nil, existing); err != nil {
			return nil, internalErr("log_medicine_failed", fmt.Errorf("save log: %w", err))
		}
		return existing, nil
	}
	created, err := ms.logs.Create(ctx, nil, &types.MedicineLog{
		MedicineID:    m.ID,
		ScheduledTime: scheduled,
		TimeOfDay:     slot,
		TakenAt:       takenAt,
		Status:        status,
		Notes:         in.Notes,
	})
	if err != nil {
		return nil, internalErr("log_medicine_failed", fmt.Errorf("create log: %w", err))
	}
	return created, nil
}

func (ms *medicineService) Logs(ctx context.Context, userID, id uuid.UUID, limit int) ([]*types.MedicineLog, error) {
	p, err := loadPatient(ctx, ms.profiles, userID)
	if err != nil {
		return nil, err
	}
	if _, err := ms.get(ctx, p.ID, id); err != nil {
		return nil, err
	}
	out, err := ms.logs.ListByMedicine(ctx, nil, id, clampLimit(limit, 30, 200))
	if err != nil {
		return nil, internalErr("list_logs_failed", err)
	}
	return out, nil
}
