package medication

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SlotMorning   = "morning"
	SlotAfternoon = "afternoon"
	SlotNight     = "night"

	StatusPending = "pending"
	StatusTaken   = "taken"
	StatusMissed  = "missed"
	StatusSkipped = "skipped"
)

var timings = map[string]bool{"before_food": true, "after_food": true, "with_food": true, "any_time": true}

func ValidTiming(s string) bool { return timings[s] }

func ValidSlot(s string) bool { return s == SlotMorning || s == SlotAfternoon || s == SlotNight }

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusTaken, StatusMissed, StatusSkipped:
		return true
	}
	return false
}

type Medicine struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PatientID uuid.UUID  `gorm:"type:uuid;not null;index;column:patient_id" json:"patient_id"`
	Name      string     `gorm:"type:varchar(255);not null" json:"name"`
	Dosage    *string    `gorm:"type:varchar(100)" json:"dosage"`
	Morning   bool       `gorm:"not null;default:false" json:"morning"`
	Afternoon bool       `gorm:"not null;default:false" json:"afternoon"`
	Night     bool       `gorm:"not null;default:false" json:"night"`
	Timing    string     `gorm:"type:varchar(20);not null;default:'any_time'" json:"timing"`
	StartDate time.Time  `gorm:"type:date;not null;column:start_date" json:"-"`
	EndDate   *time.Time `gorm:"type:date;column:end_date" json:"-"`
	Notes     *string    `gorm:"type:text" json:"notes"`
	IsActive  bool       `gorm:"not null;default:true;column:is_active" json:"is_active"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Medicine) TableName() string { return "medicines" }

// Slots lists the enabled time-of-day slots in display order.
func (m *Medicine) Slots() []string {
	out := make([]string, 0, 3)
	if m.Morning {
		out = append(out, SlotMorning)
	}
	if m.Afternoon {
		out = append(out, SlotAfternoon)
	}
	if m.Night {
		out = append(out, SlotNight)
	}
	return out
}

// ScheduleDisplay renders the prescription-style 1-0-1 pattern.
func (m *Medicine) ScheduleDisplay() string {
	bit := func(b bool) string {
		if b {
			return "1"
		}
		return "0"
	}
	return bit(m.Morning) + "-" + bit(m.Afternoon) + "-" + bit(m.Night)
}

type Log struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MedicineID    uuid.UUID  `gorm:"type:uuid;not null;index;column:medicine_id" json:"medicine_id"`
	ScheduledTime time.Time  `gorm:"not null;index;column:scheduled_time" json:"scheduled_time"`
	TimeOfDay     string     `gorm:"type:varchar(20);not null;column:time_of_day" json:"time_of_day"`
	TakenAt       *time.Time `gorm:"column:taken_at" json:"taken_at"`
	Status        string     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Notes         *string    `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`

	Medicine *Medicine `gorm:"foreignKey:MedicineID" json:"-"`
}

func (Log) TableName() string { return "medicine_logs" }

// Info is the shared, LLM-populated reference row for a medicine name.
type Info struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MedicineName string    `gorm:"type:varchar(255);not null;column:medicine_name" json:"medicine_name"`
	Combination  *string   `gorm:"type:text" json:"combination"`
	DrugClass    *string   `gorm:"type:varchar(255);column:drug_class" json:"drug_class"`
	UsedFor      *string   `gorm:"type:text;column:used_for" json:"used_for"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Info) TableName() string { return "medicine_info" }
