package journal

import (
	"time"

	"github.com/google/uuid"
)

type AilmentEntry struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PatientID    uuid.UUID `gorm:"type:uuid;not null;index;column:patient_id" json:"patient_id"`
	EntryDate    time.Time `gorm:"type:date;not null;column:entry_date" json:"-"`
	Symptom      string    `gorm:"type:varchar(50);not null" json:"symptom"`
	BodyLocation *string   `gorm:"type:varchar(50);column:body_location" json:"body_location"`
	Severity     int       `gorm:"not null" json:"severity"`
	Notes        *string   `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (AilmentEntry) TableName() string { return "ailment_entries" }

// SeverityLabel buckets the 1-10 scale into Mild (<=3), Moderate (<=6) and Severe.
func SeverityLabel(severity int) string {
	switch {
	case severity <= 3:
		return "Mild"
	case severity <= 6:
		return "Moderate"
	}
	return "Severe"
}

func SeverityColor(severity int) string {
	switch {
	case severity <= 3:
		return "#10B981"
	case severity <= 6:
		return "#F59E0B"
	}
	return "#EF4444"
}
