package journal

import (
	"time"

	"github.com/google/uuid"
)

var TherapyTypes = []string{"PT", "OT", "Speech", "Other"}

var feelingEmojis = map[int]string{1: "😫", 2: "😔", 3: "😐", 4: "🙂", 5: "😊"}
var feelingLabels = map[int]string{1: "Very Tired", 2: "Tired", 3: "Okay", 4: "Good", 5: "Great"}

type TherapySession struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PatientID       uuid.UUID `gorm:"type:uuid;not null;index;column:patient_id" json:"patient_id"`
	TherapyType     string    `gorm:"type:varchar(20);not null;column:therapy_type" json:"therapy_type"`
	SessionDate     time.Time `gorm:"type:date;not null;column:session_date" json:"-"`
	// SessionTime is HH:MM, stored as text to avoid driver time-of-day quirks.
	SessionTime     *string   `gorm:"type:varchar(5);column:session_time" json:"session_time"`
	DurationMinutes int       `gorm:"not null;column:duration_minutes" json:"duration_minutes"`
	Notes           *string   `gorm:"type:text" json:"notes"`
	FeelingRating   int       `gorm:"not null;column:feeling_rating" json:"feeling_rating"`
	FeelingNotes    *string   `gorm:"type:text;column:feeling_notes" json:"feeling_notes"`
	CreatedAt       time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (TherapySession) TableName() string { return "therapy_sessions" }

func ValidTherapyType(t string) bool {
	for _, v := range TherapyTypes {
		if v == t {
			return true
		}
	}
	return false
}

func FeelingEmoji(rating int) string {
	if e, ok := feelingEmojis[rating]; ok {
		return e
	}
	return feelingEmojis[3]
}

func FeelingLabel(rating int) string {
	if l, ok := feelingLabels[rating]; ok {
		return l
	}
	return feelingLabels[3]
}
