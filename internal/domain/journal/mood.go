package journal

import (
	"time"

	"github.com/google/uuid"
)

var moodEmojis = map[int]string{1: "😢", 2: "😔", 3: "😐", 4: "🙂", 5: "😊"}
var moodLabels = map[int]string{1: "Very Bad", 2: "Bad", 3: "Okay", 4: "Good", 5: "Great"}

type MoodEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PatientID uuid.UUID `gorm:"type:uuid;not null;index;column:patient_id" json:"patient_id"`
	EntryDate time.Time `gorm:"type:date;not null;column:entry_date" json:"-"`
	MoodLevel int       `gorm:"not null;column:mood_level" json:"mood_level"`
	Notes     *string   `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (MoodEntry) TableName() string { return "mood_entries" }

func MoodEmoji(level int) string {
	if e, ok := moodEmojis[level]; ok {
		return e
	}
	return moodEmojis[3]
}

func MoodLabel(level int) string {
	if l, ok := moodLabels[level]; ok {
		return l
	}
	return moodLabels[3]
}
