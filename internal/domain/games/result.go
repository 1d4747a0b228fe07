package games

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeEmojiToWord = "emoji_to_word"
	TypeWordToEmoji = "word_to_emoji"
)

func ValidGameType(t string) bool { return t == TypeEmojiToWord || t == TypeWordToEmoji }

type Result struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PatientID   uuid.UUID `gorm:"type:uuid;not null;index;column:patient_id" json:"patient_id"`
	GameID      string    `gorm:"type:varchar(20);not null;column:game_id" json:"game_id"`
	GameType    string    `gorm:"type:varchar(20);not null;column:game_type" json:"game_type"`
	Score       int       `gorm:"not null" json:"score"`
	TimeSeconds *int      `gorm:"column:time_seconds" json:"time_seconds"`
	PlayedAt    time.Time `gorm:"not null;default:now();index;column:played_at" json:"played_at"`
}

func (Result) TableName() string { return "game_results" }
