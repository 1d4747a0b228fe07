package bites

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// StrokeBite is one patient's card set for one calendar day. Rows are
// insert-only; (patient_id, generated_date) is unique.
type StrokeBite struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PatientID          uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_stroke_bites_patient_date,priority:1;column:patient_id" json:"patient_id"`
	GeneratedDate      time.Time      `gorm:"type:date;not null;uniqueIndex:idx_stroke_bites_patient_date,priority:2;column:generated_date" json:"-"`
	CardsJSON          datatypes.JSON `gorm:"type:jsonb;not null;column:cards_json" json:"-"`
	StartCardID        string         `gorm:"type:varchar(20);not null;column:start_card_id" json:"start_card_id"`
	CardSequenceLength int            `gorm:"not null;default:8;column:card_sequence_length" json:"card_sequence_length"`
	CreatedAt          time.Time      `gorm:"not null;default:now();index" json:"created_at"`
}

func (StrokeBite) TableName() string { return "stroke_bites" }

type Answer struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BiteID        uuid.UUID `gorm:"type:uuid;not null;index;column:bite_id" json:"bite_id"`
	PatientID     uuid.UUID `gorm:"type:uuid;not null;index:idx_stroke_bite_answers_patient_created,priority:1;column:patient_id" json:"patient_id"`
	CardID        string    `gorm:"type:varchar(20);not null;column:card_id" json:"card_id"`
	SelectedKey   string    `gorm:"type:varchar(10);not null;column:selected_key" json:"selected_key"`
	QuestionText  *string   `gorm:"type:text;column:question_text" json:"question_text"`
	SelectedLabel *string   `gorm:"type:text;column:selected_label" json:"selected_label"`
	CreatedAt     time.Time `gorm:"not null;default:now();index:idx_stroke_bite_answers_patient_created,priority:2" json:"created_at"`
}

func (Answer) TableName() string { return "stroke_bite_answers" }
