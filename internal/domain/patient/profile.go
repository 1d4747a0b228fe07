package patient

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	StrokeIschemic    = "ischemic"
	StrokeHemorrhagic = "hemorrhagic"
	StrokeTBI         = "tbi"
	StrokeUnspecified = "unspecified"
)

var strokeTypes = map[string]bool{
	StrokeIschemic: true, StrokeHemorrhagic: true, StrokeTBI: true, StrokeUnspecified: true,
}

var affectedSides = map[string]bool{"left": true, "right": true, "both": true, "unknown": true}

// Profile is the onboarding record; every patient-scoped row hangs off its ID.
type Profile struct {
	ID                  uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID              uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex;column:user_id" json:"user_id"`
	StrokeDate          *time.Time     `gorm:"type:date;column:stroke_date" json:"-"`
	StrokeType          *string        `gorm:"type:varchar(50);column:stroke_type" json:"stroke_type"`
	AffectedSide        *string        `gorm:"type:varchar(20);column:affected_side" json:"affected_side"`
	CurrentTherapies    pq.StringArray `gorm:"type:text[];column:current_therapies" json:"current_therapies"`
	OnboardingCompleted bool           `gorm:"not null;default:false;column:onboarding_completed" json:"onboarding_completed"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Profile) TableName() string { return "patient_profiles" }

func ValidStrokeType(s string) bool   { return strokeTypes[s] }
func ValidAffectedSide(s string) bool { return affectedSides[s] }
