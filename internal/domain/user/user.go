package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RolePatient   = "patient"
	RoleCaregiver = "caregiver"

	ProviderEmail = "email"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null;column:email" json:"email"`
	PasswordHash *string   `gorm:"type:varchar(255);column:password_hash" json:"-"`
	AuthProvider string    `gorm:"type:varchar(20);not null;default:'email';column:auth_provider" json:"auth_provider"`
	Role         string    `gorm:"type:varchar(20);not null;default:'patient';column:role" json:"role"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

func ValidRole(r string) bool { return r == RolePatient || r == RoleCaregiver }
