package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a colleague taking part in the challenge
type User struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name              string     `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Email             *string    `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	PasswordHash      string     `gorm:"size:255" json:"-"`
	Balance           int64      `gorm:"not null;default:0" json:"balance"`
	IsAdmin           bool       `gorm:"not null;default:false" json:"is_admin"`
	GoalsSet          bool       `gorm:"not null;default:false" json:"goals_set"`
	AvatarURL         *string    `gorm:"size:500" json:"avatar_url,omitempty"`
	ResetToken        *string    `gorm:"size:64;index" json:"-"`
	ResetTokenExpires *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// PublicUser is the subset of a user shown to other players
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Balance   int64     `json:"balance"`
	GoalsSet  bool      `json:"goals_set"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Balance:   u.Balance,
		GoalsSet:  u.GoalsSet,
		AvatarURL: u.AvatarURL,
	}
}
