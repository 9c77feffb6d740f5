package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WagerStatus string

const (
	WagerStatusOpen      WagerStatus = "OPEN"
	WagerStatusMatched   WagerStatus = "MATCHED"
	WagerStatusSettled   WagerStatus = "SETTLED"
	WagerStatusCancelled WagerStatus = "CANCELLED"
)

type WagerPrediction string

const (
	WagerPredictionPass WagerPrediction = "PASS"
	WagerPredictionFail WagerPrediction = "FAIL"
)

func (p WagerPrediction) IsValid() bool {
	return p == WagerPredictionPass || p == WagerPredictionFail
}

// Wager is a bet on whether the target user will pass one of their goals
type Wager struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CreatorID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"creator_id"`
	Creator       *User           `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	TargetUserID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_wagers_target_type" json:"target_user_id"`
	TargetUser    *User           `gorm:"foreignKey:TargetUserID" json:"target_user,omitempty"`
	ChallengeType ChallengeType   `gorm:"size:20;not null;index:idx_wagers_target_type" json:"challenge_type"`
	Prediction    WagerPrediction `gorm:"size:10;not null" json:"prediction"`
	Amount        int64           `gorm:"not null" json:"amount"`
	Status        WagerStatus     `gorm:"size:20;not null;default:OPEN;index" json:"status"`
	CounterID     *uuid.UUID      `gorm:"type:uuid;index" json:"counter_id,omitempty"`
	Counter       *User           `gorm:"foreignKey:CounterID" json:"counter,omitempty"`
	WinnerID      *uuid.UUID      `gorm:"type:uuid" json:"winner_id,omitempty"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Wager) TableName() string {
	return "wagers"
}

func (w *Wager) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// CreateWagerRequest represents the request to place a wager
type CreateWagerRequest struct {
	TargetUserID  uuid.UUID       `json:"target_user_id" binding:"required"`
	ChallengeType ChallengeType   `json:"challenge_type" binding:"required,oneof=DEXA FUNCTIONAL BOTH"`
	Prediction    WagerPrediction `json:"prediction" binding:"required,oneof=PASS FAIL"`
	Amount        int64           `json:"amount" binding:"required,min=1"`
}

// WagerResponse is a wager together with its share code
type WagerResponse struct {
	*Wager
	ShareCode string `json:"share_code"`
}
