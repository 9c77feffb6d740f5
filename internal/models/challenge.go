package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChallengeStatus string

const (
	ChallengeStatusPending ChallengeStatus = "PENDING"
	ChallengeStatusPassed  ChallengeStatus = "PASSED"
	ChallengeStatusFailed  ChallengeStatus = "FAILED"
)

func (s ChallengeStatus) IsOutcome() bool {
	return s == ChallengeStatusPassed || s == ChallengeStatusFailed
}

type ChallengeType string

const (
	ChallengeTypeDexa       ChallengeType = "DEXA"
	ChallengeTypeFunctional ChallengeType = "FUNCTIONAL"
	// ChallengeTypeBoth is only accepted on wager creation, where it expands
	// into one wager per sub-type.
	ChallengeTypeBoth ChallengeType = "BOTH"
)

func (t ChallengeType) IsResolvable() bool {
	return t == ChallengeTypeDexa || t == ChallengeTypeFunctional
}

// Expand returns the resolvable sub-types a wager request covers
func (t ChallengeType) Expand() []ChallengeType {
	switch t {
	case ChallengeTypeDexa, ChallengeTypeFunctional:
		return []ChallengeType{t}
	case ChallengeTypeBoth:
		return []ChallengeType{ChallengeTypeDexa, ChallengeTypeFunctional}
	default:
		return nil
	}
}

// StatusColumn is the challenges column holding this sub-type's status
func (t ChallengeType) StatusColumn() string {
	if t == ChallengeTypeDexa {
		return "dexa_status"
	}
	return "functional_status"
}

// Challenge holds a user's biological (DEXA) and functional goals
type Challenge struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User             *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	DexaGoal         string          `gorm:"type:text;not null" json:"dexa_goal"`
	DexaStatus       ChallengeStatus `gorm:"size:20;not null;default:PENDING" json:"dexa_status"`
	FunctionalGoal   string          `gorm:"type:text;not null" json:"functional_goal"`
	FunctionalStatus ChallengeStatus `gorm:"size:20;not null;default:PENDING" json:"functional_status"`
	CreatedAt        time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (Challenge) TableName() string {
	return "challenges"
}

func (c *Challenge) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// StatusOf returns the status of one sub-challenge
func (c *Challenge) StatusOf(t ChallengeType) ChallengeStatus {
	if t == ChallengeTypeDexa {
		return c.DexaStatus
	}
	return c.FunctionalStatus
}

// CreateChallengeRequest represents the request to set a user's goals
type CreateChallengeRequest struct {
	DexaGoal       string `json:"dexa_goal" binding:"required,max=2000"`
	FunctionalGoal string `json:"functional_goal" binding:"required,max=2000"`
}

// ResolveChallengeRequest represents an admin resolving one sub-challenge
type ResolveChallengeRequest struct {
	ChallengeType ChallengeType   `json:"challenge_type" binding:"required,oneof=DEXA FUNCTIONAL"`
	Outcome       ChallengeStatus `json:"outcome" binding:"required,oneof=PASSED FAILED"`
}
