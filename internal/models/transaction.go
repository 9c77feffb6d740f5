package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TransactionTypeSignupBonus    TransactionType = "signup_bonus"
	TransactionTypeWagerPlaced    TransactionType = "wager_placed"
	TransactionTypeWagerCountered TransactionType = "wager_countered"
	TransactionTypeWagerRefunded  TransactionType = "wager_refunded"
	TransactionTypeWagerWon       TransactionType = "wager_won"
	TransactionTypeFundApproved   TransactionType = "fund_approved"
)

// Transaction represents a FitCoin balance movement shown in a user's history
type Transaction struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Type         TransactionType `gorm:"size:50;not null;index" json:"type"`
	Amount       int64           `gorm:"not null" json:"amount"` // negative for debits
	BalanceAfter int64           `gorm:"not null" json:"balance_after"`
	ReferenceID  *uuid.UUID      `gorm:"type:uuid;index" json:"reference_id,omitempty"`
	Description  string          `gorm:"type:text" json:"description"`
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for Transaction model
func (Transaction) TableName() string {
	return "transactions"
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
