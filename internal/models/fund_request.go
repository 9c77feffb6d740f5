package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type FundRequestStatus string

const (
	FundRequestStatusPending  FundRequestStatus = "PENDING"
	FundRequestStatusApproved FundRequestStatus = "APPROVED"
	FundRequestStatusRejected FundRequestStatus = "REJECTED"
)

// FundRequest is a user's request to buy FitCoins with real currency
type FundRequest struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	EuroAmount    decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"euro_amount"`
	FitcoinAmount int64             `gorm:"not null" json:"fitcoin_amount"`
	Status        FundRequestStatus `gorm:"size:20;not null;default:PENDING;index" json:"status"`
	AdminID       *uuid.UUID        `gorm:"type:uuid" json:"admin_id,omitempty"`
	Notes         *string           `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func (FundRequest) TableName() string {
	return "fund_requests"
}

func (f *FundRequest) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// CreateFundRequestRequest represents a top-up request
type CreateFundRequestRequest struct {
	EuroAmount decimal.Decimal `json:"euro_amount"`
}

// RejectFundRequestRequest carries the admin's optional notes
type RejectFundRequestRequest struct {
	Notes *string `json:"notes" binding:"omitempty,max=1000"`
}
