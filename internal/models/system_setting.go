package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SettingTotalEurosInSystem = "total_euros_in_system"
	SettingChallengeEndDate   = "challenge_end_date" // unix seconds
)

// SystemSetting holds a process-wide numeric aggregate
type SystemSetting struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Key       string          `gorm:"size:100;uniqueIndex;not null" json:"key"`
	Value     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"value"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (SystemSetting) TableName() string {
	return "system_settings"
}
