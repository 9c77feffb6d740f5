package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fitcoin-challenge/internal/models"
)

// GetSetting returns the value stored under key, or zero if it was never set
func (r *Repository) GetSetting(ctx context.Context, key string) (decimal.Decimal, error) {
	var setting models.SystemSetting
	err := r.db.WithContext(ctx).Where(&models.SystemSetting{Key: key}).First(&setting).Error
	if IsNotFound(err) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return setting.Value, nil
}

// SetSetting stores value under key, creating the row if needed
func (r *Repository) SetSetting(ctx context.Context, key string, value decimal.Decimal) error {
	setting := models.SystemSetting{Key: key, Value: value}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": time.Now(),
		}),
	}).Create(&setting).Error
}

// IncrementSetting atomically adds delta to the value under key
func (r *Repository) IncrementSetting(ctx context.Context, key string, delta decimal.Decimal) error {
	setting := models.SystemSetting{Key: key, Value: delta}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      gorm.Expr("system_settings.value + ?", delta),
			"updated_at": time.Now(),
		}),
	}).Create(&setting).Error
}
