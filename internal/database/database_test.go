package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"fitcoin-challenge/internal/models"
)

func TestHealthCheck(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectPing()
	assert.NoError(t, HealthCheck(context.Background(), sqlDB))

	mock.ExpectPing().WillReturnError(errors.New("connection reset"))
	assert.Error(t, HealthCheck(context.Background(), sqlDB))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateSeedsSettingsOnce(t *testing.T) {
	db, err := Open(sqlite.Open("file:" + uuid.NewString() + "?mode=memory&cache=shared"))
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	require.NoError(t, db.Model(&models.SystemSetting{}).
		Where(&models.SystemSetting{Key: models.SettingTotalEurosInSystem}).
		Update("value", decimal.NewFromInt(42)).Error)

	// a second run must not reset existing values
	require.NoError(t, Migrate(db))

	var settings []models.SystemSetting
	require.NoError(t, db.Order("id").Find(&settings).Error)
	require.Len(t, settings, 2)
	assert.Equal(t, models.SettingTotalEurosInSystem, settings[0].Key)
	assert.True(t, settings[0].Value.Equal(decimal.NewFromInt(42)))
	assert.Equal(t, models.SettingChallengeEndDate, settings[1].Key)
}
