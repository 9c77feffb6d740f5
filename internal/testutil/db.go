// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fitcoin-challenge/internal/database"
	"fitcoin-challenge/internal/models"
)

// NewTestDB returns a migrated in-memory SQLite database private to the test.
// It holds a single connection so concurrent callers queue instead of hitting
// SQLITE_BUSY.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open(sqlite.Open("file:" + uuid.NewString() + "?mode=memory&cache=shared"))
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

// CreateUser inserts a user with the given balance.
func CreateUser(t testing.TB, db *gorm.DB, name string, balance int64) *models.User {
	t.Helper()

	user := &models.User{Name: name, Balance: balance}
	if err := db.WithContext(context.Background()).Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", name, err)
	}
	return user
}

// CreateAdmin inserts a user flagged as admin.
func CreateAdmin(t testing.TB, db *gorm.DB, name string) *models.User {
	t.Helper()

	user := &models.User{Name: name, IsAdmin: true}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create admin %s: %v", name, err)
	}
	return user
}

// CreateChallenge inserts a pending challenge for the user.
func CreateChallenge(t testing.TB, db *gorm.DB, userID uuid.UUID) *models.Challenge {
	t.Helper()

	challenge := &models.Challenge{
		UserID:           userID,
		DexaGoal:         "Drop body fat to 15%",
		DexaStatus:       models.ChallengeStatusPending,
		FunctionalGoal:   "Run 5km under 25 minutes",
		FunctionalStatus: models.ChallengeStatusPending,
	}
	if err := db.Create(challenge).Error; err != nil {
		t.Fatalf("failed to create challenge: %v", err)
	}
	if err := db.Model(&models.User{}).Where("id = ?", userID).Update("goals_set", true).Error; err != nil {
		t.Fatalf("failed to set goals_set: %v", err)
	}
	return challenge
}

// Balance reads a user's current balance.
func Balance(t testing.TB, db *gorm.DB, userID uuid.UUID) int64 {
	t.Helper()

	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		t.Fatalf("failed to load user: %v", err)
	}
	return user.Balance
}
