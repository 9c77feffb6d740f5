package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"fitcoin-challenge/internal/auth"
	"fitcoin-challenge/internal/models"
	"fitcoin-challenge/internal/repository"
	"fitcoin-challenge/internal/testutil"
)

type testEnv struct {
	db         *gorm.DB
	repo       *repository.Repository
	wagers     *WagerService
	funds      *FundService
	payouts    *PayoutService
	challenges *ChallengeService
	users      *UserService
	admin      *AdminService
	settings   *SettingsService
	admins     *models.User
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.BcryptCost = bcrypt.MinCost
	return opts
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	auth.InitJWT("test_secret", time.Hour)

	db := testutil.NewTestDB(t)
	repo := repository.NewRepository(db)
	opts := testOptions()

	return &testEnv{
		db:         db,
		repo:       repo,
		wagers:     NewWagerService(repo, opts),
		funds:      NewFundService(repo, opts),
		payouts:    NewPayoutService(repo),
		challenges: NewChallengeService(repo),
		users:      NewUserService(repo),
		admin:      NewAdminService(repo),
		settings:   NewSettingsService(repo),
		admins:     testutil.CreateAdmin(t, db, "admin"),
	}
}

func (e *testEnv) balance(t *testing.T, u *models.User) int64 {
	t.Helper()
	return testutil.Balance(t, e.db, u.ID)
}

func (e *testEnv) wager(t *testing.T, id interface{}) *models.Wager {
	t.Helper()
	var w models.Wager
	if err := e.db.Where("id = ?", id).First(&w).Error; err != nil {
		t.Fatalf("failed to load wager: %v", err)
	}
	return &w
}

func (e *testEnv) poolTotal(t *testing.T) decimal.Decimal {
	t.Helper()
	v, err := e.repo.GetSetting(context.Background(), models.SettingTotalEurosInSystem)
	if err != nil {
		t.Fatalf("failed to read pool total: %v", err)
	}
	return v
}

// issued is every FitCoin either held or escrowed
func (e *testEnv) issued(t *testing.T) int64 {
	t.Helper()
	ctx := context.Background()
	balances, err := e.repo.SumBalances(ctx)
	if err != nil {
		t.Fatalf("sum balances: %v", err)
	}
	escrowed, err := e.repo.SumEscrowed(ctx)
	if err != nil {
		t.Fatalf("sum escrowed: %v", err)
	}
	return balances + escrowed
}
