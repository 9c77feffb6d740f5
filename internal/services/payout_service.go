package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fitcoin-challenge/internal/models"
	"fitcoin-challenge/internal/repository"
)

// PayoutInfo is a user's projected share of the euro pool
type PayoutInfo struct {
	Balance            int64           `json:"balance"`
	TotalFitcoins      int64           `json:"total_fitcoins"`
	TotalEurosInSystem decimal.Decimal `json:"total_euros_in_system"`
	Payout             decimal.Decimal `json:"payout"`
}

type PayoutService struct {
	repo *repository.Repository
}

func NewPayoutService(repo *repository.Repository) *PayoutService {
	return &PayoutService{repo: repo}
}

// ComputePayout returns what the user would cash out if the pool were split
// now, proportionally to FitCoin holdings.
func (ps *PayoutService) ComputePayout(ctx context.Context, userID uuid.UUID) (*PayoutInfo, error) {
	user, err := ps.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, notFound("load user", err)
	}
	total, err := ps.repo.SumBalances(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum balances: %w", err)
	}
	euros, err := ps.repo.GetSetting(ctx, models.SettingTotalEurosInSystem)
	if err != nil {
		return nil, fmt.Errorf("load pool total: %w", err)
	}

	return &PayoutInfo{
		Balance:            user.Balance,
		TotalFitcoins:      total,
		TotalEurosInSystem: euros,
		Payout:             CalculatePayout(user.Balance, total, euros),
	}, nil
}

// CalculatePayout is balance / totalFitcoins × totalEuros rounded half away
// from zero to cents. Zero when nobody holds any FitCoins.
func CalculatePayout(balance, totalFitcoins int64, totalEuros decimal.Decimal) decimal.Decimal {
	if totalFitcoins <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(balance).
		Mul(totalEuros).
		Div(decimal.NewFromInt(totalFitcoins)).
		Round(2)
}
