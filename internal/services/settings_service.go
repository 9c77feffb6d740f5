package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fitcoin-challenge/internal/models"
	"fitcoin-challenge/internal/repository"
)

// Settings is the public view of the system settings
type Settings struct {
	TotalEurosInSystem decimal.Decimal `json:"total_euros_in_system"`
	ChallengeEndDate   *time.Time      `json:"challenge_end_date"`
}

type SettingsService struct {
	repo *repository.Repository
}

func NewSettingsService(repo *repository.Repository) *SettingsService {
	return &SettingsService{repo: repo}
}

// GetSettings returns the pool total and the challenge end date, if any
func (s *SettingsService) GetSettings(ctx context.Context) (*Settings, error) {
	euros, err := s.repo.GetSetting(ctx, models.SettingTotalEurosInSystem)
	if err != nil {
		return nil, fmt.Errorf("load pool total: %w", err)
	}
	end, err := challengeEndDate(ctx, s.repo)
	if err != nil {
		return nil, err
	}
	return &Settings{TotalEurosInSystem: euros, ChallengeEndDate: end}, nil
}

// SetChallengeEndDate moves the betting deadline. A zero time clears it; any
// other time must be after the Unix epoch since 0 is stored as "unset".
func (s *SettingsService) SetChallengeEndDate(ctx context.Context, adminID uuid.UUID, end time.Time) error {
	if !end.IsZero() && end.Unix() <= 0 {
		return fmt.Errorf("challenge end date must be after 1970-01-01: %w", ErrInvalidInput)
	}
	return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := requireAdmin(ctx, tx, adminID); err != nil {
			return err
		}
		value := decimal.Zero
		if !end.IsZero() {
			value = decimal.NewFromInt(end.Unix())
		}
		if err := tx.SetSetting(ctx, models.SettingChallengeEndDate, value); err != nil {
			return fmt.Errorf("store end date: %w", err)
		}
		return nil
	})
}

// challengeEndDate returns nil while no end date is configured
func challengeEndDate(ctx context.Context, repo *repository.Repository) (*time.Time, error) {
	value, err := repo.GetSetting(ctx, models.SettingChallengeEndDate)
	if err != nil {
		return nil, fmt.Errorf("load end date: %w", err)
	}
	if value.Sign() <= 0 {
		return nil, nil
	}
	end := time.Unix(value.IntPart(), 0).UTC()
	return &end, nil
}

// bettingClosed reports whether now is past the challenge end date
func bettingClosed(ctx context.Context, repo *repository.Repository, now time.Time) (bool, error) {
	end, err := challengeEndDate(ctx, repo)
	if err != nil {
		return false, err
	}
	return end != nil && now.After(*end), nil
}
