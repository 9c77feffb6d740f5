package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fitcoin-challenge/internal/models"
	"fitcoin-challenge/internal/repository"
	"fitcoin-challenge/pkg/logger"
)

// LedgerStats summarises where every issued FitCoin currently sits
type LedgerStats struct {
	TotalBalances      int64                        `json:"total_balances"`
	Escrowed           int64                        `json:"escrowed"`
	Issued             int64                        `json:"issued"`
	WagersByStatus     map[models.WagerStatus]int64 `json:"wagers_by_status"`
	TotalEurosInSystem decimal.Decimal              `json:"total_euros_in_system"`
}

type AdminService struct {
	repo *repository.Repository
}

func NewAdminService(repo *repository.Repository) *AdminService {
	return &AdminService{repo: repo}
}

// IsAdmin checks if a user is an admin
func (s *AdminService) IsAdmin(ctx context.Context, userID uuid.UUID) bool {
	return requireAdmin(ctx, s.repo, userID) == nil
}

// SetAdmin grants or revokes admin rights. Admins cannot demote themselves.
func (s *AdminService) SetAdmin(ctx context.Context, adminID, userID uuid.UUID, isAdmin bool) (*models.User, error) {
	var user *models.User
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := requireAdmin(ctx, tx, adminID); err != nil {
			return err
		}
		if adminID == userID && !isAdmin {
			return fmt.Errorf("demote self: %w", ErrInvalidInput)
		}
		if err := tx.UpdateUser(ctx, userID, map[string]interface{}{"is_admin": isAdmin}); err != nil {
			return notFound("update user", err)
		}
		var err error
		user, err = tx.GetUserByID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("admin flag changed",
		zap.String("admin_id", adminID.String()),
		zap.String("user_id", userID.String()),
		zap.Bool("is_admin", isAdmin),
	)
	return user, nil
}

// PromoteByName marks the named user as admin. Used for bootstrapping the
// first admin from the command line.
func (s *AdminService) PromoteByName(ctx context.Context, name string) error {
	user, err := s.repo.GetUserByName(ctx, name)
	if err != nil {
		return notFound("find user", err)
	}
	if err := s.repo.UpdateUser(ctx, user.ID, map[string]interface{}{"is_admin": true}); err != nil {
		return fmt.Errorf("promote user: %w", err)
	}
	logger.Log.Info("user promoted to admin", zap.String("name", name))
	return nil
}

// GetLedgerStats returns balance and escrow totals for reconciliation
func (s *AdminService) GetLedgerStats(ctx context.Context, adminID uuid.UUID) (*LedgerStats, error) {
	if err := requireAdmin(ctx, s.repo, adminID); err != nil {
		return nil, err
	}

	stats := &LedgerStats{}
	var err error
	if stats.TotalBalances, err = s.repo.SumBalances(ctx); err != nil {
		return nil, fmt.Errorf("sum balances: %w", err)
	}
	if stats.Escrowed, err = s.repo.SumEscrowed(ctx); err != nil {
		return nil, fmt.Errorf("sum escrow: %w", err)
	}
	if stats.WagersByStatus, err = s.repo.CountWagersByStatus(ctx); err != nil {
		return nil, fmt.Errorf("count wagers: %w", err)
	}
	if stats.TotalEurosInSystem, err = s.repo.GetSetting(ctx, models.SettingTotalEurosInSystem); err != nil {
		return nil, fmt.Errorf("load pool total: %w", err)
	}
	stats.Issued = stats.TotalBalances + stats.Escrowed
	return stats, nil
}

// requireAdmin returns ErrUnauthorized unless userID names an admin
func requireAdmin(ctx context.Context, repo *repository.Repository, userID uuid.UUID) error {
	user, err := repo.GetUserByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrUnauthorized
		}
		return fmt.Errorf("load caller: %w", err)
	}
	if !user.IsAdmin {
		return ErrUnauthorized
	}
	return nil
}
