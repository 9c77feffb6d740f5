package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fitcoin-challenge/internal/metrics"
	"fitcoin-challenge/internal/models"
	"fitcoin-challenge/internal/repository"
	"fitcoin-challenge/pkg/logger"
)

// maxEuroAmount is the largest value the decimal(12,2) euro column holds
var maxEuroAmount = decimal.RequireFromString("9999999999.99")

type FundService struct {
	repo            *repository.Repository
	fitcoinsPerEuro int64
}

func NewFundService(repo *repository.Repository, opts Options) *FundService {
	opts = opts.withDefaults()
	return &FundService{repo: repo, fitcoinsPerEuro: opts.FitcoinsPerEuro}
}

// FitcoinsFor converts a euro amount to FitCoins, rounding down
func (s *FundService) FitcoinsFor(euros decimal.Decimal) int64 {
	return euros.Mul(decimal.NewFromInt(s.fitcoinsPerEuro)).Floor().IntPart()
}

// RequestFunds files a pending top-up for admin review
func (s *FundService) RequestFunds(ctx context.Context, userID uuid.UUID, euros decimal.Decimal) (*models.FundRequest, error) {
	if !euros.IsPositive() || !euros.Equal(euros.Round(2)) || euros.GreaterThan(maxEuroAmount) {
		return nil, ErrInvalidAmount
	}
	fitcoins := s.FitcoinsFor(euros)
	if fitcoins <= 0 {
		return nil, ErrInvalidAmount
	}

	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return nil, notFound("load user", err)
	}

	req := &models.FundRequest{
		UserID:        userID,
		EuroAmount:    euros,
		FitcoinAmount: fitcoins,
		Status:        models.FundRequestStatusPending,
	}
	if err := s.repo.CreateFundRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create fund request: %w", err)
	}

	metrics.RecordFundRequest(string(models.FundRequestStatusPending))
	logger.Log.Info("fund request created",
		zap.String("request_id", req.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("euro_amount", euros.StringFixed(2)),
		zap.Int64("fitcoin_amount", fitcoins),
	)
	return req, nil
}

// ApproveRequest credits the requester and adds the euros to the pool
func (s *FundService) ApproveRequest(ctx context.Context, requestID, adminID uuid.UUID) (*models.FundRequest, error) {
	var req *models.FundRequest
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		req, err = s.loadPending(ctx, tx, requestID, adminID)
		if err != nil {
			return err
		}

		if err := s.transition(ctx, tx, req, map[string]interface{}{
			"status":   models.FundRequestStatusApproved,
			"admin_id": adminID,
		}); err != nil {
			return err
		}

		desc := fmt.Sprintf("Bought FitCoins for €%s", req.EuroAmount.StringFixed(2))
		if err := credit(ctx, tx, req.UserID, req.FitcoinAmount, models.TransactionTypeFundApproved, req.ID, desc); err != nil {
			return err
		}
		if err := tx.IncrementSetting(ctx, models.SettingTotalEurosInSystem, req.EuroAmount); err != nil {
			return fmt.Errorf("update pool total: %w", err)
		}

		req.Status = models.FundRequestStatusApproved
		req.AdminID = &adminID
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordFundRequest(string(models.FundRequestStatusApproved))
	metrics.RecordCredit(req.FitcoinAmount)
	logger.Log.Info("fund request approved",
		zap.String("request_id", req.ID.String()),
		zap.String("admin_id", adminID.String()),
	)
	return req, nil
}

// RejectRequest closes a request without moving any funds
func (s *FundService) RejectRequest(ctx context.Context, requestID, adminID uuid.UUID, notes *string) (*models.FundRequest, error) {
	var req *models.FundRequest
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		req, err = s.loadPending(ctx, tx, requestID, adminID)
		if err != nil {
			return err
		}

		if err := s.transition(ctx, tx, req, map[string]interface{}{
			"status":   models.FundRequestStatusRejected,
			"admin_id": adminID,
			"notes":    notes,
		}); err != nil {
			return err
		}

		req.Status = models.FundRequestStatusRejected
		req.AdminID = &adminID
		req.Notes = notes
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordFundRequest(string(models.FundRequestStatusRejected))
	logger.Log.Info("fund request rejected",
		zap.String("request_id", req.ID.String()),
		zap.String("admin_id", adminID.String()),
	)
	return req, nil
}

// ListUserRequests returns the caller's own requests, newest first
func (s *FundService) ListUserRequests(ctx context.Context, userID uuid.UUID) ([]*models.FundRequest, error) {
	return s.repo.ListFundRequestsByUser(ctx, userID)
}

// ListPendingRequests returns the admin review queue
func (s *FundService) ListPendingRequests(ctx context.Context, adminID uuid.UUID) ([]*models.FundRequest, error) {
	if err := requireAdmin(ctx, s.repo, adminID); err != nil {
		return nil, err
	}
	return s.repo.ListFundRequestsByStatus(ctx, models.FundRequestStatusPending)
}

func (s *FundService) loadPending(
	ctx context.Context,
	tx *repository.Repository,
	requestID, adminID uuid.UUID,
) (*models.FundRequest, error) {
	if err := requireAdmin(ctx, tx, adminID); err != nil {
		return nil, err
	}
	req, err := tx.GetFundRequestByID(ctx, requestID)
	if err != nil {
		return nil, notFound("load fund request", err)
	}
	if req.Status != models.FundRequestStatusPending {
		return nil, ErrNotPending
	}
	return req, nil
}

func (s *FundService) transition(
	ctx context.Context,
	tx *repository.Repository,
	req *models.FundRequest,
	updates map[string]interface{},
) error {
	err := tx.TransitionFundRequest(ctx, req.ID, models.FundRequestStatusPending, updates)
	if errors.Is(err, repository.ErrConditionFailed) {
		return ErrNotPending
	}
	if err != nil {
		return fmt.Errorf("failed to update fund request: %w", err)
	}
	return nil
}
