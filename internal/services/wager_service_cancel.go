package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fitcoin-challenge/internal/metrics"
	"fitcoin-challenge/internal/models"
	"fitcoin-challenge/internal/repository"
	"fitcoin-challenge/pkg/logger"
)

// CancelWager withdraws an open wager and refunds its creator
func (s *WagerService) CancelWager(ctx context.Context, wagerID, userID uuid.UUID) (*models.Wager, error) {
	var wager *models.Wager
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		wager, err = tx.GetWagerByID(ctx, wagerID)
		if err != nil {
			return notFound("load wager", err)
		}
		if wager.CreatorID != userID {
			return ErrNotCreator
		}
		if wager.Status != models.WagerStatusOpen {
			return ErrWagerNotOpen
		}

		if err := refundOpenWager(ctx, tx, wager, "Cancelled wager refund"); err != nil {
			return err
		}
		wager.Status = models.WagerStatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordWager("cancelled")
	metrics.RecordCredit(wager.Amount)
	logger.Log.Info("wager cancelled",
		zap.String("wager_id", wager.ID.String()),
		zap.String("creator_id", userID.String()),
	)

	return wager, nil
}

// CloseOpenWagers refunds and cancels every OPEN wager once betting has
// closed. Matched wagers are left for resolution. Returns how many were refunded.
func (s *WagerService) CloseOpenWagers(ctx context.Context) (int, error) {
	closed, err := bettingClosed(ctx, s.repo, s.now())
	if err != nil {
		return 0, err
	}
	if !closed {
		return 0, nil
	}

	open, err := s.repo.ListWagersByStatus(ctx, models.WagerStatusOpen)
	if err != nil {
		return 0, fmt.Errorf("list open wagers: %w", err)
	}

	refunded := 0
	for _, w := range open {
		err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			return refundOpenWager(ctx, tx, w, "Betting closed refund")
		})
		if errors.Is(err, ErrWagerNotOpen) {
			// countered or cancelled since we listed it
			continue
		}
		if err != nil {
			return refunded, err
		}
		refunded++
		metrics.RecordWager("refunded")
		metrics.RecordCredit(w.Amount)
	}

	if refunded > 0 {
		logger.Log.Info("closed open wagers after end date", zap.Int("refunded", refunded))
	}
	return refunded, nil
}

// refundOpenWager moves an OPEN wager to CANCELLED and returns the stake to
// its creator. ErrWagerNotOpen if it was no longer open.
func refundOpenWager(ctx context.Context, tx *repository.Repository, w *models.Wager, description string) error {
	err := tx.TransitionWager(ctx, w.ID, models.WagerStatusOpen, map[string]interface{}{
		"status": models.WagerStatusCancelled,
	})
	if errors.Is(err, repository.ErrConditionFailed) {
		return ErrWagerNotOpen
	}
	if err != nil {
		return fmt.Errorf("failed to cancel wager: %w", err)
	}
	return credit(ctx, tx, w.CreatorID, w.Amount, models.TransactionTypeWagerRefunded, w.ID, description)
}
