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

// ResolutionSummary reports what resolving a sub-challenge did
type ResolutionSummary struct {
	TargetUserID  uuid.UUID              `json:"target_user_id"`
	ChallengeType models.ChallengeType   `json:"challenge_type"`
	Outcome       models.ChallengeStatus `json:"outcome"`
	Settled       int                    `json:"settled"`
	Refunded      int                    `json:"refunded"`
	PaidOut       int64                  `json:"paid_out"`
}

// ResolveChallenge records the outcome of one sub-challenge and settles every
// wager on it: matched wagers pay the whole pot to the side that called it,
// open wagers are refunded. Each sub-challenge resolves once.
func (s *WagerService) ResolveChallenge(
	ctx context.Context,
	adminID uuid.UUID,
	targetUserID uuid.UUID,
	challengeType models.ChallengeType,
	outcome models.ChallengeStatus,
) (*ResolutionSummary, error) {
	summary := &ResolutionSummary{
		TargetUserID:  targetUserID,
		ChallengeType: challengeType,
		Outcome:       outcome,
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := requireAdmin(ctx, tx, adminID); err != nil {
			return err
		}
		if !outcome.IsOutcome() {
			return ErrInvalidOutcome
		}
		if !challengeType.IsResolvable() {
			return ErrInvalidChallengeType
		}

		if _, err := tx.GetChallengeByUserID(ctx, targetUserID); err != nil {
			return notFound("load challenge", err)
		}
		err := tx.ResolveChallengeStatus(ctx, targetUserID, challengeType, outcome)
		if errors.Is(err, repository.ErrConditionFailed) {
			return ErrChallengeAlreadyResolved
		}
		if err != nil {
			return fmt.Errorf("failed to update challenge: %w", err)
		}

		matched, err := tx.ListWagersOn(ctx, targetUserID, challengeType, models.WagerStatusMatched)
		if err != nil {
			return fmt.Errorf("list matched wagers: %w", err)
		}
		actualPass := outcome == models.ChallengeStatusPassed
		for _, w := range matched {
			if w.CounterID == nil {
				return fmt.Errorf("matched wager %s has no counter-party", w.ID)
			}
			winnerID := *w.CounterID
			if (w.Prediction == models.WagerPredictionPass) == actualPass {
				winnerID = w.CreatorID
			}
			pot := w.Amount * 2

			err := tx.TransitionWager(ctx, w.ID, models.WagerStatusMatched, map[string]interface{}{
				"status":    models.WagerStatusSettled,
				"winner_id": winnerID,
			})
			if err != nil {
				return fmt.Errorf("failed to settle wager %s: %w", w.ID, err)
			}
			desc := fmt.Sprintf("Won wager on %s goal", challengeType)
			if err := credit(ctx, tx, winnerID, pot, models.TransactionTypeWagerWon, w.ID, desc); err != nil {
				return err
			}
			summary.Settled++
			summary.PaidOut += pot
		}

		open, err := tx.ListWagersOn(ctx, targetUserID, challengeType, models.WagerStatusOpen)
		if err != nil {
			return fmt.Errorf("list open wagers: %w", err)
		}
		for _, w := range open {
			if err := refundOpenWager(ctx, tx, w, "Unmatched wager refund"); err != nil {
				return err
			}
			summary.Refunded++
			summary.PaidOut += w.Amount
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordResolution(string(challengeType), string(outcome))
	metrics.RecordCredit(summary.PaidOut)
	metrics.RecordWagers("settled", summary.Settled)
	metrics.RecordWagers("refunded", summary.Refunded)
	logger.Log.Info("challenge resolved",
		zap.String("admin_id", adminID.String()),
		zap.String("target_user_id", targetUserID.String()),
		zap.String("challenge_type", string(challengeType)),
		zap.String("outcome", string(outcome)),
		zap.Int("settled", summary.Settled),
		zap.Int("refunded", summary.Refunded),
		zap.Int64("paid_out", summary.PaidOut),
	)

	return summary, nil
}
