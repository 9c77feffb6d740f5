package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"

	"fitcoin-challenge/internal/metrics"
	"fitcoin-challenge/internal/models"
	"fitcoin-challenge/internal/repository"
	"fitcoin-challenge/pkg/logger"
)

type WagerService struct {
	repo      *repository.Repository
	feedLimit int
	now       func() time.Time
}

func NewWagerService(repo *repository.Repository, opts Options) *WagerService {
	opts = opts.withDefaults()
	return &WagerService{
		repo:      repo,
		feedLimit: opts.WagerFeedLimit,
		now:       time.Now,
	}
}

// CreateWager places one wager per sub-challenge the request covers and
// escrows the stake from the creator. BOTH charges the amount twice.
func (s *WagerService) CreateWager(
	ctx context.Context,
	creatorID uuid.UUID,
	req *models.CreateWagerRequest,
) ([]*models.Wager, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	types := req.ChallengeType.Expand()
	if types == nil {
		return nil, ErrInvalidChallengeType
	}
	if !req.Prediction.IsValid() {
		return nil, ErrInvalidPrediction
	}
	if req.Amount > math.MaxInt64/int64(len(types)) {
		return nil, ErrInvalidAmount
	}

	var wagers []*models.Wager
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		closed, err := bettingClosed(ctx, tx, s.now())
		if err != nil {
			return err
		}
		if closed {
			return ErrBettingClosed
		}

		if _, err := tx.GetUserByID(ctx, creatorID); err != nil {
			return notFound("load creator", err)
		}
		target, err := tx.GetUserByID(ctx, req.TargetUserID)
		if err != nil {
			return notFound("load target user", err)
		}
		challenge, err := tx.GetChallengeByUserID(ctx, req.TargetUserID)
		if err != nil {
			return notFound("load challenge", err)
		}

		for _, t := range types {
			if challenge.StatusOf(t) != models.ChallengeStatusPending {
				return fmt.Errorf("%s goal of %s: %w", t, target.Name, ErrChallengeResolved)
			}
		}

		for _, t := range types {
			wager := &models.Wager{
				ID:            uuid.New(),
				CreatorID:     creatorID,
				TargetUserID:  req.TargetUserID,
				ChallengeType: t,
				Prediction:    req.Prediction,
				Amount:        req.Amount,
				Status:        models.WagerStatusOpen,
			}

			desc := fmt.Sprintf("Wager: %s will %s %s goal", target.Name, req.Prediction, t)
			if err := debit(ctx, tx, creatorID, req.Amount, models.TransactionTypeWagerPlaced, wager.ID, desc); err != nil {
				return err
			}
			if err := tx.CreateWager(ctx, wager); err != nil {
				return fmt.Errorf("failed to create wager: %w", err)
			}
			wagers = append(wagers, wager)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, w := range wagers {
		metrics.RecordWager("created")
		metrics.RecordDebit(w.Amount)
		logger.Log.Info("wager created",
			zap.String("wager_id", w.ID.String()),
			zap.String("creator_id", creatorID.String()),
			zap.String("target_user_id", w.TargetUserID.String()),
			zap.String("challenge_type", string(w.ChallengeType)),
			zap.Int64("amount", w.Amount),
		)
	}

	return wagers, nil
}

// CounterWager takes the opposite side of an open wager, escrowing the same
// stake from the counter-party.
func (s *WagerService) CounterWager(ctx context.Context, wagerID, counterID uuid.UUID) (*models.Wager, error) {
	var wager *models.Wager
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		closed, err := bettingClosed(ctx, tx, s.now())
		if err != nil {
			return err
		}
		if closed {
			return ErrBettingClosed
		}

		wager, err = tx.GetWagerByID(ctx, wagerID)
		if err != nil {
			return notFound("load wager", err)
		}
		if wager.Status != models.WagerStatusOpen {
			return ErrWagerNotOpen
		}
		if wager.CreatorID == counterID {
			return ErrSelfCounter
		}
		if _, err := tx.GetUserByID(ctx, counterID); err != nil {
			return notFound("load counter-party", err)
		}

		desc := fmt.Sprintf("Countered wager on %s goal", wager.ChallengeType)
		if err := debit(ctx, tx, counterID, wager.Amount, models.TransactionTypeWagerCountered, wager.ID, desc); err != nil {
			return err
		}

		err = tx.TransitionWager(ctx, wager.ID, models.WagerStatusOpen, map[string]interface{}{
			"status":     models.WagerStatusMatched,
			"counter_id": counterID,
		})
		if errors.Is(err, repository.ErrConditionFailed) {
			return ErrWagerNotOpen
		}
		if err != nil {
			return fmt.Errorf("failed to match wager: %w", err)
		}

		wager, err = tx.GetWagerByID(ctx, wager.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordWager("countered")
	metrics.RecordDebit(wager.Amount)
	logger.Log.Info("wager countered",
		zap.String("wager_id", wager.ID.String()),
		zap.String("counter_id", counterID.String()),
	)

	return wager, nil
}

// GetWager retrieves a wager with its participants
func (s *WagerService) GetWager(ctx context.Context, wagerID uuid.UUID) (*models.Wager, error) {
	wager, err := s.repo.GetWagerByID(ctx, wagerID)
	if err != nil {
		return nil, notFound("load wager", err)
	}
	return wager, nil
}

// GetWagerByShareCode resolves a share code produced by ShareCode
func (s *WagerService) GetWagerByShareCode(ctx context.Context, code string) (*models.Wager, error) {
	raw, err := base58.Decode(code)
	if err != nil {
		return nil, fmt.Errorf("decode share code: %w", ErrNotFound)
	}
	id, err := uuid.FromBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("decode share code: %w", ErrNotFound)
	}
	return s.GetWager(ctx, id)
}

// ListRecentWagers returns the public wager feed
func (s *WagerService) ListRecentWagers(ctx context.Context) ([]*models.Wager, error) {
	return s.repo.ListRecentWagers(ctx, s.feedLimit)
}

// ListUserWagers returns wagers the user created or countered
func (s *WagerService) ListUserWagers(ctx context.Context, userID uuid.UUID) ([]*models.Wager, error) {
	return s.repo.ListUserWagers(ctx, userID)
}

// ShareCode is a compact, URL-safe handle for a wager
func ShareCode(wagerID uuid.UUID) string {
	return base58.Encode(wagerID[:])
}

// NewWagerResponse attaches the share code to a wager
func NewWagerResponse(w *models.Wager) models.WagerResponse {
	return models.WagerResponse{Wager: w, ShareCode: ShareCode(w.ID)}
}
