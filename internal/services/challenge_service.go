package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fitcoin-challenge/internal/models"
	"fitcoin-challenge/internal/repository"
	"fitcoin-challenge/pkg/logger"
)

const recentChallengesLimit = 10

type ChallengeService struct {
	repo *repository.Repository
}

func NewChallengeService(repo *repository.Repository) *ChallengeService {
	return &ChallengeService{repo: repo}
}

// CreateChallenge records the user's two goals. Each user sets goals once.
func (s *ChallengeService) CreateChallenge(
	ctx context.Context,
	userID uuid.UUID,
	dexaGoal, functionalGoal string,
) (*models.Challenge, error) {
	dexaGoal = strings.TrimSpace(dexaGoal)
	functionalGoal = strings.TrimSpace(functionalGoal)
	if dexaGoal == "" || functionalGoal == "" {
		return nil, ErrInvalidGoal
	}

	challenge := &models.Challenge{
		UserID:           userID,
		DexaGoal:         dexaGoal,
		DexaStatus:       models.ChallengeStatusPending,
		FunctionalGoal:   functionalGoal,
		FunctionalStatus: models.ChallengeStatusPending,
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := tx.GetUserByID(ctx, userID); err != nil {
			return notFound("load user", err)
		}
		_, err := tx.GetChallengeByUserID(ctx, userID)
		if err == nil {
			return ErrChallengeAlreadyExists
		}
		if !repository.IsNotFound(err) {
			return fmt.Errorf("check existing challenge: %w", err)
		}

		if err := tx.CreateChallenge(ctx, challenge); err != nil {
			if repository.IsDuplicate(err) {
				return ErrChallengeAlreadyExists
			}
			return fmt.Errorf("failed to create challenge: %w", err)
		}
		return tx.UpdateUser(ctx, userID, map[string]interface{}{"goals_set": true})
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("challenge created", zap.String("user_id", userID.String()))
	return challenge, nil
}

// GetUserChallenge returns the challenge owned by userID
func (s *ChallengeService) GetUserChallenge(ctx context.Context, userID uuid.UUID) (*models.Challenge, error) {
	challenge, err := s.repo.GetChallengeByUserID(ctx, userID)
	if err != nil {
		return nil, notFound("load challenge", err)
	}
	return challenge, nil
}

func (s *ChallengeService) ListRecentChallenges(ctx context.Context) ([]*models.Challenge, error) {
	return s.repo.ListRecentChallenges(ctx, recentChallengesLimit)
}

func (s *ChallengeService) ListChallenges(ctx context.Context) ([]*models.Challenge, error) {
	return s.repo.ListRecentChallenges(ctx, 0)
}
