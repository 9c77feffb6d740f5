package repository

import (
	"context"

	"github.com/google/uuid"

	"fitcoin-challenge/internal/models"
)

func (r *Repository) CreateChallenge(ctx context.Context, challenge *models.Challenge) error {
	return r.db.WithContext(ctx).Create(challenge).Error
}

// GetChallengeByUserID retrieves the single challenge owned by a user
func (r *Repository) GetChallengeByUserID(ctx context.Context, userID uuid.UUID) (*models.Challenge, error) {
	var challenge models.Challenge
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&challenge).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// ResolveChallengeStatus moves one sub-challenge from PENDING to outcome.
// Returns ErrConditionFailed if it was already resolved or does not exist.
func (r *Repository) ResolveChallengeStatus(
	ctx context.Context,
	userID uuid.UUID,
	challengeType models.ChallengeType,
	outcome models.ChallengeStatus,
) error {
	column := challengeType.StatusColumn()
	result := r.db.WithContext(ctx).Model(&models.Challenge{}).
		Where("user_id = ? AND "+column+" = ?", userID, models.ChallengeStatusPending).
		Update(column, outcome)
	return affected(result)
}

// ListRecentChallenges returns the newest challenges with their owners.
// A non-positive limit returns all of them.
func (r *Repository) ListRecentChallenges(ctx context.Context, limit int) ([]*models.Challenge, error) {
	var challenges []*models.Challenge
	q := r.db.WithContext(ctx).Preload("User").Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&challenges).Error
	return challenges, err
}
