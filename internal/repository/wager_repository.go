package repository

import (
	"context"

	"github.com/google/uuid"

	"fitcoin-challenge/internal/models"
)

// CreateWager creates a new wager
func (r *Repository) CreateWager(ctx context.Context, wager *models.Wager) error {
	return r.db.WithContext(ctx).Create(wager).Error
}

// GetWagerByID retrieves a wager with its participants
func (r *Repository) GetWagerByID(ctx context.Context, wagerID uuid.UUID) (*models.Wager, error) {
	var wager models.Wager
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("TargetUser").
		Preload("Counter").
		Where("id = ?", wagerID).
		First(&wager).Error
	if err != nil {
		return nil, err
	}
	return &wager, nil
}

// TransitionWager applies updates only while the wager is still in status from.
// Returns ErrConditionFailed if another operation moved it first.
func (r *Repository) TransitionWager(
	ctx context.Context,
	wagerID uuid.UUID,
	from models.WagerStatus,
	updates map[string]interface{},
) error {
	result := r.db.WithContext(ctx).Model(&models.Wager{}).
		Where("id = ? AND status = ?", wagerID, from).
		Updates(updates)
	return affected(result)
}

// ListWagersOn returns wagers on one (target, sub-challenge) pair in the given status
func (r *Repository) ListWagersOn(
	ctx context.Context,
	targetUserID uuid.UUID,
	challengeType models.ChallengeType,
	status models.WagerStatus,
) ([]*models.Wager, error) {
	var wagers []*models.Wager
	err := r.db.WithContext(ctx).
		Where("target_user_id = ? AND challenge_type = ? AND status = ?", targetUserID, challengeType, status).
		Order("created_at ASC").
		Find(&wagers).Error
	return wagers, err
}

// ListWagersByStatus returns every wager in status, oldest first
func (r *Repository) ListWagersByStatus(ctx context.Context, status models.WagerStatus) ([]*models.Wager, error) {
	var wagers []*models.Wager
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&wagers).Error
	return wagers, err
}

// ListRecentWagers returns the newest wagers with participants for the feed
func (r *Repository) ListRecentWagers(ctx context.Context, limit int) ([]*models.Wager, error) {
	var wagers []*models.Wager
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("TargetUser").
		Preload("Counter").
		Order("created_at DESC").
		Limit(limit).
		Find(&wagers).Error
	return wagers, err
}

// ListUserWagers returns wagers the user created or countered
func (r *Repository) ListUserWagers(ctx context.Context, userID uuid.UUID) ([]*models.Wager, error) {
	var wagers []*models.Wager
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("TargetUser").
		Preload("Counter").
		Where("creator_id = ? OR counter_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&wagers).Error
	return wagers, err
}

// CountWagersByStatus returns the number of wagers per status
func (r *Repository) CountWagersByStatus(ctx context.Context) (map[models.WagerStatus]int64, error) {
	var rows []struct {
		Status models.WagerStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Wager{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.WagerStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// SumEscrowed returns the stakes held by OPEN and MATCHED wagers. A MATCHED
// wager holds both sides.
func (r *Repository) SumEscrowed(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Wager{}).
		Select("COALESCE(SUM(CASE WHEN status = ? THEN amount * 2 ELSE amount END), 0)", models.WagerStatusMatched).
		Where("status IN ?", []models.WagerStatus{models.WagerStatusOpen, models.WagerStatusMatched}).
		Scan(&total).Error
	return total, err
}
