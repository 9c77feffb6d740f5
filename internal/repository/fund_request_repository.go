package repository

import (
	"context"

	"github.com/google/uuid"

	"fitcoin-challenge/internal/models"
)

func (r *Repository) CreateFundRequest(ctx context.Context, req *models.FundRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *Repository) GetFundRequestByID(ctx context.Context, id uuid.UUID) (*models.FundRequest, error) {
	var req models.FundRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// TransitionFundRequest applies updates only while the request is in status from
func (r *Repository) TransitionFundRequest(
	ctx context.Context,
	id uuid.UUID,
	from models.FundRequestStatus,
	updates map[string]interface{},
) error {
	result := r.db.WithContext(ctx).Model(&models.FundRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return affected(result)
}

func (r *Repository) ListFundRequestsByUser(ctx context.Context, userID uuid.UUID) ([]*models.FundRequest, error) {
	var reqs []*models.FundRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

// ListFundRequestsByStatus returns requests in status with their requesters, oldest first
func (r *Repository) ListFundRequestsByStatus(ctx context.Context, status models.FundRequestStatus) ([]*models.FundRequest, error) {
	var reqs []*models.FundRequest
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&reqs).Error
	return reqs, err
}
