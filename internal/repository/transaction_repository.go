package repository

import (
	"context"

	"github.com/google/uuid"

	"fitcoin-challenge/internal/models"
)

// CreateTransaction records a balance movement in the user's history
func (r *Repository) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// ListUserTransactions returns the user's history, most recent first
func (r *Repository) ListUserTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&txs).Error
	return txs, err
}
