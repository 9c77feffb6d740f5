package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fitcoin-challenge/internal/models"
)

// CreateUser inserts a new user
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetUserByID retrieves a user by ID
func (r *Repository) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetUserByName(ctx context.Context, name string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByResetToken finds the user holding an unexpired reset token
func (r *Repository) GetUserByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("reset_token = ? AND reset_token_expires > ?", token, now).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DebitBalance subtracts amount from the user's balance only if the balance
// covers it, and returns the new balance. Returns ErrConditionFailed otherwise.
func (r *Repository) DebitBalance(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND balance >= ?", userID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if err := affected(result); err != nil {
		return 0, err
	}
	return r.balanceOf(ctx, userID)
}

// CreditBalance adds amount to the user's balance and returns the new balance
func (r *Repository) CreditBalance(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if err := affected(result); err != nil {
		if err == ErrConditionFailed {
			return 0, gorm.ErrRecordNotFound
		}
		return 0, err
	}
	return r.balanceOf(ctx, userID)
}

func (r *Repository) balanceOf(ctx context.Context, userID uuid.UUID) (int64, error) {
	var balance int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Pluck("balance", &balance).Error
	return balance, err
}

// UpdateUser applies the given column updates to one user
func (r *Repository) UpdateUser(ctx context.Context, userID uuid.UUID, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if err := affected(result); err != nil {
		if err == ErrConditionFailed {
			return gorm.ErrRecordNotFound
		}
		return err
	}
	return nil
}

// ListUsersByBalance returns the leaderboard, richest first
func (r *Repository) ListUsersByBalance(ctx context.Context, limit int) ([]*models.User, error) {
	var users []*models.User
	q := r.db.WithContext(ctx).Order("balance DESC").Order("name ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&users).Error
	return users, err
}

// ListUsersByName returns every user alphabetically
func (r *Repository) ListUsersByName(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).Order("name ASC").Find(&users).Error
	return users, err
}

// SumBalances returns the FitCoins currently held across all users
func (r *Repository) SumBalances(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("COALESCE(SUM(balance), 0)").
		Scan(&total).Error
	return total, err
}
