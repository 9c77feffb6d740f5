package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"fitcoin-challenge/internal/models"
	"fitcoin-challenge/internal/repository"
)

const transactionHistoryLimit = 100

type UserService struct {
	repo *repository.Repository
}

func NewUserService(repo *repository.Repository) *UserService {
	return &UserService{repo: repo}
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, notFound("load user", err)
	}
	return user, nil
}

// Leaderboard returns users ordered by balance, richest first
func (s *UserService) Leaderboard(ctx context.Context) ([]models.PublicUser, error) {
	users, err := s.repo.ListUsersByBalance(ctx, 0)
	if err != nil {
		return nil, err
	}
	return publicUsers(users), nil
}

// Directory returns every user alphabetically, for picking wager targets
func (s *UserService) Directory(ctx context.Context) ([]models.PublicUser, error) {
	users, err := s.repo.ListUsersByName(ctx)
	if err != nil {
		return nil, err
	}
	return publicUsers(users), nil
}

// Transactions returns the user's recent balance movements
func (s *UserService) Transactions(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	return s.repo.ListUserTransactions(ctx, userID, transactionHistoryLimit)
}

// UpdateAvatar sets or clears the user's avatar URL
func (s *UserService) UpdateAvatar(ctx context.Context, userID uuid.UUID, avatarURL string) (*models.User, error) {
	avatarURL = strings.TrimSpace(avatarURL)
	var value *string
	if avatarURL != "" {
		u, err := url.Parse(avatarURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("avatar url: %w", ErrInvalidInput)
		}
		value = &avatarURL
	}

	if err := s.repo.UpdateUser(ctx, userID, map[string]interface{}{"avatar_url": value}); err != nil {
		return nil, notFound("update avatar", err)
	}
	return s.GetUserByID(ctx, userID)
}

func publicUsers(users []*models.User) []models.PublicUser {
	out := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out
}
