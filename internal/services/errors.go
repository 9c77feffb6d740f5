package services

import (
	"errors"
	"fmt"

	"fitcoin-challenge/internal/repository"
)

var (
	ErrInsufficientBalance      = errors.New("insufficient balance")
	ErrWagerNotOpen             = errors.New("wager is not open")
	ErrNotCreator               = errors.New("only the creator can cancel this wager")
	ErrSelfCounter              = errors.New("you cannot counter your own wager")
	ErrChallengeAlreadyExists   = errors.New("challenge already exists")
	ErrNotPending               = errors.New("request is not pending")
	ErrUnauthorized             = errors.New("unauthorized")
	ErrNotFound                 = errors.New("not found")
	ErrDuplicateName            = errors.New("name is already taken")
	ErrDuplicateEmail           = errors.New("email is already registered")
	ErrInvalidAmount            = errors.New("invalid amount")
	ErrInvalidChallengeType     = errors.New("invalid challenge type")
	ErrInvalidPrediction        = errors.New("invalid prediction")
	ErrInvalidOutcome           = errors.New("invalid outcome")
	ErrChallengeAlreadyResolved = errors.New("challenge already resolved")
	ErrChallengeResolved        = errors.New("challenge is no longer open for wagers")
	ErrBettingClosed            = errors.New("betting is closed")
	ErrInvalidCredentials       = errors.New("invalid email or password")
	ErrInvalidResetToken        = errors.New("invalid or expired reset token")
	ErrInvalidGoal              = errors.New("both goals are required")
	ErrInvalidInput             = errors.New("invalid input")
)

// notFound maps a missing row to ErrNotFound and wraps anything else with op.
func notFound(op string, err error) error {
	if repository.IsNotFound(err) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
