package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"fitcoin-challenge/internal/models"
	"fitcoin-challenge/internal/repository"
)

// debit takes amount from the user inside tx and records the movement.
// A balance that cannot cover amount yields ErrInsufficientBalance.
func debit(
	ctx context.Context,
	tx *repository.Repository,
	userID uuid.UUID,
	amount int64,
	txType models.TransactionType,
	ref uuid.UUID,
	description string,
) error {
	balance, err := tx.DebitBalance(ctx, userID, amount)
	if err != nil {
		if errors.Is(err, repository.ErrConditionFailed) {
			return ErrInsufficientBalance
		}
		return fmt.Errorf("debit balance: %w", err)
	}
	return record(ctx, tx, userID, -amount, balance, txType, ref, description)
}

// credit adds amount to the user inside tx and records the movement.
func credit(
	ctx context.Context,
	tx *repository.Repository,
	userID uuid.UUID,
	amount int64,
	txType models.TransactionType,
	ref uuid.UUID,
	description string,
) error {
	balance, err := tx.CreditBalance(ctx, userID, amount)
	if err != nil {
		return notFound("credit balance", err)
	}
	return record(ctx, tx, userID, amount, balance, txType, ref, description)
}

func record(
	ctx context.Context,
	tx *repository.Repository,
	userID uuid.UUID,
	amount, balanceAfter int64,
	txType models.TransactionType,
	ref uuid.UUID,
	description string,
) error {
	entry := &models.Transaction{
		UserID:       userID,
		Type:         txType,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		Description:  description,
	}
	if ref != uuid.Nil {
		entry.ReferenceID = &ref
	}
	if err := tx.CreateTransaction(ctx, entry); err != nil {
		return fmt.Errorf("record transaction: %w", err)
	}
	return nil
}
