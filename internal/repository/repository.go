package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrConditionFailed is returned when a conditional update matched no rows:
// the balance was too low or the row was no longer in the expected state.
var ErrConditionFailed = errors.New("repository: condition not met")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Transaction runs fn inside a database transaction. The repository passed to
// fn is bound to the transaction; any error rolls back everything fn did.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// IsNotFound reports whether err means the requested row does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicate reports whether err is a unique constraint violation
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func affected(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConditionFailed
	}
	return nil
}
