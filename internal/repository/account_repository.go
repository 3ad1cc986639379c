package repository

import (
	"context"
	"database/sql"
	"fmt"

	"revenue-split-engine/internal/apperrors"
	"revenue-split-engine/internal/model"
)

// AccountRepository provides data access methods for the account table.
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new AccountRepository with the provided database connection.
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// GetAccount retrieves a single account by its address.
func (r *AccountRepository) GetAccount(ctx context.Context, address string) (model.Account, error) {
	query := `SELECT address, name, created_at FROM account WHERE address = ?`

	var a model.Account
	err := r.db.QueryRowContext(ctx, query, address).Scan(&a.Address, &a.Name, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Account{}, apperrors.ErrAccountNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to query account: %w", err)
	}
	return a, nil
}

// InsertAccount creates a new account row.
func (r *AccountRepository) InsertAccount(ctx context.Context, a *model.Account) error {
	query := `INSERT INTO account (address, name, created_at) VALUES (?, ?, ?)`

	if _, err := r.db.ExecContext(ctx, query, a.Address, a.Name, a.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}
