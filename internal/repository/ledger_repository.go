package repository

import (
	"context"
	"database/sql"
	"fmt"

	"revenue-split-engine/internal/apperrors"
	"revenue-split-engine/internal/model"
)

// LedgerRepository is the asset transfer primitive: it keeps the custodial
// balances of every address and moves value between them. The engine never
// does token bookkeeping anywhere else.
type LedgerRepository struct {
	db *sql.DB
}

// NewLedgerRepository creates a new LedgerRepository with the provided database connection.
func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Balance returns the amount of one asset held by an address. A missing row
// is a zero balance, not an error.
func (r *LedgerRepository) Balance(ctx context.Context, q Querier, address, asset string) (uint64, error) {
	query := `SELECT amount FROM balance WHERE address = ? AND asset = ?`

	var amount int64
	err := q.QueryRowContext(ctx, query, address, asset).Scan(&amount)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query balance: %w", err)
	}
	return uint64(amount), nil
}

// Balances returns every asset balance held by an address.
func (r *LedgerRepository) Balances(ctx context.Context, address string) ([]model.Balance, error) {
	query := `SELECT address, asset, amount FROM balance WHERE address = ? ORDER BY asset`

	rows, err := r.db.QueryContext(ctx, query, address)
	if err != nil {
		return nil, fmt.Errorf("failed to query balance table: %w", err)
	}
	defer rows.Close()

	balances := []model.Balance{}
	for rows.Next() {
		var (
			b      model.Balance
			amount int64
		)
		if err := rows.Scan(&b.Address, &b.Asset, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan balance table results: %w", err)
		}
		b.Amount = uint64(amount)
		balances = append(balances, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balance table: %w", err)
	}

	return balances, nil
}

// Credit adds value to an address. This is how external value enters the
// system (deposits); transfers between addresses go through Move.
func (r *LedgerRepository) Credit(ctx context.Context, q Querier, address, asset string, amount uint64) error {
	query := `
          INSERT INTO balance (address, asset, amount) VALUES (?, ?, ?)
          ON CONFLICT (address, asset) DO UPDATE SET amount = amount + excluded.amount
      `

	if _, err := q.ExecContext(ctx, query, address, asset, int64(amount)); err != nil {
		return fmt.Errorf("failed to credit balance: %w", err)
	}
	return nil
}

// Move transfers value between two addresses. A source balance below the
// requested amount fails with ErrTransferFailed and aborts the caller's
// transaction; the engine performs no retries.
func (r *LedgerRepository) Move(ctx context.Context, q Querier, from, to, asset string, amount uint64) error {
	if amount == 0 {
		return nil
	}

	debit := `
          UPDATE balance SET amount = amount - ?
          WHERE address = ? AND asset = ? AND amount >= ?
      `
	res, err := q.ExecContext(ctx, debit, int64(amount), from, asset, int64(amount))
	if err != nil {
		return fmt.Errorf("%w: debit %s: %v", apperrors.ErrTransferFailed, from, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: debit %s: %v", apperrors.ErrTransferFailed, from, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %w", apperrors.ErrTransferFailed, apperrors.ErrInsufficientBalance)
	}

	if err := r.Credit(ctx, q, to, asset, amount); err != nil {
		return fmt.Errorf("%w: credit %s: %v", apperrors.ErrTransferFailed, to, err)
	}
	return nil
}
