package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// RoleRepository provides data access methods for the distributor table.
// Owner and controller live on the engine row; the distributor set is the
// only many-valued role.
type RoleRepository struct {
	db *sql.DB
}

// NewRoleRepository creates a new RoleRepository with the provided database connection.
func NewRoleRepository(db *sql.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// IsDistributor reports whether an address holds the distributor role on an engine.
func (r *RoleRepository) IsDistributor(ctx context.Context, q Querier, engineAddress, address string) (bool, error) {
	query := `SELECT 1 FROM distributor WHERE engine_address = ? AND address = ?`

	var one int
	err := q.QueryRowContext(ctx, query, engineAddress, address).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query distributor table: %w", err)
	}
	return true, nil
}

// GetDistributors retrieves all distributor addresses for an engine.
func (r *RoleRepository) GetDistributors(ctx context.Context, engineAddress string) ([]string, error) {
	query := `SELECT address FROM distributor WHERE engine_address = ? ORDER BY address`

	rows, err := r.db.QueryContext(ctx, query, engineAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to query distributor table: %w", err)
	}
	defer rows.Close()

	addresses := []string{}
	for rows.Next() {
		var address string
		if err := rows.Scan(&address); err != nil {
			return nil, fmt.Errorf("failed to scan distributor table results: %w", err)
		}
		addresses = append(addresses, address)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating distributor table: %w", err)
	}

	return addresses, nil
}

// GrantDistributor adds an address to the distributor set of an engine.
func (r *RoleRepository) GrantDistributor(ctx context.Context, q Querier, engineAddress, address string) error {
	query := `INSERT INTO distributor (engine_address, address) VALUES (?, ?)`

	if _, err := q.ExecContext(ctx, query, engineAddress, address); err != nil {
		return fmt.Errorf("failed to grant distributor: %w", err)
	}
	return nil
}

// RevokeDistributor removes an address from the distributor set of an engine.
func (r *RoleRepository) RevokeDistributor(ctx context.Context, q Querier, engineAddress, address string) error {
	query := `DELETE FROM distributor WHERE engine_address = ? AND address = ?`

	if _, err := q.ExecContext(ctx, query, engineAddress, address); err != nil {
		return fmt.Errorf("failed to revoke distributor: %w", err)
	}
	return nil
}
