package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"revenue-split-engine/internal/model"
)

// RecipientRepository provides data access methods for the recipient table.
// The active set of an engine is always replaced as a whole; there is no
// incremental edit.
type RecipientRepository struct {
	db *sql.DB
}

// NewRecipientRepository creates a new RecipientRepository with the provided database connection.
func NewRecipientRepository(db *sql.DB) *RecipientRepository {
	return &RecipientRepository{db: db}
}

// GetRecipients retrieves the active recipient set of an engine in
// insertion order, which is the order the waterfall pays them in.
func (r *RecipientRepository) GetRecipients(ctx context.Context, q Querier, engineAddress string) ([]model.Recipient, error) {
	query := `
          SELECT id, engine_address, address, percentage, position
          FROM recipient
          WHERE engine_address = ?
          ORDER BY position
      `

	rows, err := q.QueryContext(ctx, query, engineAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipient table: %w", err)
	}
	defer rows.Close()

	recipients := []model.Recipient{}
	for rows.Next() {
		var (
			rec model.Recipient
			pct int64
		)
		if err := rows.Scan(&rec.ID, &rec.EngineAddress, &rec.Address, &pct, &rec.Position); err != nil {
			return nil, fmt.Errorf("failed to scan recipient table results: %w", err)
		}
		rec.Percentage = uint64(pct)
		recipients = append(recipients, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipient table: %w", err)
	}

	return recipients, nil
}

// ReplaceRecipients clears the previous set and commits the candidate set.
// The caller runs this inside a transaction; the transient cleared state is
// never visible outside it.
func (r *RecipientRepository) ReplaceRecipients(ctx context.Context, q Querier, engineAddress string, addresses []string, percentages []uint64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM recipient WHERE engine_address = ?`, engineAddress); err != nil {
		return fmt.Errorf("failed to clear recipient set: %w", err)
	}

	insert := `
          INSERT INTO recipient (id, engine_address, address, percentage, position)
          VALUES (?, ?, ?, ?, ?)
      `
	for i, address := range addresses {
		_, err := q.ExecContext(ctx, insert,
			uuid.New().String(),
			engineAddress,
			address,
			int64(percentages[i]),
			i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert recipient: %w", err)
		}
	}
	return nil
}

// SumPercentages returns the committed percentage sum for an engine. The
// registry checks it against model.Scale after substitution.
func (r *RecipientRepository) SumPercentages(ctx context.Context, q Querier, engineAddress string) (uint64, error) {
	query := `SELECT COALESCE(SUM(percentage), 0) FROM recipient WHERE engine_address = ?`

	var sum int64
	if err := q.QueryRowContext(ctx, query, engineAddress).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum recipient percentages: %w", err)
	}
	return uint64(sum), nil
}
