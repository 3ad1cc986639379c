package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"revenue-split-engine/internal/apperrors"
	"revenue-split-engine/internal/model"
)

// EngineRepository provides data access methods for the engine table. It
// handles engine configuration rows and the amount_received accumulator.
type EngineRepository struct {
	db *sql.DB
}

// NewEngineRepository creates a new EngineRepository with the provided database connection.
func NewEngineRepository(db *sql.DB) *EngineRepository {
	return &EngineRepository{db: db}
}

const engineColumns = `
          address, name, owner_address, controller_address, controller_immutable,
          investor_address, invested_amount, interest_rate, residual_interest_rate,
          amount_to_receive, amount_received, unit_of_account, conversion_mode,
          fee_rate, fee_recipient, auto_distribute, created_at
`

func scanEngine(row interface{ Scan(...any) error }) (model.Engine, error) {
	var (
		e            model.Engine
		controller   sql.NullString
		feeRecipient sql.NullString
		invested     int64
		interest     int64
		residual     int64
		toReceive    int64
		received     int64
		feeRate      int64
	)

	err := row.Scan(
		&e.Address,
		&e.Name,
		&e.Owner,
		&controller,
		&e.ControllerImmutable,
		&e.Investor,
		&invested,
		&interest,
		&residual,
		&toReceive,
		&received,
		&e.UnitOfAccount,
		&e.ConversionMode,
		&feeRate,
		&feeRecipient,
		&e.AutoDistribute,
		&e.CreatedAt,
	)
	if err != nil {
		return model.Engine{}, err
	}

	e.Controller = controller.String
	e.FeeRecipient = feeRecipient.String
	e.InvestedAmount = uint64(invested)
	e.InterestRate = uint64(interest)
	e.ResidualInterestRate = uint64(residual)
	e.AmountToReceive = uint64(toReceive)
	e.AmountReceived = uint64(received)
	e.FeeRate = uint64(feeRate)
	return e, nil
}

// GetEngine retrieves a single engine by its address.
func (r *EngineRepository) GetEngine(ctx context.Context, q Querier, address string) (model.Engine, error) {
	query := `SELECT ` + engineColumns + ` FROM engine WHERE address = ?`

	e, err := scanEngine(q.QueryRowContext(ctx, query, address))
	if err == sql.ErrNoRows {
		return model.Engine{}, apperrors.ErrEngineNotFound
	}
	if err != nil {
		return model.Engine{}, fmt.Errorf("failed to query engine: %w", err)
	}
	return e, nil
}

// GetEngines retrieves all engines ordered by creation time.
func (r *EngineRepository) GetEngines(ctx context.Context) ([]model.Engine, error) {
	query := `SELECT ` + engineColumns + ` FROM engine ORDER BY created_at, address`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query engine table: %w", err)
	}
	defer rows.Close()

	engines := []model.Engine{}
	for rows.Next() {
		e, err := scanEngine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan engine table results: %w", err)
		}
		engines = append(engines, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating engine table: %w", err)
	}

	return engines, nil
}

// GetAutoDistributeEngines retrieves engines with auto-distribute enabled
// that currently hold a positive native balance. Used by the sweep.
func (r *EngineRepository) GetAutoDistributeEngines(ctx context.Context) ([]model.Engine, error) {
	query := `
          SELECT ` + engineColumns + `
          FROM engine
          WHERE auto_distribute = TRUE
            AND address IN (SELECT address FROM balance WHERE asset = ? AND amount > 0)
          ORDER BY created_at, address
      `

	rows, err := r.db.QueryContext(ctx, query, model.NativeAsset)
	if err != nil {
		return nil, fmt.Errorf("failed to query auto-distribute engines: %w", err)
	}
	defer rows.Close()

	engines := []model.Engine{}
	for rows.Next() {
		e, err := scanEngine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan engine table results: %w", err)
		}
		engines = append(engines, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating engine table: %w", err)
	}

	return engines, nil
}

// InsertEngine creates a new engine row. The address is the once-only
// initialization guard: an existing row surfaces ErrEngineExists.
func (r *EngineRepository) InsertEngine(ctx context.Context, q Querier, e *model.Engine) error {
	query := `
          INSERT INTO engine (` + engineColumns + `)
          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
      `

	_, err := q.ExecContext(ctx, query,
		e.Address,
		e.Name,
		e.Owner,
		nullable(e.Controller),
		e.ControllerImmutable,
		e.Investor,
		int64(e.InvestedAmount),
		int64(e.InterestRate),
		int64(e.ResidualInterestRate),
		int64(e.AmountToReceive),
		int64(e.AmountReceived),
		e.UnitOfAccount,
		e.ConversionMode,
		int64(e.FeeRate),
		nullable(e.FeeRecipient),
		e.AutoDistribute,
		e.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperrors.ErrEngineExists
		}
		return fmt.Errorf("failed to insert engine: %w", err)
	}
	return nil
}

// UpdateAmountReceived persists the investor claim accumulator. The value
// only ever grows; the waterfall is the sole caller.
func (r *EngineRepository) UpdateAmountReceived(ctx context.Context, q Querier, address string, amountReceived uint64) error {
	query := `UPDATE engine SET amount_received = ? WHERE address = ?`

	res, err := q.ExecContext(ctx, query, int64(amountReceived), address)
	if err != nil {
		return fmt.Errorf("failed to update amount received: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.ErrEngineNotFound
	}
	return nil
}

// UpdateController persists a controller change.
func (r *EngineRepository) UpdateController(ctx context.Context, q Querier, address, controller string) error {
	query := `UPDATE engine SET controller_address = ? WHERE address = ?`

	if _, err := q.ExecContext(ctx, query, controller, address); err != nil {
		return fmt.Errorf("failed to update controller: %w", err)
	}
	return nil
}

// UpdateFeePolicy persists fee rate and fee recipient changes.
func (r *EngineRepository) UpdateFeePolicy(ctx context.Context, q Querier, address string, feeRate uint64, feeRecipient string) error {
	query := `UPDATE engine SET fee_rate = ?, fee_recipient = ? WHERE address = ?`

	if _, err := q.ExecContext(ctx, query, int64(feeRate), nullable(feeRecipient), address); err != nil {
		return fmt.Errorf("failed to update fee policy: %w", err)
	}
	return nil
}

// nullable maps an empty string to NULL for optional address columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
