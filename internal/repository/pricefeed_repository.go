package repository

import (
	"context"
	"database/sql"
	"fmt"

	"revenue-split-engine/internal/apperrors"
	"revenue-split-engine/internal/model"
)

// PriceFeedRepository provides data access methods for the price_feed
// table, mapping (engine, asset) to the oracle feed that quotes it.
type PriceFeedRepository struct {
	db *sql.DB
}

// NewPriceFeedRepository creates a new PriceFeedRepository with the provided database connection.
func NewPriceFeedRepository(db *sql.DB) *PriceFeedRepository {
	return &PriceFeedRepository{db: db}
}

// GetFeedID returns the feed bound for an asset. A missing binding is
// ErrMissingPriceOracle: terminal for that asset, other assets unaffected.
func (r *PriceFeedRepository) GetFeedID(ctx context.Context, q Querier, engineAddress, asset string) (string, error) {
	query := `SELECT feed_id FROM price_feed WHERE engine_address = ? AND asset = ?`

	var feedID string
	err := q.QueryRowContext(ctx, query, engineAddress, asset).Scan(&feedID)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: %s", apperrors.ErrMissingPriceOracle, asset)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query price feed: %w", err)
	}
	return feedID, nil
}

// GetBindings retrieves all feed bindings of an engine.
func (r *PriceFeedRepository) GetBindings(ctx context.Context, engineAddress string) ([]model.PriceFeedBinding, error) {
	query := `SELECT engine_address, asset, feed_id FROM price_feed WHERE engine_address = ? ORDER BY asset`

	rows, err := r.db.QueryContext(ctx, query, engineAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to query price_feed table: %w", err)
	}
	defer rows.Close()

	bindings := []model.PriceFeedBinding{}
	for rows.Next() {
		var b model.PriceFeedBinding
		if err := rows.Scan(&b.EngineAddress, &b.Asset, &b.FeedID); err != nil {
			return nil, fmt.Errorf("failed to scan price_feed table results: %w", err)
		}
		bindings = append(bindings, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price_feed table: %w", err)
	}

	return bindings, nil
}

// SetFeedID binds or rebinds the feed for an asset.
func (r *PriceFeedRepository) SetFeedID(ctx context.Context, q Querier, engineAddress, asset, feedID string) error {
	query := `
          INSERT INTO price_feed (engine_address, asset, feed_id) VALUES (?, ?, ?)
          ON CONFLICT (engine_address, asset) DO UPDATE SET feed_id = excluded.feed_id
      `

	if _, err := q.ExecContext(ctx, query, engineAddress, asset, feedID); err != nil {
		return fmt.Errorf("failed to set price feed: %w", err)
	}
	return nil
}
