package testutil

import (
	"context"
	"time"

	"revenue-split-engine/internal/apperrors"
	"revenue-split-engine/internal/model"
)

// StubOracle is a stub implementation of service.Oracle for testing.
// It serves predefined quotes per feed id instead of making HTTP calls.
type StubOracle struct {
	// Quotes maps feed id to the quote to serve.
	Quotes map[string]model.PriceQuote
	// Err, when set, is returned for every lookup.
	Err error
	// QueryCount tracks how many times LatestPrice was called.
	QueryCount int
}

// NewStubOracle creates a stub oracle with no quotes configured. Lookups
// against it fail until WithQuote is called.
func NewStubOracle() *StubOracle {
	return &StubOracle{
		Quotes: make(map[string]model.PriceQuote),
	}
}

// WithQuote configures the stub to serve a price with the given number of
// fractional digits for one feed.
func (o *StubOracle) WithQuote(feedID string, price int64, decimals uint8) *StubOracle {
	o.Quotes[feedID] = model.PriceQuote{
		FeedID:    feedID,
		Price:     price,
		Decimals:  decimals,
		Timestamp: time.Now().UTC(),
		RoundID:   uint64(len(o.Quotes) + 1),
	}
	return o
}

// WithError configures the stub to fail every lookup with err.
func (o *StubOracle) WithError(err error) *StubOracle {
	o.Err = err
	return o
}

// LatestPrice returns the configured quote for the feed.
func (o *StubOracle) LatestPrice(_ context.Context, feedID string) (model.PriceQuote, error) {
	o.QueryCount++
	if o.Err != nil {
		return model.PriceQuote{}, o.Err
	}
	quote, ok := o.Quotes[feedID]
	if !ok {
		return model.PriceQuote{}, apperrors.ErrMissingPriceOracle
	}
	return quote, nil
}
