package service

import (
	"context"
	"fmt"
	"math/big"

	"revenue-split-engine/internal/apperrors"
	"revenue-split-engine/internal/model"
	"revenue-split-engine/internal/repository"
)

// Oracle is the read-only price source consumed by converters. The engine
// uses nothing beyond the latest quote per feed.
type Oracle interface {
	LatestPrice(ctx context.Context, feedID string) (model.PriceQuote, error)
}

// Converter converts between an asset's units and an engine's unit of
// account. Conversion is a pure function of the latest oracle quote.
type Converter interface {
	// ToUnitOfAccount converts an asset amount into the unit of account.
	ToUnitOfAccount(ctx context.Context, q repository.Querier, asset string, amount uint64) (uint64, error)
	// FromUnitOfAccount converts a unit-of-account amount into asset units
	// using the same feed.
	FromUnitOfAccount(ctx context.Context, q repository.Querier, asset string, amount uint64) (uint64, error)
}

// USDUnit is the unit-of-account code required by the USD-bridged mode.
const USDUnit = "USD"

// NewConverter returns the converter for the engine's conversion mode.
//
// Direct mode binds one feed per asset quoting it against the unit of
// account; the unit-of-account asset itself is primary and never needs a
// lookup. USD-bridged mode requires USD as the unit of account and quotes
// every distributed asset, the native currency included, through its own
// USD feed. Both modes share the conversion arithmetic, so they differ only
// in what their feed bindings mean and in the mode validation here.
func NewConverter(engine model.Engine, feeds *repository.PriceFeedRepository, oracle Oracle) (Converter, error) {
	switch engine.ConversionMode {
	case model.ConversionDirect:
	case model.ConversionUSD:
		if engine.UnitOfAccount != USDUnit {
			return nil, fmt.Errorf("usd conversion mode requires %s unit of account, got %q", USDUnit, engine.UnitOfAccount)
		}
	default:
		return nil, fmt.Errorf("unknown conversion mode %q", engine.ConversionMode)
	}
	return &feedConverter{engine: engine, feeds: feeds, oracle: oracle}, nil
}

// feedConverter resolves the feed bound for an asset, normalizes the quote
// to 18 fractional digits and converts with multiply-before-divide integer
// arithmetic so truncation happens once, at the end.
type feedConverter struct {
	engine model.Engine
	feeds  *repository.PriceFeedRepository
	oracle Oracle
}

// price returns the normalized price of one asset unit in the unit of
// account. Prices that normalize to zero or below are rejected.
func (c *feedConverter) price(ctx context.Context, q repository.Querier, asset string) (*big.Int, error) {
	feedID, err := c.feeds.GetFeedID(ctx, q, c.engine.Address, asset)
	if err != nil {
		return nil, err
	}
	quote, err := c.oracle.LatestPrice(ctx, feedID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote for feed %s: %w", feedID, err)
	}
	p := model.NormalizePrice(quote.Price, quote.Decimals)
	if p.Sign() <= 0 {
		return nil, fmt.Errorf("%w: feed %s", apperrors.ErrInvalidOraclePrice, feedID)
	}
	return p, nil
}

func (c *feedConverter) ToUnitOfAccount(ctx context.Context, q repository.Querier, asset string, amount uint64) (uint64, error) {
	if asset == c.engine.UnitOfAccount {
		return amount, nil
	}
	price, err := c.price(ctx, q, asset)
	if err != nil {
		return 0, err
	}
	return model.MulDivBig(amount, price, model.PriceUnit())
}

func (c *feedConverter) FromUnitOfAccount(ctx context.Context, q repository.Querier, asset string, amount uint64) (uint64, error) {
	if asset == c.engine.UnitOfAccount {
		return amount, nil
	}
	price, err := c.price(ctx, q, asset)
	if err != nil {
		return 0, err
	}
	return model.MulDivBig(amount, model.PriceUnit(), price)
}
