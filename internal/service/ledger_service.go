package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"revenue-split-engine/internal/apperrors"
	"revenue-split-engine/internal/model"
	"revenue-split-engine/internal/repository"
)

// LedgerService handles deposits into custodial balances and balance
// queries. A native deposit into an auto-distribute engine triggers that
// engine's distribution on receipt.
type LedgerService struct {
	db         *sql.DB
	ledgerRepo *repository.LedgerRepository
	engineRepo *repository.EngineRepository
	eventRepo  *repository.EventRepository
	waterfall  *WaterfallService
}

// NewLedgerService creates a new LedgerService with the provided dependencies.
func NewLedgerService(
	db *sql.DB,
	ledgerRepo *repository.LedgerRepository,
	engineRepo *repository.EngineRepository,
	eventRepo *repository.EventRepository,
	waterfall *WaterfallService,
) *LedgerService {
	return &LedgerService{
		db:         db,
		ledgerRepo: ledgerRepo,
		engineRepo: engineRepo,
		eventRepo:  eventRepo,
		waterfall:  waterfall,
	}
}

// Deposit credits external value to an address. When the address is an
// engine with auto-distribute enabled and the asset is native, the engine
// distributes immediately, in its own transaction after the credit.
func (s *LedgerService) Deposit(ctx context.Context, address, asset string, amount uint64) error {
	if amount == 0 {
		return apperrors.ErrNegativeAmount
	}
	if amount > math.MaxInt64 {
		return fmt.Errorf("%w: deposit amount", apperrors.ErrAmountOverflow)
	}

	engine, err := s.engineRepo.GetEngine(ctx, s.db, address)
	if err != nil && !errors.Is(err, apperrors.ErrEngineNotFound) {
		return err
	}
	isEngine := err == nil

	if err := s.ledgerRepo.Credit(ctx, s.db, address, asset, amount); err != nil {
		return err
	}
	if isEngine {
		if err := s.eventRepo.Emit(ctx, s.db, address, model.EventDeposit, map[string]any{
			"asset":  asset,
			"amount": amount,
		}); err != nil {
			return err
		}
		if engine.AutoDistribute && asset == model.NativeAsset {
			return s.waterfall.DistributeSelf(ctx, address)
		}
	}
	return nil
}

// Balances returns every asset balance held by an address.
func (s *LedgerService) Balances(ctx context.Context, address string) ([]model.Balance, error) {
	return s.ledgerRepo.Balances(ctx, address)
}

// Balance returns the amount of one asset held by an address.
func (s *LedgerService) Balance(ctx context.Context, address, asset string) (uint64, error) {
	return s.ledgerRepo.Balance(ctx, s.db, address, asset)
}
