package service

import (
	"context"
	"database/sql"
	"fmt"

	"revenue-split-engine/internal/apperrors"
	"revenue-split-engine/internal/model"
	"revenue-split-engine/internal/repository"
)

// WaterfallService runs the distribution waterfall: platform fee extraction,
// investor recoupment, the permanent residual phase, recipient apportionment
// and recursive propagation into downstream engines.
//
// Every distribution call executes inside a single database transaction,
// recursive descendants included, so a failed call leaves balances and the
// amount-received accumulator exactly as they were.
type WaterfallService struct {
	db            *sql.DB
	engineRepo    *repository.EngineRepository
	recipientRepo *repository.RecipientRepository
	ledgerRepo    *repository.LedgerRepository
	feedRepo      *repository.PriceFeedRepository
	eventRepo     *repository.EventRepository
	access        *AccessService
	oracle        Oracle
}

// NewWaterfallService creates a new WaterfallService with the provided dependencies.
func NewWaterfallService(
	db *sql.DB,
	engineRepo *repository.EngineRepository,
	recipientRepo *repository.RecipientRepository,
	ledgerRepo *repository.LedgerRepository,
	feedRepo *repository.PriceFeedRepository,
	eventRepo *repository.EventRepository,
	access *AccessService,
	oracle Oracle,
) *WaterfallService {
	return &WaterfallService{
		db:            db,
		engineRepo:    engineRepo,
		recipientRepo: recipientRepo,
		ledgerRepo:    ledgerRepo,
		feedRepo:      feedRepo,
		eventRepo:     eventRepo,
		access:        access,
		oracle:        oracle,
	}
}

// DistributeNative distributes the engine's full current native balance.
// The caller must hold the distributor role on the engine.
func (s *WaterfallService) DistributeNative(ctx context.Context, caller, engineAddress string) error {
	return s.run(ctx, caller, engineAddress, model.NativeAsset)
}

// DistributeAsset distributes the engine's full current balance of one
// token. The caller must hold the distributor role on the engine.
func (s *WaterfallService) DistributeAsset(ctx context.Context, caller, engineAddress, asset string) error {
	return s.run(ctx, caller, engineAddress, asset)
}

// DistributeSelf runs a distribution triggered by the engine itself: the
// auto-distribute path taken on native deposits and by the sweep scheduler.
func (s *WaterfallService) DistributeSelf(ctx context.Context, engineAddress string) error {
	return s.run(ctx, engineAddress, engineAddress, model.NativeAsset)
}

func (s *WaterfallService) run(ctx context.Context, caller, engineAddress, asset string) error {
	engine, err := s.engineRepo.GetEngine(ctx, s.db, engineAddress)
	if err != nil {
		return err
	}
	if err := s.access.RequireDistributor(ctx, s.db, engine, caller); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin distribution transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := s.distribute(ctx, tx, engineAddress, asset, 0); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit distribution: %w", err)
	}
	return nil
}

// distribute runs the waterfall for one engine at one recursion depth.
// Ordering within the call is fixed: fee extraction, investor phase,
// recipient apportionment in registry insertion order, with propagation for
// each payee immediately after its payout.
func (s *WaterfallService) distribute(ctx context.Context, q repository.Querier, engineAddress, asset string, depth int) error {
	if depth > model.MaxPropagationDepth {
		return apperrors.ErrCallDepthExceeded
	}

	engine, err := s.engineRepo.GetEngine(ctx, q, engineAddress)
	if err != nil {
		return err
	}

	gross, err := s.ledgerRepo.Balance(ctx, q, engineAddress, asset)
	if err != nil {
		return err
	}
	// Token distribution with an empty balance is a no-op. The native
	// variant has no such guard; zero flows through as zero payouts.
	if asset != model.NativeAsset && gross == 0 {
		return nil
	}

	converter, err := NewConverter(engine, s.feedRepo, s.oracle)
	if err != nil {
		return err
	}

	// Fee off the top, before any conversion or waterfall math. A failed
	// fee transfer fails the whole call.
	fee := model.MulDiv64(gross, engine.FeeRate, model.Scale)
	if fee > 0 {
		if err := s.ledgerRepo.Move(ctx, q, engineAddress, engine.FeeRecipient, asset, fee); err != nil {
			return err
		}
	}
	incoming := gross - fee

	investorPayout, toDistribute, amountReceived, err := s.allocate(ctx, q, converter, engine, asset, incoming)
	if err != nil {
		return err
	}

	if err := s.ledgerRepo.Move(ctx, q, engineAddress, engine.Investor, asset, investorPayout); err != nil {
		return err
	}
	if amountReceived != engine.AmountReceived {
		if err := s.engineRepo.UpdateAmountReceived(ctx, q, engineAddress, amountReceived); err != nil {
			return err
		}
	}
	if err := s.propagate(ctx, q, engine, engine.Investor, asset, depth); err != nil {
		return err
	}

	if toDistribute > 0 {
		recipients, err := s.recipientRepo.GetRecipients(ctx, q, engineAddress)
		if err != nil {
			return err
		}
		// Floor division per recipient; the sum may fall short of
		// toDistribute and the difference stays on the engine's balance
		// for the next call. The dust is never redistributed.
		for _, recipient := range recipients {
			share := model.MulDiv64(toDistribute, recipient.Percentage, model.Scale)
			if err := s.ledgerRepo.Move(ctx, q, engineAddress, recipient.Address, asset, share); err != nil {
				return err
			}
			if err := s.propagate(ctx, q, engine, recipient.Address, asset, depth); err != nil {
				return err
			}
		}
	}

	return s.eventRepo.Emit(ctx, q, engineAddress, model.EventDistributed, map[string]any{
		"asset":          asset,
		"amount":         gross,
		"fee":            fee,
		"investorPayout": investorPayout,
	})
}

// allocate computes the investor payout and the residual amount to
// apportion across recipients, in asset units, plus the updated
// amount-received accumulator in the unit of account.
func (s *WaterfallService) allocate(ctx context.Context, q repository.Querier, converter Converter, engine model.Engine, asset string, incoming uint64) (investorPayout, toDistribute, amountReceived uint64, err error) {
	amountReceived = engine.AmountReceived

	if engine.Recouped() {
		// Residual phase: a standing royalty on every incoming value,
		// permanent once entered.
		investorPayout = model.MulDiv64(incoming, engine.ResidualInterestRate, model.Scale)
		toDistribute = incoming - investorPayout
		return investorPayout, toDistribute, amountReceived, nil
	}

	remaining := engine.AmountToReceive - engine.AmountReceived
	remainingInAsset, err := converter.FromUnitOfAccount(ctx, q, asset, remaining)
	if err != nil {
		return 0, 0, 0, err
	}

	if incoming <= remainingInAsset {
		// Recoupment continues: everything goes to the investor.
		investorPayout = incoming
		received, err := converter.ToUnitOfAccount(ctx, q, asset, incoming)
		if err != nil {
			return 0, 0, 0, err
		}
		amountReceived += received
		return investorPayout, 0, amountReceived, nil
	}

	// The claim is satisfied within this call: pay the remaining claim plus
	// the residual-interest bonus on the excess, then apportion the rest.
	excess := incoming - remainingInAsset
	bonus := model.MulDiv64(excess, engine.ResidualInterestRate, model.Scale)
	investorPayout = remainingInAsset + bonus
	toDistribute = excess - bonus
	amountReceived = engine.AmountToReceive
	return investorPayout, toDistribute, amountReceived, nil
}
