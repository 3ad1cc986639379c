package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"revenue-split-engine/internal/apperrors"
	"revenue-split-engine/internal/model"
	"revenue-split-engine/internal/repository"
)

// EngineService handles engine initialization and the owner-gated
// configuration setters. Initialization is single-shot per engine address;
// everything it writes except the recipient set, the controller, the fee
// policy and the amount-received accumulator is immutable afterwards.
type EngineService struct {
	db         *sql.DB
	engineRepo *repository.EngineRepository
	roleRepo   *repository.RoleRepository
	feedRepo   *repository.PriceFeedRepository
	eventRepo  *repository.EventRepository
	registry   *RegistryService
	access     *AccessService
}

// NewEngineService creates a new EngineService with the provided dependencies.
func NewEngineService(
	db *sql.DB,
	engineRepo *repository.EngineRepository,
	roleRepo *repository.RoleRepository,
	feedRepo *repository.PriceFeedRepository,
	eventRepo *repository.EventRepository,
	registry *RegistryService,
	access *AccessService,
) *EngineService {
	return &EngineService{
		db:         db,
		engineRepo: engineRepo,
		roleRepo:   roleRepo,
		feedRepo:   feedRepo,
		eventRepo:  eventRepo,
		registry:   registry,
		access:     access,
	}
}

// InitializeSettings carries the full once-only engine configuration.
type InitializeSettings struct {
	Name                 string
	Investor             string
	InvestedAmount       uint64
	InterestRate         uint64
	ResidualInterestRate uint64
	UnitOfAccount        string
	ConversionMode       string
	Controller           string
	ControllerImmutable  bool
	FeeRate              uint64
	FeeRecipient         string
	AutoDistribute       bool
	Recipients           []string
	Percentages          []uint64
	PriceFeeds           []model.PriceFeedBinding
}

// Initialize creates a fully configured engine owned by the caller and
// returns it. The generated address is the once-only guard: a duplicate
// address fails with ErrEngineExists and changes nothing.
func (s *EngineService) Initialize(ctx context.Context, owner string, settings InitializeSettings) (model.Engine, error) {
	if settings.Investor == "" {
		return model.Engine{}, apperrors.ErrInvestorAddressZero
	}
	if settings.InterestRate > model.Scale {
		return model.Engine{}, fmt.Errorf("%w: interest rate", apperrors.ErrInvalidPercentage)
	}
	if settings.ResidualInterestRate > model.Scale {
		return model.Engine{}, fmt.Errorf("%w: residual interest rate", apperrors.ErrInvalidPercentage)
	}
	if settings.FeeRate > model.Scale || (settings.FeeRate > 0 && settings.FeeRecipient == "") {
		return model.Engine{}, apperrors.ErrInvalidFeePercentage
	}

	// Amounts live in sqlite INTEGER columns, so both the principal and
	// the derived claim must stay within 63 bits.
	if settings.InvestedAmount > math.MaxInt64 {
		return model.Engine{}, fmt.Errorf("%w: invested amount", apperrors.ErrAmountOverflow)
	}
	claim := model.AmountToReceive(settings.InvestedAmount, settings.InterestRate)
	if claim > math.MaxInt64 {
		return model.Engine{}, fmt.Errorf("%w: investor claim", apperrors.ErrAmountOverflow)
	}

	engine := model.Engine{
		Address:              uuid.New().String(),
		Name:                 settings.Name,
		Owner:                owner,
		Controller:           settings.Controller,
		ControllerImmutable:  settings.ControllerImmutable,
		Investor:             settings.Investor,
		InvestedAmount:       settings.InvestedAmount,
		InterestRate:         settings.InterestRate,
		ResidualInterestRate: settings.ResidualInterestRate,
		AmountToReceive:      claim,
		UnitOfAccount:        settings.UnitOfAccount,
		ConversionMode:       settings.ConversionMode,
		FeeRate:              settings.FeeRate,
		FeeRecipient:         settings.FeeRecipient,
		AutoDistribute:       settings.AutoDistribute,
		CreatedAt:            time.Now().UTC(),
	}

	// Mode validation lives in the converter constructor so initialization
	// and distribution agree on what configurations are expressible.
	if _, err := NewConverter(engine, s.feedRepo, nil); err != nil {
		return model.Engine{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Engine{}, fmt.Errorf("failed to begin initialization transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := s.engineRepo.InsertEngine(ctx, tx, &engine); err != nil {
		return model.Engine{}, err
	}
	if err := s.registry.commitSet(ctx, tx, engine.Address, settings.Recipients, settings.Percentages); err != nil {
		return model.Engine{}, err
	}
	for _, binding := range settings.PriceFeeds {
		if err := s.feedRepo.SetFeedID(ctx, tx, engine.Address, binding.Asset, binding.FeedID); err != nil {
			return model.Engine{}, err
		}
	}
	if err := s.eventRepo.Emit(ctx, tx, engine.Address, model.EventEngineInitialized, map[string]any{
		"investor":        engine.Investor,
		"investedAmount":  engine.InvestedAmount,
		"amountToReceive": engine.AmountToReceive,
	}); err != nil {
		return model.Engine{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Engine{}, fmt.Errorf("failed to commit engine initialization: %w", err)
	}
	return engine, nil
}

// GetEngine retrieves a single engine by address.
func (s *EngineService) GetEngine(ctx context.Context, address string) (model.Engine, error) {
	return s.engineRepo.GetEngine(ctx, s.db, address)
}

// GetEngines retrieves all engines.
func (s *EngineService) GetEngines(ctx context.Context) ([]model.Engine, error) {
	return s.engineRepo.GetEngines(ctx)
}

// GetEvents retrieves the notifications emitted by an engine.
func (s *EngineService) GetEvents(ctx context.Context, engineAddress string) ([]model.Event, error) {
	if _, err := s.engineRepo.GetEngine(ctx, s.db, engineAddress); err != nil {
		return nil, err
	}
	return s.eventRepo.GetEvents(ctx, engineAddress)
}

// SetDistributor grants or revokes the distributor role on an engine.
// Owner-gated. Granting an address that already holds the role fails with
// ErrDistributorAlreadyConfigured.
func (s *EngineService) SetDistributor(ctx context.Context, caller, engineAddress, address string, enabled bool) error {
	engine, err := s.engineRepo.GetEngine(ctx, s.db, engineAddress)
	if err != nil {
		return err
	}
	if err := s.access.RequireOwner(engine, caller); err != nil {
		return err
	}
	if address == "" {
		return apperrors.ErrMissingRequiredField
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin role transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	registered, err := s.roleRepo.IsDistributor(ctx, tx, engineAddress, address)
	if err != nil {
		return err
	}
	if enabled {
		if registered {
			return apperrors.ErrDistributorAlreadyConfigured
		}
		if err := s.roleRepo.GrantDistributor(ctx, tx, engineAddress, address); err != nil {
			return err
		}
	} else if registered {
		if err := s.roleRepo.RevokeDistributor(ctx, tx, engineAddress, address); err != nil {
			return err
		}
	}

	if err := s.eventRepo.Emit(ctx, tx, engineAddress, model.EventDistributorChanged, map[string]any{
		"address": address,
		"enabled": enabled,
	}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit role change: %w", err)
	}
	return nil
}

// GetDistributors returns the distributor set of an engine.
func (s *EngineService) GetDistributors(ctx context.Context, engineAddress string) ([]string, error) {
	if _, err := s.engineRepo.GetEngine(ctx, s.db, engineAddress); err != nil {
		return nil, err
	}
	return s.roleRepo.GetDistributors(ctx, engineAddress)
}

// SetController changes the engine controller. Owner-gated. Fails when the
// controller is immutable or was never configured, and when the new value
// equals the current one.
func (s *EngineService) SetController(ctx context.Context, caller, engineAddress, controller string) error {
	engine, err := s.engineRepo.GetEngine(ctx, s.db, engineAddress)
	if err != nil {
		return err
	}
	if err := s.access.RequireOwner(engine, caller); err != nil {
		return err
	}
	switch {
	case engine.Controller == "":
		return apperrors.ErrControllerNotConfigured
	case engine.ControllerImmutable:
		return apperrors.ErrImmutableController
	case controller == engine.Controller:
		return apperrors.ErrControllerAlreadyConfigured
	case controller == "":
		return apperrors.ErrMissingRequiredField
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin controller transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := s.engineRepo.UpdateController(ctx, tx, engineAddress, controller); err != nil {
		return err
	}
	if err := s.eventRepo.Emit(ctx, tx, engineAddress, model.EventControllerChanged, map[string]any{
		"previous": engine.Controller,
		"current":  controller,
	}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit controller change: %w", err)
	}
	return nil
}

// SetPriceFeed binds or rebinds the oracle feed for an asset. Owner-gated.
func (s *EngineService) SetPriceFeed(ctx context.Context, caller, engineAddress, asset, feedID string) error {
	engine, err := s.engineRepo.GetEngine(ctx, s.db, engineAddress)
	if err != nil {
		return err
	}
	if err := s.access.RequireOwner(engine, caller); err != nil {
		return err
	}
	if asset == "" || feedID == "" {
		return apperrors.ErrMissingRequiredField
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin price feed transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := s.feedRepo.SetFeedID(ctx, tx, engineAddress, asset, feedID); err != nil {
		return err
	}
	if err := s.eventRepo.Emit(ctx, tx, engineAddress, model.EventPriceFeedSet, map[string]any{
		"asset":  asset,
		"feedId": feedID,
	}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit price feed change: %w", err)
	}
	return nil
}

// SetFeePolicy updates the platform fee rate and recipient. Owner-gated.
func (s *EngineService) SetFeePolicy(ctx context.Context, caller, engineAddress string, feeRate uint64, feeRecipient string) error {
	engine, err := s.engineRepo.GetEngine(ctx, s.db, engineAddress)
	if err != nil {
		return err
	}
	if err := s.access.RequireOwner(engine, caller); err != nil {
		return err
	}
	if feeRate > model.Scale || (feeRate > 0 && feeRecipient == "") {
		return apperrors.ErrInvalidFeePercentage
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin fee policy transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := s.engineRepo.UpdateFeePolicy(ctx, tx, engineAddress, feeRate, feeRecipient); err != nil {
		return err
	}
	if err := s.eventRepo.Emit(ctx, tx, engineAddress, model.EventFeeUpdated, map[string]any{
		"feeRate":      feeRate,
		"feeRecipient": feeRecipient,
	}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit fee policy change: %w", err)
	}
	return nil
}
