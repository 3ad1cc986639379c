package service

import (
	"context"
	"database/sql"
	"fmt"

	"revenue-split-engine/internal/apperrors"
	"revenue-split-engine/internal/model"
	"revenue-split-engine/internal/repository"
)

// RegistryService manages the weighted recipient set of an engine. The set
// is only ever replaced as a whole, atomically.
type RegistryService struct {
	db            *sql.DB
	engineRepo    *repository.EngineRepository
	recipientRepo *repository.RecipientRepository
	eventRepo     *repository.EventRepository
	access        *AccessService
}

// NewRegistryService creates a new RegistryService with the provided dependencies.
func NewRegistryService(
	db *sql.DB,
	engineRepo *repository.EngineRepository,
	recipientRepo *repository.RecipientRepository,
	eventRepo *repository.EventRepository,
	access *AccessService,
) *RegistryService {
	return &RegistryService{
		db:            db,
		engineRepo:    engineRepo,
		recipientRepo: recipientRepo,
		eventRepo:     eventRepo,
		access:        access,
	}
}

// GetRecipients returns the active recipient set in apportionment order.
func (s *RegistryService) GetRecipients(ctx context.Context, engineAddress string) ([]model.Recipient, error) {
	if _, err := s.engineRepo.GetEngine(ctx, s.db, engineAddress); err != nil {
		return nil, err
	}
	return s.recipientRepo.GetRecipients(ctx, s.db, engineAddress)
}

// SetRecipients atomically replaces the active recipient set. Only the
// engine controller may call it. A rejected candidate set leaves the prior
// set fully intact: the replace and the percentage-sum check run inside one
// transaction that rolls back on any failure.
func (s *RegistryService) SetRecipients(ctx context.Context, caller, engineAddress string, addresses []string, percentages []uint64) error {
	engine, err := s.engineRepo.GetEngine(ctx, s.db, engineAddress)
	if err != nil {
		return err
	}
	if err := s.access.RequireController(engine, caller); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin recipient-set transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := s.commitSet(ctx, tx, engineAddress, addresses, percentages); err != nil {
		return err
	}

	if err := s.eventRepo.Emit(ctx, tx, engineAddress, model.EventRecipientsChanged, map[string]any{
		"addresses":   addresses,
		"percentages": percentages,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recipient set: %w", err)
	}
	return nil
}

// commitSet validates and writes a candidate recipient set within the given
// transaction. Shared by SetRecipients and engine initialization.
//
// Malformed entries are rejected before anything is written. The
// percentage-sum invariant is checked only after the candidate set is fully
// substituted, as the registry defines it over the committed set; the
// transient interior state never escapes the transaction.
func (s *RegistryService) commitSet(ctx context.Context, q repository.Querier, engineAddress string, addresses []string, percentages []uint64) error {
	if len(addresses) != len(percentages) {
		return apperrors.ErrInconsistentDataLength
	}

	seen := make(map[string]struct{}, len(addresses))
	for i, address := range addresses {
		if address == "" {
			return fmt.Errorf("%w: entry %d", apperrors.ErrNullAddressRecipient, i)
		}
		if _, ok := seen[address]; ok {
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicateRecipient, address)
		}
		seen[address] = struct{}{}

		// A zero percentage is equivalent to absence and not allowed in
		// the active set.
		if percentages[i] == 0 || percentages[i] > model.Scale {
			return fmt.Errorf("%w: entry %d", apperrors.ErrInvalidPercentage, i)
		}
	}

	if err := s.recipientRepo.ReplaceRecipients(ctx, q, engineAddress, addresses, percentages); err != nil {
		return err
	}

	sum, err := s.recipientRepo.SumPercentages(ctx, q, engineAddress)
	if err != nil {
		return err
	}
	if len(addresses) > 0 && sum != model.Scale {
		return fmt.Errorf("%w: percentages sum to %d, want %d", apperrors.ErrInvalidPercentage, sum, model.Scale)
	}
	return nil
}
