package service

import (
	"context"

	"revenue-split-engine/internal/apperrors"
	"revenue-split-engine/internal/model"
	"revenue-split-engine/internal/repository"
)

// AccessService answers role capability checks for engine operations. It is
// injected into the other services; none of them inspects role state
// directly.
type AccessService struct {
	roleRepo *repository.RoleRepository
}

// NewAccessService creates a new AccessService with the provided repository dependency.
func NewAccessService(roleRepo *repository.RoleRepository) *AccessService {
	return &AccessService{roleRepo: roleRepo}
}

// RequireOwner fails with ErrOnlyOwner unless the caller owns the engine.
func (s *AccessService) RequireOwner(engine model.Engine, caller string) error {
	if caller == "" || caller != engine.Owner {
		return apperrors.ErrOnlyOwner
	}
	return nil
}

// RequireController fails with ErrOnlyController unless the caller is the
// engine's configured controller.
func (s *AccessService) RequireController(engine model.Engine, caller string) error {
	if caller == "" || engine.Controller == "" || caller != engine.Controller {
		return apperrors.ErrOnlyController
	}
	return nil
}

// RequireDistributor fails with ErrOnlyDistributor unless the caller is
// registered as a distributor on the engine. The engine itself is always
// permitted to trigger its own distribution (auto-distribute and sweep).
func (s *AccessService) RequireDistributor(ctx context.Context, q repository.Querier, engine model.Engine, caller string) error {
	if caller == "" {
		return apperrors.ErrOnlyDistributor
	}
	if caller == engine.Address {
		return nil
	}
	ok, err := s.roleRepo.IsDistributor(ctx, q, engine.Address, caller)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrOnlyDistributor
	}
	return nil
}

// IsDistributor reports distributor registration without failing. The
// propagator uses this as a capability probe: any error means "unsupported"
// to the caller, never an abort.
func (s *AccessService) IsDistributor(ctx context.Context, q repository.Querier, engineAddress, caller string) (bool, error) {
	return s.roleRepo.IsDistributor(ctx, q, engineAddress, caller)
}
