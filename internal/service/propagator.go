package service

import (
	"context"
	"errors"
	"fmt"

	"revenue-split-engine/internal/apperrors"
	"revenue-split-engine/internal/model"
	"revenue-split-engine/internal/repository"
)

// propagate decides whether a payee's own distribution should be triggered
// after its payout, and runs it as a nested call when it should.
//
// A payee without an engine row is a plain account and is never propagated
// into. For native value, a payee with auto-distribute enabled is skipped
// because it will trigger itself on receipt; distributing here too would
// double-distribute. Asset propagation has no receive hook, so that probe
// is skipped. In all cases the paying engine must be registered as a
// distributor on the payee.
//
// Every probe is a capability check: lookup failures and missing
// registrations mean "skip", never an abort. A failing downstream call is
// rolled back to its savepoint and likewise skipped; the payouts already
// made by the outer call stand. The single exception is an exhausted
// propagation depth budget, which aborts the outermost call; that is how a
// cyclic engine graph surfaces.
func (s *WaterfallService) propagate(ctx context.Context, q repository.Querier, paying model.Engine, payee, asset string, depth int) error {
	payeeEngine, err := s.engineRepo.GetEngine(ctx, q, payee)
	if err != nil {
		return nil
	}
	if asset == model.NativeAsset && payeeEngine.AutoDistribute {
		return nil
	}
	registered, err := s.access.IsDistributor(ctx, q, payee, paying.Address)
	if err != nil || !registered {
		return nil
	}

	// The nested call gets its own savepoint so a downstream failure
	// undoes only the downstream effects, mirroring call-local revert
	// semantics of the nested invocation.
	savepoint := fmt.Sprintf("propagate_depth_%d", depth+1)
	if _, err := q.ExecContext(ctx, "SAVEPOINT "+savepoint); err != nil {
		return fmt.Errorf("failed to create savepoint: %w", err)
	}

	err = s.distribute(ctx, q, payee, asset, depth+1)
	switch {
	case err == nil:
		if _, err := q.ExecContext(ctx, "RELEASE SAVEPOINT "+savepoint); err != nil {
			return fmt.Errorf("failed to release savepoint: %w", err)
		}
		return nil
	case errors.Is(err, apperrors.ErrCallDepthExceeded):
		return err
	default:
		if _, rbErr := q.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+savepoint); rbErr != nil {
			return fmt.Errorf("failed to roll back savepoint: %w", rbErr)
		}
		if _, rlErr := q.ExecContext(ctx, "RELEASE SAVEPOINT "+savepoint); rlErr != nil {
			return fmt.Errorf("failed to release savepoint: %w", rlErr)
		}
		return nil
	}
}
