package service_test

import (
	"context"
	"errors"
	"testing"

	"revenue-split-engine/internal/apperrors"
	"revenue-split-engine/internal/model"
	"revenue-split-engine/internal/service"
	"revenue-split-engine/internal/testutil"
)

// TestRegistryService_SetRecipients tests atomic recipient-set replacement.
//
// WHY: The recipient set decides where residual value flows. A replacement
// must be all-or-nothing: any rejected candidate set, including one that
// fails only the final sum check, has to leave the prior set fully intact.
func TestRegistryService_SetRecipients(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (svc *service.RegistryService, engineAddress, controller string) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		s := testutil.NewTestRegistryService(t, db)
		controller = testutil.MakeID()
		engine := testutil.NewEngine().
			WithController(controller).
			WithRecipients(t, "prior-recipient", model.Scale).
			Build(t, db)
		return s, engine.Address, controller
	}

	t.Run("replaces the active set", func(t *testing.T) {
		// Setup
		svc, engine, controller := setup(t)
		alice := testutil.MakeID()
		bob := testutil.MakeID()

		// Execute
		err := svc.SetRecipients(ctx, controller, engine,
			[]string{alice, bob}, []uint64{8_000_000, 2_000_000})

		// Assert
		if err != nil {
			t.Fatalf("SetRecipients() returned unexpected error: %v", err)
		}
		recipients, err := svc.GetRecipients(ctx, engine)
		if err != nil {
			t.Fatalf("GetRecipients() returned unexpected error: %v", err)
		}
		if len(recipients) != 2 {
			t.Fatalf("Expected 2 recipients, got %d", len(recipients))
		}
		if recipients[0].Address != alice || recipients[0].Percentage != 8_000_000 {
			t.Errorf("First recipient = %s/%d, want %s/8000000",
				recipients[0].Address, recipients[0].Percentage, alice)
		}
		if recipients[1].Address != bob || recipients[1].Percentage != 2_000_000 {
			t.Errorf("Second recipient = %s/%d, want %s/2000000",
				recipients[1].Address, recipients[1].Percentage, bob)
		}
	})

	t.Run("rejects a caller that is not the controller", func(t *testing.T) {
		svc, engine, _ := setup(t)

		err := svc.SetRecipients(ctx, testutil.MakeID(), engine,
			[]string{testutil.MakeID()}, []uint64{model.Scale})

		if !errors.Is(err, apperrors.ErrOnlyController) {
			t.Errorf("Expected ErrOnlyController, got %v", err)
		}
	})

	t.Run("rejects mismatched slice lengths", func(t *testing.T) {
		svc, engine, controller := setup(t)

		err := svc.SetRecipients(ctx, controller, engine,
			[]string{testutil.MakeID(), testutil.MakeID()}, []uint64{model.Scale})

		if !errors.Is(err, apperrors.ErrInconsistentDataLength) {
			t.Errorf("Expected ErrInconsistentDataLength, got %v", err)
		}
	})

	t.Run("rejects an empty address", func(t *testing.T) {
		svc, engine, controller := setup(t)

		err := svc.SetRecipients(ctx, controller, engine,
			[]string{""}, []uint64{model.Scale})

		if !errors.Is(err, apperrors.ErrNullAddressRecipient) {
			t.Errorf("Expected ErrNullAddressRecipient, got %v", err)
		}
	})

	t.Run("rejects a duplicate address", func(t *testing.T) {
		svc, engine, controller := setup(t)
		address := testutil.MakeID()

		err := svc.SetRecipients(ctx, controller, engine,
			[]string{address, address}, []uint64{5_000_000, 5_000_000})

		if !errors.Is(err, apperrors.ErrDuplicateRecipient) {
			t.Errorf("Expected ErrDuplicateRecipient, got %v", err)
		}
	})

	t.Run("rejects zero and out-of-range percentages", func(t *testing.T) {
		svc, engine, controller := setup(t)

		err := svc.SetRecipients(ctx, controller, engine,
			[]string{testutil.MakeID()}, []uint64{0})
		if !errors.Is(err, apperrors.ErrInvalidPercentage) {
			t.Errorf("Expected ErrInvalidPercentage for zero, got %v", err)
		}

		err = svc.SetRecipients(ctx, controller, engine,
			[]string{testutil.MakeID()}, []uint64{model.Scale + 1})
		if !errors.Is(err, apperrors.ErrInvalidPercentage) {
			t.Errorf("Expected ErrInvalidPercentage for overflow, got %v", err)
		}
	})

	t.Run("rejected set leaves the prior set intact", func(t *testing.T) {
		// Setup
		svc, engine, controller := setup(t)

		// Execute: a set that passes per-entry checks but sums short of
		// the scale, so it fails only after the replace.
		err := svc.SetRecipients(ctx, controller, engine,
			[]string{testutil.MakeID(), testutil.MakeID()}, []uint64{4_000_000, 4_000_000})

		// Assert
		if !errors.Is(err, apperrors.ErrInvalidPercentage) {
			t.Fatalf("Expected ErrInvalidPercentage, got %v", err)
		}
		recipients, err := svc.GetRecipients(ctx, engine)
		if err != nil {
			t.Fatalf("GetRecipients() returned unexpected error: %v", err)
		}
		if len(recipients) != 1 || recipients[0].Address != "prior-recipient" {
			t.Errorf("Prior recipient set was not preserved: %+v", recipients)
		}
	})

	t.Run("unknown engine fails", func(t *testing.T) {
		svc, _, controller := setup(t)

		err := svc.SetRecipients(ctx, controller, testutil.MakeID(),
			[]string{testutil.MakeID()}, []uint64{model.Scale})

		if !errors.Is(err, apperrors.ErrEngineNotFound) {
			t.Errorf("Expected ErrEngineNotFound, got %v", err)
		}
	})
}
