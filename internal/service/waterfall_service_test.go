package service_test

import (
	"context"
	"errors"
	"testing"

	"revenue-split-engine/internal/apperrors"
	"revenue-split-engine/internal/model"
	"revenue-split-engine/internal/testutil"
)

// TestWaterfallService_Lifecycle walks one engine through the full
// distribution lifecycle: recoupment, the transition call that satisfies
// the claim mid-stream, and the permanent residual phase.
//
// WHY: The waterfall ordering and its phase transition are the core
// economics of the system. This fixes the exact payouts for a concrete
// funding scenario so any change to fee, recoupment or residual arithmetic
// shows up as a changed number.
func TestWaterfallService_Lifecycle(t *testing.T) {
	// 100,000 invested at 30% interest: the claim is 130,000. Residual
	// rate 5%, recipients split 80/20, no platform fee. Four native
	// deposits of 50,000 each, distributed as they arrive.
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestWaterfallService(t, db, nil)
	ctx := context.Background()

	alice := testutil.MakeID()
	bob := testutil.MakeID()
	distributor := testutil.MakeID()

	engine := testutil.NewEngine().
		WithInvestment(100_000, 3_000_000).
		WithResidualRate(500_000).
		WithRecipients(t, alice, uint64(8_000_000), bob, uint64(2_000_000)).
		Build(t, db)
	testutil.GrantDistributor(t, db, engine.Address, distributor)

	investor := engine.Investor

	deposit := func(amount uint64) {
		t.Helper()
		testutil.Credit(t, db, engine.Address, model.NativeAsset, amount)
		if err := svc.DistributeNative(ctx, distributor, engine.Address); err != nil {
			t.Fatalf("DistributeNative() returned unexpected error: %v", err)
		}
	}

	assertBalance := func(label, address string, want uint64) {
		t.Helper()
		if got := testutil.BalanceOf(t, db, address, model.NativeAsset); got != want {
			t.Errorf("%s balance = %d, want %d", label, got, want)
		}
	}

	assertReceived := func(want uint64) {
		t.Helper()
		svc2 := testutil.NewTestEngineService(t, db)
		e, err := svc2.GetEngine(ctx, engine.Address)
		if err != nil {
			t.Fatalf("GetEngine() returned unexpected error: %v", err)
		}
		if e.AmountReceived != want {
			t.Errorf("amountReceived = %d, want %d", e.AmountReceived, want)
		}
	}

	t.Run("first deposit goes entirely to the investor", func(t *testing.T) {
		deposit(50_000)

		assertBalance("investor", investor, 50_000)
		assertBalance("alice", alice, 0)
		assertBalance("bob", bob, 0)
		assertReceived(50_000)
	})

	t.Run("second deposit continues recoupment", func(t *testing.T) {
		deposit(50_000)

		assertBalance("investor", investor, 100_000)
		assertBalance("alice", alice, 0)
		assertBalance("bob", bob, 0)
		assertReceived(100_000)
	})

	t.Run("third deposit satisfies the claim and pays the bonus", func(t *testing.T) {
		// Remaining claim 30,000, excess 20,000, bonus 5% of the excess.
		// Investor: 30,000 + 1,000. Recipients split the remaining 19,000.
		deposit(50_000)

		assertBalance("investor", investor, 131_000)
		assertBalance("alice", alice, 15_200)
		assertBalance("bob", bob, 3_800)
		assertReceived(130_000)
	})

	t.Run("fourth deposit runs in the residual phase", func(t *testing.T) {
		// 5% royalty off the top, 47,500 left for the recipients.
		deposit(50_000)

		assertBalance("investor", investor, 133_500)
		assertBalance("alice", alice, 53_200)
		assertBalance("bob", bob, 13_300)
		assertReceived(130_000)
	})

	t.Run("nothing was created or destroyed", func(t *testing.T) {
		total := testutil.BalanceOf(t, db, investor, model.NativeAsset) +
			testutil.BalanceOf(t, db, alice, model.NativeAsset) +
			testutil.BalanceOf(t, db, bob, model.NativeAsset) +
			testutil.BalanceOf(t, db, engine.Address, model.NativeAsset)
		if total != 200_000 {
			t.Errorf("total distributed value = %d, want 200000", total)
		}
	})
}

// TestWaterfallService_Fee tests platform fee extraction.
//
// WHY: The fee comes off the top before any waterfall math; getting the
// order wrong would shrink or inflate the investor's recoupment.
func TestWaterfallService_Fee(t *testing.T) {
	t.Run("fee is extracted before the investor phase", func(t *testing.T) {
		// Setup: 2.5% fee on a 50,000 deposit.
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestWaterfallService(t, db, nil)

		platform := testutil.MakeID()
		distributor := testutil.MakeID()
		engine := testutil.NewEngine().
			WithFee(250_000, platform).
			WithRecipients(t, testutil.MakeID(), model.Scale).
			Build(t, db)
		testutil.GrantDistributor(t, db, engine.Address, distributor)
		testutil.Credit(t, db, engine.Address, model.NativeAsset, 50_000)

		// Execute
		if err := svc.DistributeNative(context.Background(), distributor, engine.Address); err != nil {
			t.Fatalf("DistributeNative() returned unexpected error: %v", err)
		}

		// Assert: fee 1,250, the remaining 48,750 recouped by the investor.
		if got := testutil.BalanceOf(t, db, platform, model.NativeAsset); got != 1_250 {
			t.Errorf("fee recipient balance = %d, want 1250", got)
		}
		if got := testutil.BalanceOf(t, db, engine.Investor, model.NativeAsset); got != 48_750 {
			t.Errorf("investor balance = %d, want 48750", got)
		}
	})
}

// TestWaterfallService_Dust tests apportionment dust retention.
//
// WHY: Per-recipient floor division can leave the sum of shares short of
// the distributable amount. The difference must stay on the engine for the
// next call, never be minted to anyone.
func TestWaterfallService_Dust(t *testing.T) {
	t.Run("floor division dust stays on the engine", func(t *testing.T) {
		// Setup: a recouped engine with zero residual rate splits 1/3 vs
		// 2/3. Distributing 100 leaves 1 unit of dust.
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestWaterfallService(t, db, nil)

		alice := testutil.MakeID()
		bob := testutil.MakeID()
		distributor := testutil.MakeID()
		engine := testutil.NewEngine().
			Recouped().
			WithResidualRate(0).
			WithRecipients(t, alice, uint64(3_333_333), bob, uint64(6_666_667)).
			Build(t, db)
		testutil.GrantDistributor(t, db, engine.Address, distributor)
		testutil.Credit(t, db, engine.Address, model.NativeAsset, 100)

		// Execute
		if err := svc.DistributeNative(context.Background(), distributor, engine.Address); err != nil {
			t.Fatalf("DistributeNative() returned unexpected error: %v", err)
		}

		// Assert
		if got := testutil.BalanceOf(t, db, alice, model.NativeAsset); got != 33 {
			t.Errorf("alice balance = %d, want 33", got)
		}
		if got := testutil.BalanceOf(t, db, bob, model.NativeAsset); got != 66 {
			t.Errorf("bob balance = %d, want 66", got)
		}
		if got := testutil.BalanceOf(t, db, engine.Address, model.NativeAsset); got != 1 {
			t.Errorf("engine dust balance = %d, want 1", got)
		}
	})
}

// TestWaterfallService_Access tests the distributor gate on distribution.
//
// WHY: Distribution moves custodial value; only registered distributors and
// the engine itself may trigger it.
func TestWaterfallService_Access(t *testing.T) {
	t.Run("rejects a caller without the distributor role", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestWaterfallService(t, db, nil)
		engine := testutil.NewEngine().Build(t, db)
		testutil.Credit(t, db, engine.Address, model.NativeAsset, 1_000)

		// Execute
		err := svc.DistributeNative(context.Background(), testutil.MakeID(), engine.Address)

		// Assert
		if !errors.Is(err, apperrors.ErrOnlyDistributor) {
			t.Errorf("Expected ErrOnlyDistributor, got %v", err)
		}
		if got := testutil.BalanceOf(t, db, engine.Address, model.NativeAsset); got != 1_000 {
			t.Errorf("engine balance = %d, want 1000 (untouched)", got)
		}
	})

	t.Run("the engine may distribute itself", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestWaterfallService(t, db, nil)
		engine := testutil.NewEngine().Build(t, db)
		testutil.Credit(t, db, engine.Address, model.NativeAsset, 1_000)

		// Execute
		if err := svc.DistributeSelf(context.Background(), engine.Address); err != nil {
			t.Fatalf("DistributeSelf() returned unexpected error: %v", err)
		}

		// Assert: still recouping, so everything went to the investor.
		if got := testutil.BalanceOf(t, db, engine.Investor, model.NativeAsset); got != 1_000 {
			t.Errorf("investor balance = %d, want 1000", got)
		}
	})

	t.Run("unknown engine fails", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestWaterfallService(t, db, nil)

		err := svc.DistributeNative(context.Background(), testutil.MakeID(), testutil.MakeID())

		if !errors.Is(err, apperrors.ErrEngineNotFound) {
			t.Errorf("Expected ErrEngineNotFound, got %v", err)
		}
	})
}

// TestWaterfallService_TokenDistribution tests the token variant.
//
// WHY: Token distribution shares the waterfall but adds a zero-balance
// no-op guard and unit-of-account conversion through the oracle.
func TestWaterfallService_TokenDistribution(t *testing.T) {
	t.Run("zero token balance is a no-op", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestWaterfallService(t, db, nil)
		distributor := testutil.MakeID()
		engine := testutil.NewEngine().Build(t, db)
		testutil.GrantDistributor(t, db, engine.Address, distributor)

		// Execute
		err := svc.DistributeAsset(context.Background(), distributor, engine.Address, "TOKEN")

		// Assert: no error even though no feed is bound; the guard fires
		// before conversion is needed.
		if err != nil {
			t.Fatalf("DistributeAsset() returned unexpected error: %v", err)
		}
	})

	t.Run("token recoupment converts through the bound feed", func(t *testing.T) {
		// Setup: claim 130,000 native, token priced at 2 native each with
		// 8-digit quotes. The remaining claim of 130,000 is 65,000 tokens.
		db := testutil.SetupTestDB(t)
		oracle := testutil.NewStubOracle().WithQuote("feed-token", 200_000_000, 8)
		svc := testutil.NewTestWaterfallService(t, db, oracle)

		distributor := testutil.MakeID()
		engine := testutil.NewEngine().
			WithInvestment(100_000, 3_000_000).
			WithRecipients(t, testutil.MakeID(), model.Scale).
			Build(t, db)
		testutil.GrantDistributor(t, db, engine.Address, distributor)
		testutil.BindFeed(t, db, engine.Address, "TOKEN", "feed-token")
		testutil.Credit(t, db, engine.Address, "TOKEN", 10_000)

		// Execute
		if err := svc.DistributeAsset(context.Background(), distributor, engine.Address, "TOKEN"); err != nil {
			t.Fatalf("DistributeAsset() returned unexpected error: %v", err)
		}

		// Assert: 10,000 tokens are worth 20,000 in the unit of account,
		// well inside the claim, so the investor takes all of them.
		if got := testutil.BalanceOf(t, db, engine.Investor, "TOKEN"); got != 10_000 {
			t.Errorf("investor token balance = %d, want 10000", got)
		}
		svc2 := testutil.NewTestEngineService(t, db)
		e, err := svc2.GetEngine(context.Background(), engine.Address)
		if err != nil {
			t.Fatalf("GetEngine() returned unexpected error: %v", err)
		}
		if e.AmountReceived != 20_000 {
			t.Errorf("amountReceived = %d, want 20000", e.AmountReceived)
		}
	})

	t.Run("missing feed fails the call", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestWaterfallService(t, db, testutil.NewStubOracle())
		distributor := testutil.MakeID()
		engine := testutil.NewEngine().Build(t, db)
		testutil.GrantDistributor(t, db, engine.Address, distributor)
		testutil.Credit(t, db, engine.Address, "TOKEN", 500)

		// Execute
		err := svc.DistributeAsset(context.Background(), distributor, engine.Address, "TOKEN")

		// Assert: the balance is untouched.
		if !errors.Is(err, apperrors.ErrMissingPriceOracle) {
			t.Errorf("Expected ErrMissingPriceOracle, got %v", err)
		}
		if got := testutil.BalanceOf(t, db, engine.Address, "TOKEN"); got != 500 {
			t.Errorf("engine token balance = %d, want 500 (untouched)", got)
		}
	})
}

// TestWaterfallService_Propagation tests recursive propagation into payee
// engines.
//
// WHY: Chained engines must cascade within a single call, downstream
// failures must degrade to a plain payout, and a cyclic configuration must
// abort the whole call rather than spin.
func TestWaterfallService_Propagation(t *testing.T) {
	t.Run("cascades through a registered payee engine", func(t *testing.T) {
		// Setup: parent pays its full residual to child; child is recouped
		// too and forwards everything to its own recipient. Parent is
		// registered as a distributor on child, so the cascade runs in one
		// call.
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestWaterfallService(t, db, nil)

		distributor := testutil.MakeID()
		leaf := testutil.MakeID()

		child := testutil.NewEngine().
			Recouped().
			WithResidualRate(0).
			WithRecipients(t, leaf, model.Scale).
			Build(t, db)
		parent := testutil.NewEngine().
			Recouped().
			WithResidualRate(0).
			WithRecipients(t, child.Address, model.Scale).
			Build(t, db)
		testutil.GrantDistributor(t, db, parent.Address, distributor)
		testutil.GrantDistributor(t, db, child.Address, parent.Address)
		testutil.Credit(t, db, parent.Address, model.NativeAsset, 10_000)

		// Execute
		if err := svc.DistributeNative(context.Background(), distributor, parent.Address); err != nil {
			t.Fatalf("DistributeNative() returned unexpected error: %v", err)
		}

		// Assert: the full amount reached the leaf; neither engine holds
		// an intermediate balance.
		if got := testutil.BalanceOf(t, db, leaf, model.NativeAsset); got != 10_000 {
			t.Errorf("leaf balance = %d, want 10000", got)
		}
		if got := testutil.BalanceOf(t, db, child.Address, model.NativeAsset); got != 0 {
			t.Errorf("child balance = %d, want 0", got)
		}
		if got := testutil.BalanceOf(t, db, parent.Address, model.NativeAsset); got != 0 {
			t.Errorf("parent balance = %d, want 0", got)
		}
	})

	t.Run("unregistered payee engine keeps its payout", func(t *testing.T) {
		// Setup: same chain, but parent never registered on child.
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestWaterfallService(t, db, nil)

		distributor := testutil.MakeID()
		child := testutil.NewEngine().
			Recouped().
			WithResidualRate(0).
			WithRecipients(t, testutil.MakeID(), model.Scale).
			Build(t, db)
		parent := testutil.NewEngine().
			Recouped().
			WithResidualRate(0).
			WithRecipients(t, child.Address, model.Scale).
			Build(t, db)
		testutil.GrantDistributor(t, db, parent.Address, distributor)
		testutil.Credit(t, db, parent.Address, model.NativeAsset, 10_000)

		// Execute
		if err := svc.DistributeNative(context.Background(), distributor, parent.Address); err != nil {
			t.Fatalf("DistributeNative() returned unexpected error: %v", err)
		}

		// Assert
		if got := testutil.BalanceOf(t, db, child.Address, model.NativeAsset); got != 10_000 {
			t.Errorf("child balance = %d, want 10000", got)
		}
	})

	t.Run("auto-distribute payee engine is not propagated into", func(t *testing.T) {
		// Setup: the child distributes itself on native receipt, so the
		// parent's call must not trigger it a second time even though the
		// parent is registered as a distributor on it.
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestWaterfallService(t, db, nil)

		distributor := testutil.MakeID()
		child := testutil.NewEngine().
			AutoDistribute().
			Recouped().
			WithResidualRate(0).
			WithRecipients(t, testutil.MakeID(), model.Scale).
			Build(t, db)
		parent := testutil.NewEngine().
			Recouped().
			WithResidualRate(0).
			WithRecipients(t, child.Address, model.Scale).
			Build(t, db)
		testutil.GrantDistributor(t, db, parent.Address, distributor)
		testutil.GrantDistributor(t, db, child.Address, parent.Address)
		testutil.Credit(t, db, parent.Address, model.NativeAsset, 10_000)

		// Execute
		if err := svc.DistributeNative(context.Background(), distributor, parent.Address); err != nil {
			t.Fatalf("DistributeNative() returned unexpected error: %v", err)
		}

		// Assert: the payout stays on the child until its own receive hook
		// runs; nothing reached the child's investor in this call.
		if got := testutil.BalanceOf(t, db, child.Address, model.NativeAsset); got != 10_000 {
			t.Errorf("child balance = %d, want 10000", got)
		}
		if got := testutil.BalanceOf(t, db, child.Investor, model.NativeAsset); got != 0 {
			t.Errorf("child investor balance = %d, want 0", got)
		}
	})

	t.Run("failing downstream call is skipped, its effects reverted", func(t *testing.T) {
		// Setup: the child engine needs a USD feed it does not have, so
		// its nested distribution fails. The parent's payout must stand
		// and the child must simply keep the money.
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestWaterfallService(t, db, testutil.NewStubOracle())

		distributor := testutil.MakeID()
		child := testutil.NewEngine().
			WithUnitOfAccount("USD", model.ConversionUSD).
			WithRecipients(t, testutil.MakeID(), model.Scale).
			Build(t, db)
		parent := testutil.NewEngine().
			Recouped().
			WithResidualRate(0).
			WithRecipients(t, child.Address, model.Scale).
			Build(t, db)
		testutil.GrantDistributor(t, db, parent.Address, distributor)
		testutil.GrantDistributor(t, db, child.Address, parent.Address)
		testutil.Credit(t, db, parent.Address, model.NativeAsset, 10_000)

		// Execute
		if err := svc.DistributeNative(context.Background(), distributor, parent.Address); err != nil {
			t.Fatalf("DistributeNative() returned unexpected error: %v", err)
		}

		// Assert
		if got := testutil.BalanceOf(t, db, child.Address, model.NativeAsset); got != 10_000 {
			t.Errorf("child balance = %d, want 10000", got)
		}
		if got := testutil.BalanceOf(t, db, child.Investor, model.NativeAsset); got != 0 {
			t.Errorf("child investor balance = %d, want 0 (nested call reverted)", got)
		}
	})

	t.Run("cyclic configuration aborts the whole call", func(t *testing.T) {
		// Setup: two engines paying 100% to each other, both registered as
		// distributors on the other. The value never shrinks, so the depth
		// budget is the only way out.
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestWaterfallService(t, db, nil)

		distributor := testutil.MakeID()
		a := testutil.NewEngine().Recouped().WithResidualRate(0).Build(t, db)
		b := testutil.NewEngine().
			Recouped().
			WithResidualRate(0).
			WithRecipients(t, a.Address, model.Scale).
			Build(t, db)
		// a's recipient set points at b; it could not be declared inline
		// because b did not exist yet.
		_, err := db.Exec(
			`INSERT INTO recipient (id, engine_address, address, percentage, position) VALUES (?, ?, ?, ?, ?)`,
			testutil.MakeID(), a.Address, b.Address, int64(model.Scale), 0,
		)
		if err != nil {
			t.Fatalf("Failed to create cycle recipient: %v", err)
		}
		testutil.GrantDistributor(t, db, a.Address, distributor)
		testutil.GrantDistributor(t, db, a.Address, b.Address)
		testutil.GrantDistributor(t, db, b.Address, a.Address)
		testutil.Credit(t, db, a.Address, model.NativeAsset, 10_000)

		// Execute
		err = svc.DistributeNative(context.Background(), distributor, a.Address)

		// Assert: the call fails and every balance is as before.
		if !errors.Is(err, apperrors.ErrCallDepthExceeded) {
			t.Errorf("Expected ErrCallDepthExceeded, got %v", err)
		}
		if got := testutil.BalanceOf(t, db, a.Address, model.NativeAsset); got != 10_000 {
			t.Errorf("engine a balance = %d, want 10000 (rolled back)", got)
		}
		if got := testutil.BalanceOf(t, db, b.Address, model.NativeAsset); got != 0 {
			t.Errorf("engine b balance = %d, want 0 (rolled back)", got)
		}
	})
}
