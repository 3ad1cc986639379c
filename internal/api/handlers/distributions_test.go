package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"revenue-split-engine/internal/api/middleware"
	"revenue-split-engine/internal/api/request"
	"revenue-split-engine/internal/model"
	"revenue-split-engine/internal/testutil"
)

func TestDistributionHandler_DistributeNative(t *testing.T) {
	t.Run("distributor triggers a distribution", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		handler := NewDistributionHandler(
			testutil.NewTestWaterfallService(t, db, nil),
			testutil.NewTestLedgerService(t, db, nil),
		)
		distributor := testutil.MakeID()
		engine := testutil.NewEngine().Build(t, db)
		testutil.GrantDistributor(t, db, engine.Address, distributor)
		testutil.Credit(t, db, engine.Address, model.NativeAsset, 1_000)

		req := testutil.NewRequestWithURLParams(http.MethodPost,
			"/api/engine/"+engine.Address+"/distribute",
			map[string]string{"uuid": engine.Address})
		req = middleware.WithCaller(req, distributor)
		w := httptest.NewRecorder()

		// Execute
		handler.DistributeNative(w, req)

		// Assert
		if w.Code != http.StatusNoContent {
			t.Fatalf("Expected 204, got %d: %s", w.Code, w.Body.String())
		}
		if got := testutil.BalanceOf(t, db, engine.Investor, model.NativeAsset); got != 1_000 {
			t.Errorf("investor balance = %d, want 1000", got)
		}
	})

	t.Run("returns 403 for a caller without the role", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewDistributionHandler(
			testutil.NewTestWaterfallService(t, db, nil),
			testutil.NewTestLedgerService(t, db, nil),
		)
		engine := testutil.NewEngine().Build(t, db)

		req := testutil.NewRequestWithURLParams(http.MethodPost,
			"/api/engine/"+engine.Address+"/distribute",
			map[string]string{"uuid": engine.Address})
		req = middleware.WithCaller(req, testutil.MakeID())
		w := httptest.NewRecorder()

		handler.DistributeNative(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("Expected 403, got %d", w.Code)
		}
	})

	t.Run("returns 422 when a token has no bound feed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewDistributionHandler(
			testutil.NewTestWaterfallService(t, db, testutil.NewStubOracle()),
			testutil.NewTestLedgerService(t, db, nil),
		)
		distributor := testutil.MakeID()
		engine := testutil.NewEngine().Build(t, db)
		testutil.GrantDistributor(t, db, engine.Address, distributor)
		testutil.Credit(t, db, engine.Address, "TOKEN", 500)

		req := testutil.NewRequestWithURLParams(http.MethodPost,
			"/api/engine/"+engine.Address+"/distribute/TOKEN",
			map[string]string{"uuid": engine.Address, "asset": "TOKEN"})
		req = middleware.WithCaller(req, distributor)
		w := httptest.NewRecorder()

		handler.DistributeAsset(w, req)

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("Expected 422, got %d", w.Code)
		}
	})
}

func TestDistributionHandler_Deposit(t *testing.T) {
	t.Run("credits the engine balance", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		handler := NewDistributionHandler(
			testutil.NewTestWaterfallService(t, db, nil),
			testutil.NewTestLedgerService(t, db, nil),
		)
		engine := testutil.NewEngine().Build(t, db)

		req := testutil.NewJSONRequest(http.MethodPost,
			"/api/engine/"+engine.Address+"/deposit",
			map[string]string{"uuid": engine.Address},
			request.DepositRequest{Asset: "TOKEN", Amount: 5_000})
		req = middleware.WithCaller(req, testutil.MakeID())
		w := httptest.NewRecorder()

		// Execute
		handler.Deposit(w, req)

		// Assert
		if w.Code != http.StatusNoContent {
			t.Fatalf("Expected 204, got %d: %s", w.Code, w.Body.String())
		}
		if got := testutil.BalanceOf(t, db, engine.Address, "TOKEN"); got != 5_000 {
			t.Errorf("engine token balance = %d, want 5000", got)
		}
	})

	t.Run("returns 400 for a zero amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewDistributionHandler(
			testutil.NewTestWaterfallService(t, db, nil),
			testutil.NewTestLedgerService(t, db, nil),
		)
		engine := testutil.NewEngine().Build(t, db)

		req := testutil.NewJSONRequest(http.MethodPost,
			"/api/engine/"+engine.Address+"/deposit",
			map[string]string{"uuid": engine.Address},
			request.DepositRequest{Asset: "TOKEN", Amount: 0})
		w := httptest.NewRecorder()

		handler.Deposit(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}
