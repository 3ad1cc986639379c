package testutil

import (
	"database/sql"
	"testing"

	"github.com/fernet/fernet-go"

	"revenue-split-engine/internal/repository"
	"revenue-split-engine/internal/service"
)

// NewTestWaterfallService wires a WaterfallService against the test
// database and the given oracle. Pass nil for engines that never convert.
func NewTestWaterfallService(t *testing.T, db *sql.DB, oracle service.Oracle) *service.WaterfallService {
	t.Helper()

	return service.NewWaterfallService(
		db,
		repository.NewEngineRepository(db),
		repository.NewRecipientRepository(db),
		repository.NewLedgerRepository(db),
		repository.NewPriceFeedRepository(db),
		repository.NewEventRepository(db),
		service.NewAccessService(repository.NewRoleRepository(db)),
		oracle,
	)
}

func NewTestRegistryService(t *testing.T, db *sql.DB) *service.RegistryService {
	t.Helper()

	return service.NewRegistryService(
		db,
		repository.NewEngineRepository(db),
		repository.NewRecipientRepository(db),
		repository.NewEventRepository(db),
		service.NewAccessService(repository.NewRoleRepository(db)),
	)
}

func NewTestEngineService(t *testing.T, db *sql.DB) *service.EngineService {
	t.Helper()

	return service.NewEngineService(
		db,
		repository.NewEngineRepository(db),
		repository.NewRoleRepository(db),
		repository.NewPriceFeedRepository(db),
		repository.NewEventRepository(db),
		NewTestRegistryService(t, db),
		service.NewAccessService(repository.NewRoleRepository(db)),
	)
}

// NewTestLedgerService wires a LedgerService whose auto-distribute path
// runs through the given oracle.
func NewTestLedgerService(t *testing.T, db *sql.DB, oracle service.Oracle) *service.LedgerService {
	t.Helper()

	return service.NewLedgerService(
		db,
		repository.NewLedgerRepository(db),
		repository.NewEngineRepository(db),
		repository.NewEventRepository(db),
		NewTestWaterfallService(t, db, oracle),
	)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

func NewTestAccountService(t *testing.T, db *sql.DB) *service.AccountService {
	t.Helper()

	var key fernet.Key
	if err := key.Generate(); err != nil {
		t.Fatalf("Failed to generate test identity key: %v", err)
	}

	return service.NewAccountService(repository.NewAccountRepository(db), &key)
}

func NewTestSweepService(t *testing.T, db *sql.DB, oracle service.Oracle) *service.SweepService {
	t.Helper()

	return service.NewSweepService(
		repository.NewEngineRepository(db),
		NewTestWaterfallService(t, db, oracle),
	)
}
