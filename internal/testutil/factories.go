package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"revenue-split-engine/internal/model"
)

// MakeID returns a fresh uuid string for use as an address or row id.
func MakeID() string {
	return uuid.NewString()
}

// EngineBuilder provides a fluent interface for creating test engines.
//
// Example usage:
//
//	// Simple creation with defaults
//	engine := testutil.NewEngine().Build(t, db)
//
//	// Customized engine
//	engine := testutil.NewEngine().
//	    WithInvestment(100_000, 3_000_000).
//	    WithResidualRate(500_000).
//	    WithRecipients(t, alice, 8_000_000, bob, 2_000_000).
//	    Build(t, db)
type EngineBuilder struct {
	Engine     model.Engine
	recipients []model.Recipient
}

// NewEngine creates an EngineBuilder with sensible defaults: a fully
// recouped claim is avoided by a non-zero investment, native unit of
// account in direct mode, no fee, no controller.
func NewEngine() *EngineBuilder {
	return &EngineBuilder{
		Engine: model.Engine{
			Address:              MakeID(),
			Name:                 "Test Engine",
			Owner:                MakeID(),
			Investor:             MakeID(),
			InvestedAmount:       100_000,
			InterestRate:         3_000_000, // 30%
			ResidualInterestRate: 500_000,   // 5%
			UnitOfAccount:        model.NativeAsset,
			ConversionMode:       model.ConversionDirect,
			CreatedAt:            time.Now().UTC(),
		},
	}
}

// WithAddress sets a custom engine address.
func (b *EngineBuilder) WithAddress(address string) *EngineBuilder {
	b.Engine.Address = address
	return b
}

// WithName sets a custom name.
func (b *EngineBuilder) WithName(name string) *EngineBuilder {
	b.Engine.Name = name
	return b
}

// WithOwner sets a custom owner address.
func (b *EngineBuilder) WithOwner(owner string) *EngineBuilder {
	b.Engine.Owner = owner
	return b
}

// WithController sets the controller address.
func (b *EngineBuilder) WithController(controller string) *EngineBuilder {
	b.Engine.Controller = controller
	return b
}

// ImmutableController marks the controller as immutable.
func (b *EngineBuilder) ImmutableController() *EngineBuilder {
	b.Engine.ControllerImmutable = true
	return b
}

// WithInvestor sets the investor address.
func (b *EngineBuilder) WithInvestor(investor string) *EngineBuilder {
	b.Engine.Investor = investor
	return b
}

// WithInvestment sets the invested amount and interest rate.
func (b *EngineBuilder) WithInvestment(amount, interestRate uint64) *EngineBuilder {
	b.Engine.InvestedAmount = amount
	b.Engine.InterestRate = interestRate
	return b
}

// WithResidualRate sets the residual interest rate.
func (b *EngineBuilder) WithResidualRate(rate uint64) *EngineBuilder {
	b.Engine.ResidualInterestRate = rate
	return b
}

// WithAmountReceived sets the recoupment accumulator directly.
func (b *EngineBuilder) WithAmountReceived(amount uint64) *EngineBuilder {
	b.Engine.AmountReceived = amount
	return b
}

// Recouped marks the investor claim as fully satisfied.
func (b *EngineBuilder) Recouped() *EngineBuilder {
	b.Engine.AmountReceived = model.AmountToReceive(b.Engine.InvestedAmount, b.Engine.InterestRate)
	return b
}

// WithUnitOfAccount sets the unit of account and conversion mode.
func (b *EngineBuilder) WithUnitOfAccount(unit, mode string) *EngineBuilder {
	b.Engine.UnitOfAccount = unit
	b.Engine.ConversionMode = mode
	return b
}

// WithFee sets the platform fee rate and recipient.
func (b *EngineBuilder) WithFee(rate uint64, recipient string) *EngineBuilder {
	b.Engine.FeeRate = rate
	b.Engine.FeeRecipient = recipient
	return b
}

// AutoDistribute enables distribution on native deposit.
func (b *EngineBuilder) AutoDistribute() *EngineBuilder {
	b.Engine.AutoDistribute = true
	return b
}

// WithRecipients sets the recipient set as alternating address/percentage
// pairs, in apportionment order.
func (b *EngineBuilder) WithRecipients(t *testing.T, pairs ...any) *EngineBuilder {
	t.Helper()

	if len(pairs)%2 != 0 {
		t.Fatal("WithRecipients requires address/percentage pairs")
	}
	b.recipients = b.recipients[:0]
	for i := 0; i < len(pairs); i += 2 {
		address, ok := pairs[i].(string)
		if !ok {
			t.Fatalf("WithRecipients pair %d: address must be a string", i/2)
		}
		percentage, ok := pairs[i+1].(uint64)
		if !ok {
			t.Fatalf("WithRecipients pair %d: percentage must be a uint64", i/2)
		}
		b.recipients = append(b.recipients, model.Recipient{
			ID:            MakeID(),
			EngineAddress: b.Engine.Address,
			Address:       address,
			Percentage:    percentage,
			Position:      i / 2,
		})
	}
	return b
}

// Build creates the engine, its recipient set and its amount-to-receive in
// the database and returns the engine.
func (b *EngineBuilder) Build(t *testing.T, db *sql.DB) model.Engine {
	t.Helper()

	b.Engine.AmountToReceive = model.AmountToReceive(b.Engine.InvestedAmount, b.Engine.InterestRate)

	query := `
		INSERT INTO engine (
			address, name, owner_address, controller_address, controller_immutable,
			investor_address, invested_amount, interest_rate, residual_interest_rate,
			amount_to_receive, amount_received, unit_of_account, conversion_mode,
			fee_rate, fee_recipient, auto_distribute, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var controller, feeRecipient any
	if b.Engine.Controller != "" {
		controller = b.Engine.Controller
	}
	if b.Engine.FeeRecipient != "" {
		feeRecipient = b.Engine.FeeRecipient
	}

	_, err := db.Exec(query,
		b.Engine.Address, b.Engine.Name, b.Engine.Owner, controller, b.Engine.ControllerImmutable,
		b.Engine.Investor, int64(b.Engine.InvestedAmount), int64(b.Engine.InterestRate), int64(b.Engine.ResidualInterestRate),
		int64(b.Engine.AmountToReceive), int64(b.Engine.AmountReceived), b.Engine.UnitOfAccount, b.Engine.ConversionMode,
		int64(b.Engine.FeeRate), feeRecipient, b.Engine.AutoDistribute, b.Engine.CreatedAt,
	)
	if err != nil {
		t.Fatalf("Failed to create test engine: %v", err)
	}

	for _, recipient := range b.recipients {
		_, err := db.Exec(
			`INSERT INTO recipient (id, engine_address, address, percentage, position) VALUES (?, ?, ?, ?, ?)`,
			recipient.ID, recipient.EngineAddress, recipient.Address, int64(recipient.Percentage), recipient.Position,
		)
		if err != nil {
			t.Fatalf("Failed to create test recipient: %v", err)
		}
	}

	return b.Engine
}

// GrantDistributor grants the distributor role directly in the database.
func GrantDistributor(t *testing.T, db *sql.DB, engineAddress, address string) {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO distributor (engine_address, address) VALUES (?, ?)`,
		engineAddress, address,
	)
	if err != nil {
		t.Fatalf("Failed to grant test distributor: %v", err)
	}
}

// Credit adds to an address's balance of an asset directly in the database.
func Credit(t *testing.T, db *sql.DB, address, asset string, amount uint64) {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO balance (address, asset, amount) VALUES (?, ?, ?)
		 ON CONFLICT (address, asset) DO UPDATE SET amount = amount + excluded.amount`,
		address, asset, int64(amount),
	)
	if err != nil {
		t.Fatalf("Failed to credit test balance: %v", err)
	}
}

// BalanceOf reads an address's balance of an asset, zero when absent.
func BalanceOf(t *testing.T, db *sql.DB, address, asset string) uint64 {
	t.Helper()

	var amount int64
	err := db.QueryRow(
		`SELECT amount FROM balance WHERE address = ? AND asset = ?`,
		address, asset,
	).Scan(&amount)
	if err == sql.ErrNoRows {
		return 0
	}
	if err != nil {
		t.Fatalf("Failed to read test balance: %v", err)
	}
	return uint64(amount)
}

// BindFeed binds an oracle feed for an engine asset directly in the database.
func BindFeed(t *testing.T, db *sql.DB, engineAddress, asset, feedID string) {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO price_feed (engine_address, asset, feed_id) VALUES (?, ?, ?)
		 ON CONFLICT (engine_address, asset) DO UPDATE SET feed_id = excluded.feed_id`,
		engineAddress, asset, feedID,
	)
	if err != nil {
		t.Fatalf("Failed to bind test price feed: %v", err)
	}
}

// AccountBuilder provides a fluent interface for creating test accounts.
type AccountBuilder struct {
	Account model.Account
}

// NewAccount creates an AccountBuilder with sensible defaults.
func NewAccount() *AccountBuilder {
	return &AccountBuilder{
		Account: model.Account{
			Address:   MakeID(),
			Name:      "Test Account",
			CreatedAt: time.Now().UTC(),
		},
	}
}

// WithName sets a custom name.
func (b *AccountBuilder) WithName(name string) *AccountBuilder {
	b.Account.Name = name
	return b
}

// Build creates the account in the database and returns it.
func (b *AccountBuilder) Build(t *testing.T, db *sql.DB) model.Account {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO account (address, name, created_at) VALUES (?, ?, ?)`,
		b.Account.Address, b.Account.Name, b.Account.CreatedAt,
	)
	if err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}

	return b.Account
}
