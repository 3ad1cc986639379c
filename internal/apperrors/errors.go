// Package apperrors defines the sentinel errors surfaced by the revenue-split
// engine. Handlers match on these with errors.Is to pick HTTP status codes.
package apperrors

import "errors"

// Role errors indicate that the caller identity does not hold the role
// required for an operation.
var (
	// ErrOnlyOwner indicates that the operation is restricted to the engine owner.
	ErrOnlyOwner = errors.New("caller is not the engine owner")

	// ErrOnlyController indicates that the operation is restricted to the engine controller.
	ErrOnlyController = errors.New("caller is not the engine controller")

	// ErrOnlyDistributor indicates that the caller is not registered as a distributor.
	ErrOnlyDistributor = errors.New("caller is not a registered distributor")
)

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrEngineNotFound indicates that an engine with the given address does not exist.
	ErrEngineNotFound = errors.New("engine not found")

	// ErrEngineExists indicates an attempt to initialize an engine address twice.
	ErrEngineExists = errors.New("engine already initialized")

	// ErrAccountNotFound indicates that an account with the given address does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrMissingPriceOracle indicates that no price feed is bound for an asset
	// that requires conversion. Only the affected asset is unusable.
	ErrMissingPriceOracle = errors.New("no price feed bound for asset")
)

// Recipient set errors represent validation failures of a candidate recipient set.
var (
	// ErrInconsistentDataLength indicates that the addresses and percentages
	// slices of a recipient set differ in length.
	ErrInconsistentDataLength = errors.New("addresses and percentages length mismatch")

	// ErrNullAddressRecipient indicates that a recipient entry carries the null identity.
	ErrNullAddressRecipient = errors.New("recipient address cannot be empty")

	// ErrDuplicateRecipient indicates that an address repeats within one recipient set.
	ErrDuplicateRecipient = errors.New("duplicate recipient address")

	// ErrInvalidPercentage indicates a zero percentage entry, a rate above the
	// scale, or a committed set whose percentages do not sum to the scale.
	ErrInvalidPercentage = errors.New("invalid percentage")
)

// Configuration errors represent rejected role or fee configuration changes.
var (
	// ErrDistributorAlreadyConfigured indicates granting the distributor role
	// to an address that already holds it.
	ErrDistributorAlreadyConfigured = errors.New("distributor already configured")

	// ErrControllerAlreadyConfigured indicates that the new controller equals
	// the current one.
	ErrControllerAlreadyConfigured = errors.New("controller already configured")

	// ErrControllerNotConfigured indicates a controller change on an engine
	// that was initialized without a controller.
	ErrControllerNotConfigured = errors.New("controller not configured")

	// ErrImmutableController indicates that the engine's controller is immutable.
	ErrImmutableController = errors.New("controller is immutable")

	// ErrInvestorAddressZero indicates that the investor identity is missing
	// at initialization.
	ErrInvestorAddressZero = errors.New("investor address cannot be empty")

	// ErrInvalidFeePercentage indicates a fee rate above the percentage scale,
	// or a non-zero fee rate without a fee recipient.
	ErrInvalidFeePercentage = errors.New("invalid fee percentage")
)

// Distribution errors represent failures during a distribution call. Any of
// these aborts the whole call; no partial state change is visible.
var (
	// ErrTransferFailed indicates that a payout could not be moved to its payee.
	ErrTransferFailed = errors.New("transfer failed")

	// ErrInsufficientBalance indicates an attempted move beyond the source balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrCallDepthExceeded indicates that recursive propagation exhausted its
	// call budget. A cyclic engine graph surfaces as this error on the
	// outermost call.
	ErrCallDepthExceeded = errors.New("propagation call depth exceeded")

	// ErrInvalidOraclePrice indicates a non-positive normalized oracle price.
	ErrInvalidOraclePrice = errors.New("oracle returned non-positive price")

	// ErrAmountOverflow indicates that a converted amount does not fit the
	// 63-bit range storable in the ledger.
	ErrAmountOverflow = errors.New("amount overflows ledger range")
)

// Boundary errors for request handling.
var (
	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrNegativeAmount indicates that an amount field has an invalid value.
	ErrNegativeAmount = errors.New("amount must be positive")

	// ErrMissingRequiredField indicates that a required field is missing or empty.
	ErrMissingRequiredField = errors.New("missing required field")
)
