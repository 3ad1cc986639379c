package model

import "time"

// Scale is the denominator for every percentage-like rate in the system:
// recipient percentages, the platform fee rate and both interest rates.
// A value of Scale means 100%.
const Scale uint64 = 10_000_000

// NativeAsset is the asset code of the native currency. All other asset
// codes identify fungible tokens.
const NativeAsset = "NATIVE"

// Conversion modes supported by an engine. The mode decides how incoming
// asset amounts are converted into the investor's unit of account.
const (
	// ConversionDirect uses one oracle feed per asset quoting that asset
	// directly against the unit of account. The unit of account itself
	// never requires a lookup.
	ConversionDirect = "direct"

	// ConversionUSD treats USD as the unit of account and quotes every
	// asset, the native currency included, against USD through its own feed.
	ConversionUSD = "usd"
)

// MaxPropagationDepth is the call budget for recursive propagation. A chain
// of engines deeper than this, which in practice means a cyclic
// configuration, aborts the outermost distribution call.
const MaxPropagationDepth = 64

// Engine represents one initialized revenue-split engine instance. All
// fields except AmountReceived, Controller, FeeRate, FeeRecipient and
// AutoDistribute are immutable after initialization.
type Engine struct {
	Address              string    `json:"address"`
	Name                 string    `json:"name"`
	Owner                string    `json:"owner"`
	Controller           string    `json:"controller,omitempty"` // empty = unset
	ControllerImmutable  bool      `json:"controllerImmutable"`
	Investor             string    `json:"investor"`
	InvestedAmount       uint64    `json:"investedAmount"`
	InterestRate         uint64    `json:"interestRate"`         // unit = 1/Scale
	ResidualInterestRate uint64    `json:"residualInterestRate"` // unit = 1/Scale
	AmountToReceive      uint64    `json:"amountToReceive"`      // in unit of account
	AmountReceived       uint64    `json:"amountReceived"`       // in unit of account, monotonic
	UnitOfAccount        string    `json:"unitOfAccount"`
	ConversionMode       string    `json:"conversionMode"`
	FeeRate              uint64    `json:"feeRate"` // unit = 1/Scale
	FeeRecipient         string    `json:"feeRecipient,omitempty"`
	AutoDistribute       bool      `json:"autoDistribute"`
	CreatedAt            time.Time `json:"createdAt"`
}

// Recouped reports whether the investor claim is fully satisfied, which is
// the permanent residual phase of the waterfall.
func (e *Engine) Recouped() bool {
	return e.AmountReceived >= e.AmountToReceive
}

// AmountToReceive computes principal plus simple interest at the configured
// rate. Computed once at initialization and stored on the engine row.
func AmountToReceive(investedAmount, interestRate uint64) uint64 {
	return investedAmount + MulDiv64(investedAmount, interestRate, Scale)
}
