package request

// PriceFeedInput binds one asset to an oracle feed at initialization.
type PriceFeedInput struct {
	Asset  string `json:"asset"`
	FeedID string `json:"feedId"`
}

// CreateEngineRequest is the once-only initialization payload. The caller
// identity becomes the engine owner.
type CreateEngineRequest struct {
	Name                 string           `json:"name"`
	Investor             string           `json:"investor"`
	InvestedAmount       uint64           `json:"investedAmount"`
	InterestRate         uint64           `json:"interestRate"`
	ResidualInterestRate uint64           `json:"residualInterestRate"`
	UnitOfAccount        string           `json:"unitOfAccount"`
	ConversionMode       string           `json:"conversionMode"`
	Controller           string           `json:"controller,omitempty"`
	ControllerImmutable  bool             `json:"controllerImmutable,omitempty"`
	FeeRate              uint64           `json:"feeRate,omitempty"`
	FeeRecipient         string           `json:"feeRecipient,omitempty"`
	AutoDistribute       bool             `json:"autoDistribute,omitempty"`
	Recipients           []string         `json:"recipients"`
	Percentages          []uint64         `json:"percentages"`
	PriceFeeds           []PriceFeedInput `json:"priceFeeds,omitempty"`
}

// SetRecipientsRequest atomically replaces the recipient set.
type SetRecipientsRequest struct {
	Addresses   []string `json:"addresses"`
	Percentages []uint64 `json:"percentages"`
}

// SetDistributorRequest grants or revokes the distributor role.
type SetDistributorRequest struct {
	Address string `json:"address"`
	Enabled bool   `json:"enabled"`
}

// SetControllerRequest changes the engine controller.
type SetControllerRequest struct {
	Controller string `json:"controller"`
}

// SetPriceFeedRequest binds or rebinds the oracle feed for an asset.
type SetPriceFeedRequest struct {
	Asset  string `json:"asset"`
	FeedID string `json:"feedId"`
}

// SetFeeRequest updates the platform fee policy.
type SetFeeRequest struct {
	FeeRate      uint64 `json:"feeRate"`
	FeeRecipient string `json:"feeRecipient,omitempty"`
}

// DepositRequest credits external value to an address.
type DepositRequest struct {
	Asset  string `json:"asset"`
	Amount uint64 `json:"amount"`
}

// CreateAccountRequest registers a payee account.
type CreateAccountRequest struct {
	Name string `json:"name"`
}
