package model

import "time"

// Account is a plain payee identity. An address with an engine row is
// contract-like for propagation purposes; an account address is not.
type Account struct {
	Address   string    `json:"address"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Balance is one custodial ledger entry: the amount of one asset held by
// one address.
type Balance struct {
	Address string `json:"address"`
	Asset   string `json:"asset"`
	Amount  uint64 `json:"amount"`
}
