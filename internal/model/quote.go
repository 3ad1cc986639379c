package model

import "time"

// PriceQuote is the latest answer of one oracle feed. Price carries
// Decimals fractional digits; conversion normalizes it to 18 before use.
type PriceQuote struct {
	FeedID    string    `json:"feedId"`
	Price     int64     `json:"price"`
	Decimals  uint8     `json:"decimals"`
	Timestamp time.Time `json:"timestamp"`
	RoundID   uint64    `json:"roundId"`
}

// PriceFeedBinding maps an asset of one engine to the oracle feed used to
// quote it. Absence of a binding is a terminal configuration error for that
// asset only.
type PriceFeedBinding struct {
	EngineAddress string `json:"engineAddress"`
	Asset         string `json:"asset"`
	FeedID        string `json:"feedId"`
}
