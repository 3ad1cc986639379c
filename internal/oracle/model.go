package oracle

// Response is the raw latest-round answer returned by the feed aggregator
// for one feed.
type Response struct {
	FeedID    string `json:"feedId"`
	Price     int64  `json:"price"`
	Decimals  uint8  `json:"decimals"`
	Timestamp int64  `json:"timestamp"` // unix seconds
	RoundID   uint64 `json:"roundId"`
}
