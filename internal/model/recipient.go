package model

// Recipient is one entry of an engine's weighted recipient set. Percentage
// is expressed in units of 1/Scale; a committed set sums to exactly Scale.
// Position preserves insertion order, which is also apportionment order.
type Recipient struct {
	ID            string `json:"id"`
	EngineAddress string `json:"engineAddress"`
	Address       string `json:"address"`
	Percentage    uint64 `json:"percentage"`
	Position      int    `json:"position"`
}
