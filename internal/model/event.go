package model

import "time"

// Event types emitted by the engine. Events are observable notifications,
// never consumed internally.
const (
	EventEngineInitialized  = "engine-initialized"
	EventRecipientsChanged  = "recipients-changed"
	EventDistributed        = "distributed"
	EventDistributorChanged = "distributor-changed"
	EventControllerChanged  = "controller-changed"
	EventPriceFeedSet       = "price-feed-set"
	EventFeeUpdated         = "fee-updated"
	EventDeposit            = "deposit"
)

// Event is one emitted notification. Payload is a JSON document whose shape
// depends on the event type.
type Event struct {
	ID            string    `json:"id"`
	EngineAddress string    `json:"engineAddress"`
	Type          string    `json:"type"`
	Payload       string    `json:"payload"`
	CreatedAt     time.Time `json:"createdAt"`
}
