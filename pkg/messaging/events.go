package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Exchanges
const (
	ExchangeInventoryEvents = "inventory.events"
)

// Event types (also used as routing keys)
const (
	EventMovementApplied = "inventory.movement.applied"
	EventItemDeleted     = "inventory.item.deleted"
	EventStockDepleted   = "inventory.stock.depleted"
)

// Event is the envelope for all published events
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event envelope with marshaled data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		CorrelationID: correlationID,
		Timestamp:     time.Now().UTC(),
		Data:          payload,
	}, nil
}

// MovementAppliedEvent is published after every committed stock movement.
type MovementAppliedEvent struct {
	ItemID                 string `json:"item_id"`
	ItemCode               int    `json:"item_code"`
	Lot                    string `json:"lot,omitempty"`
	MovementKind           string `json:"movement_kind"`
	Quantity               int    `json:"quantity"`
	PhysicalExistenceAfter int    `json:"physical_existence_after"`
	ActorID                string `json:"actor_id"`
}

// StockDepletedEvent is published when a movement drives an item to zero
// physical existence and a notification was raised.
type StockDepletedEvent struct {
	ItemCode    int    `json:"item_code"`
	Description string `json:"description"`
}
