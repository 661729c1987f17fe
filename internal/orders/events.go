package orders

import (
	"encoding/json"
	"time"
)

const EventOrderPlaced = "OrderPlaced"

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // EventOrderPlaced
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"` // e.g. "sneakers-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

// OrderPlacedPayload is published after a reservation commits.
type OrderPlacedPayload struct {
	OrderID     int64  `json:"order_id"`
	StockUnitID int64  `json:"stock_unit_id"`
	Quantity    int    `json:"quantity"`
	Status      Status `json:"status"`
}
