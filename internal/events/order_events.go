package events

import "time"

const (
	EventTypeOrderPlaced    = "OrderPlaced"
	EventTypeOrderCancelled = "OrderCancelled"

	orderPlacedSchema    = "tryon.order-placed.v1"
	orderCancelledSchema = "tryon.order-cancelled.v1"
)

// OrderPlacedPayload is emitted after an order is persisted and its
// inventory deduction has been applied.
type OrderPlacedPayload struct {
	OrderID     string      `json:"orderId"`
	CustomerID  string      `json:"customerId"`
	Lines       []OrderLine `json:"lines"`
	TotalAmount float64     `json:"totalAmount"`
	Timestamp   time.Time   `json:"timestamp"`
}

type OrderLine struct {
	GarmentID string  `json:"garmentId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type OrderCancelledPayload struct {
	OrderID   string    `json:"orderId"`
	Timestamp time.Time `json:"timestamp"`
}
