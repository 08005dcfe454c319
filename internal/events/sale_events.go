package events

import "time"

const (
	EventTypeSaleRecorded = "SaleRecorded"
	EventTypeSaleVoided   = "SaleVoided"

	saleRecordedSchema = "tryon.sale-recorded.v1"
	saleVoidedSchema   = "tryon.sale-voided.v1"
)

type SaleRecordedPayload struct {
	SaleID        string    `json:"saleId"`
	OrderID       string    `json:"orderId"`
	PaymentMethod string    `json:"paymentMethod"`
	TotalAmount   float64   `json:"totalAmount"`
	Timestamp     time.Time `json:"timestamp"`
}

type SaleVoidedPayload struct {
	SaleID    string    `json:"saleId"`
	OrderID   string    `json:"orderId"`
	Timestamp time.Time `json:"timestamp"`
}
