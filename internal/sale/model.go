package sale

import "time"

// Sale is the financial record for a completed order. The total is copied
// from the order at finalization and never recomputed. A voided sale keeps
// its row for audit; only the administrative HardDelete removes it.
type Sale struct {
	ID            string     `json:"saleId"`
	OrderID       string     `json:"orderId"`
	SoldAt        time.Time  `json:"soldAt"`
	PaymentMethod string     `json:"paymentMethod"`
	TotalAmount   float64    `json:"totalAmount"`
	Voided        bool       `json:"voided"`
	VoidedAt      *time.Time `json:"voidedAt,omitempty"`
}
