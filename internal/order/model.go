package order

import "time"

// Line is one (garment, quantity) pairing within an order. The unit price
// is captured from the catalog at placement time; subtotals are not
// recomputed when catalog prices change later.
type Line struct {
	GarmentID string  `json:"garmentId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

func (l Line) Subtotal() float64 {
	return float64(l.Quantity) * l.UnitPrice
}

type Order struct {
	ID         string    `json:"orderId"`
	CustomerID string    `json:"customerId"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	Lines      []Line    `json:"lines"`
}

func (o *Order) Total() float64 {
	var total float64
	for _, l := range o.Lines {
		total += l.Subtotal()
	}
	return total
}
