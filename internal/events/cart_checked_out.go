package events

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	EventTypeCartCheckedOut  = "CartCheckedOut"
	cartCheckedOutVersion    = 1
	cartCheckedOutSchemaName = "tryon.cart-checked-out.v1"
)

// CartCheckedOutPayload is the v1 payload published by the cart front end
// when a customer submits a cart.
type CartCheckedOutPayload struct {
	CartID     string     `json:"cartId"`
	CustomerID string     `json:"customerId"`
	Lines      []CartLine `json:"lines"`
	Timestamp  time.Time  `json:"timestamp"`
}

type CartLine struct {
	GarmentID string `json:"garmentId"`
	Quantity  int    `json:"quantity"`
}

type cartCheckedOutMessage struct {
	Payload  CartCheckedOutPayload
	Envelope *EventEnvelope
}

// parseCartCheckedOut accepts the v1 envelope format and falls back to a
// bare payload for legacy producers.
func parseCartCheckedOut(body []byte) (cartCheckedOutMessage, error) {
	env, err := parseEnvelope(body)
	if err == nil && env.EventName != "" {
		if err := env.Validate(EventTypeCartCheckedOut, cartCheckedOutVersion); err != nil {
			return cartCheckedOutMessage{}, fmt.Errorf("invalid CartCheckedOut envelope: %w", err)
		}
		var payload CartCheckedOutPayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			return cartCheckedOutMessage{}, fmt.Errorf("unmarshal CartCheckedOut payload: %w", err)
		}
		return cartCheckedOutMessage{Payload: payload, Envelope: &env}, nil
	}

	var payload CartCheckedOutPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return cartCheckedOutMessage{}, fmt.Errorf("unmarshal CartCheckedOut: %w", err)
	}
	return cartCheckedOutMessage{Payload: payload}, nil
}
