package events

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/pagalvan/TryOn/internal/dedup"
	"github.com/pagalvan/TryOn/internal/inventory"
	"github.com/pagalvan/TryOn/internal/order"
)

type HandlerFunc func(ctx context.Context, body []byte) error

// OrderPlacer is the slice of the order workflow the consumer drives.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, customerID string, lines []order.LineRequest) (*order.Order, error)
}

// PlacedPublisher emits the OrderPlaced event after a checkout was turned
// into an order.
type PlacedPublisher interface {
	PublishOrderPlaced(ctx context.Context, meta EventMeta, o *order.Order) error
}

const cartCheckedOutConsumerName = "tryon-cart-checkedout"

// CartCheckedOutHandler turns a checked-out cart into a placed order.
// Business rejections (bad request, insufficient stock) are logged and
// acknowledged: redelivery cannot fix them. Returning an error NACKs the
// message.
func CartCheckedOutHandler(placer OrderPlacer, dedupRepo *dedup.Repository, pub PlacedPublisher, logger *log.Logger) HandlerFunc {
	return func(ctx context.Context, body []byte) error {
		msg, err := parseCartCheckedOut(body)
		if err != nil {
			logger.Printf("drop malformed CartCheckedOut: %v", err)
			return nil
		}
		if msg.Payload.CustomerID == "" {
			logger.Printf("drop CartCheckedOut without customerId (cart=%s)", msg.Payload.CartID)
			return nil
		}

		meta := EventMeta{PartitionKey: msg.Payload.CartID}
		var incomingSeq int64
		if msg.Envelope != nil {
			meta.CorrelationID = msg.Envelope.CorrelationID
			meta.CausationID = msg.Envelope.EventID
			if msg.Envelope.PartitionKey != "" {
				meta.PartitionKey = msg.Envelope.PartitionKey
			}
			incomingSeq = msg.Envelope.Sequence
		}
		if meta.CorrelationID == "" {
			meta.CorrelationID = uuid.NewString()
		}

		if incomingSeq != 0 {
			lastSeq, ok, err := dedupRepo.GetLastSequence(ctx, cartCheckedOutConsumerName, meta.PartitionKey)
			if err != nil {
				return err
			}
			if ok && incomingSeq <= lastSeq {
				logger.Printf("skip duplicate cart=%s seq=%d last=%d", msg.Payload.CartID, incomingSeq, lastSeq)
				return nil
			}
		}

		lines := make([]order.LineRequest, 0, len(msg.Payload.Lines))
		for _, l := range msg.Payload.Lines {
			lines = append(lines, order.LineRequest{GarmentID: l.GarmentID, Quantity: l.Quantity})
		}

		o, err := placer.PlaceOrder(ctx, msg.Payload.CustomerID, lines)
		if err != nil {
			if rejected(err) {
				logger.Printf("reject cart %s: %v", msg.Payload.CartID, err)
				return nil
			}
			return fmt.Errorf("place order for cart %s: %w", msg.Payload.CartID, err)
		}

		if incomingSeq != 0 {
			if err := dedupRepo.UpsertLastSequence(ctx, cartCheckedOutConsumerName, meta.PartitionKey, incomingSeq); err != nil {
				return err
			}
		}

		logger.Printf("placed order %s for customer %s from cart %s", o.ID, o.CustomerID, msg.Payload.CartID)
		return pub.PublishOrderPlaced(ctx, meta, o)
	}
}

// rejected reports whether the placement failure is a business rule the
// producer must be told about out of band, as opposed to an infrastructure
// fault worth redelivering.
func rejected(err error) bool {
	var validation *order.ValidationError
	var insufficient *inventory.InsufficientStockError
	return errors.As(err, &validation) ||
		errors.As(err, &insufficient) ||
		errors.Is(err, inventory.ErrNoSnapshot)
}
