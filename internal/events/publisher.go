package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/pagalvan/TryOn/internal/order"
	"github.com/pagalvan/TryOn/internal/sale"
	"github.com/pagalvan/TryOn/internal/sequence"
)

// Publisher emits workflow events on the topic exchange, wrapped in the v1
// envelope with per-partition sequence numbers.
type Publisher struct {
	ch       *amqp.Channel
	seqRepo  *sequence.Repository
	producer string
}

func NewPublisher(conn *amqp.Connection, seqRepo *sequence.Repository) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareEventsExchange(ch); err != nil {
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}
	return &Publisher{ch: ch, seqRepo: seqRepo, producer: storefrontServiceName}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) PublishOrderPlaced(ctx context.Context, meta EventMeta, o *order.Order) error {
	payload := OrderPlacedPayload{
		OrderID:     o.ID,
		CustomerID:  o.CustomerID,
		TotalAmount: o.Total(),
		Timestamp:   time.Now().UTC(),
	}
	for _, l := range o.Lines {
		payload.Lines = append(payload.Lines, OrderLine{
			GarmentID: l.GarmentID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return p.publish(ctx, OrderPlacedRoutingKey, EventTypeOrderPlaced, orderPlacedSchema, meta, payload)
}

func (p *Publisher) PublishOrderCancelled(ctx context.Context, meta EventMeta, orderID string) error {
	payload := OrderCancelledPayload{OrderID: orderID, Timestamp: time.Now().UTC()}
	return p.publish(ctx, OrderCancelledRoutingKey, EventTypeOrderCancelled, orderCancelledSchema, meta, payload)
}

func (p *Publisher) PublishSaleRecorded(ctx context.Context, meta EventMeta, s *sale.Sale) error {
	payload := SaleRecordedPayload{
		SaleID:        s.ID,
		OrderID:       s.OrderID,
		PaymentMethod: s.PaymentMethod,
		TotalAmount:   s.TotalAmount,
		Timestamp:     time.Now().UTC(),
	}
	return p.publish(ctx, SaleRecordedRoutingKey, EventTypeSaleRecorded, saleRecordedSchema, meta, payload)
}

func (p *Publisher) PublishSaleVoided(ctx context.Context, meta EventMeta, s *sale.Sale) error {
	payload := SaleVoidedPayload{SaleID: s.ID, OrderID: s.OrderID, Timestamp: time.Now().UTC()}
	return p.publish(ctx, SaleVoidedRoutingKey, EventTypeSaleVoided, saleVoidedSchema, meta, payload)
}

func (p *Publisher) publish(ctx context.Context, routingKey, eventName, schema string, meta EventMeta, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventName, err)
	}

	seq, err := p.seqRepo.NextSequence(ctx, meta.PartitionKey)
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}

	env := EventEnvelope{
		EventName:     eventName,
		EventVersion:  1,
		EventID:       uuid.NewString(),
		CorrelationID: meta.CorrelationID,
		CausationID:   meta.CausationID,
		Producer:      p.producer,
		PartitionKey:  meta.PartitionKey,
		Sequence:      seq,
		OccurredAt:    time.Now().UTC(),
		Schema:        schema,
		Payload:       raw,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", eventName, err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
