package httpapi

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/pagalvan/TryOn/internal/events"
	"github.com/pagalvan/TryOn/internal/order"
	"github.com/pagalvan/TryOn/internal/sale"
)

// EventSink receives domain events to publish after a successful request.
// Publishing is best-effort: the state change has already committed, so a
// broker failure is logged, not surfaced to the client.
type EventSink interface {
	OrderPlaced(ctx context.Context, o *order.Order)
	OrderCancelled(ctx context.Context, orderID string)
	SaleRecorded(ctx context.Context, s *sale.Sale)
	SaleVoided(ctx context.Context, s *sale.Sale)
}

// PublisherSink adapts events.Publisher to EventSink. A nil publisher
// disables publishing, which keeps tests and broker-less deployments simple.
type PublisherSink struct {
	pub    *events.Publisher
	logger *log.Logger
}

func NewPublisherSink(pub *events.Publisher, logger *log.Logger) *PublisherSink {
	return &PublisherSink{pub: pub, logger: logger}
}

func (s *PublisherSink) meta(key string) events.EventMeta {
	correlationID := uuid.NewString()
	return events.EventMeta{
		CorrelationID: correlationID,
		CausationID:   correlationID,
		PartitionKey:  key,
	}
}

func (s *PublisherSink) OrderPlaced(ctx context.Context, o *order.Order) {
	if s.pub == nil {
		return
	}
	if err := s.pub.PublishOrderPlaced(ctx, s.meta(o.ID), o); err != nil {
		s.logger.Printf("publish OrderPlaced %s: %v", o.ID, err)
	}
}

func (s *PublisherSink) OrderCancelled(ctx context.Context, orderID string) {
	if s.pub == nil {
		return
	}
	if err := s.pub.PublishOrderCancelled(ctx, s.meta(orderID), orderID); err != nil {
		s.logger.Printf("publish OrderCancelled %s: %v", orderID, err)
	}
}

func (s *PublisherSink) SaleRecorded(ctx context.Context, sl *sale.Sale) {
	if s.pub == nil {
		return
	}
	if err := s.pub.PublishSaleRecorded(ctx, s.meta(sl.OrderID), sl); err != nil {
		s.logger.Printf("publish SaleRecorded %s: %v", sl.ID, err)
	}
}

func (s *PublisherSink) SaleVoided(ctx context.Context, sl *sale.Sale) {
	if s.pub == nil {
		return
	}
	if err := s.pub.PublishSaleVoided(ctx, s.meta(sl.OrderID), sl); err != nil {
		s.logger.Printf("publish SaleVoided %s: %v", sl.ID, err)
	}
}
