package broker

import (
	"context"
	"fmt"

	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/models"
)

// Publisher emits order lifecycle events for downstream consumers. Publishing
// is best effort: callers log failures and continue, a lost event never
// affects the customer-facing flow.
type Publisher interface {
	PublishOrderPending(ctx context.Context, event *models.OrderPendingEvent) error
	PublishPaymentConfirmed(ctx context.Context, event *models.PaymentConfirmedEvent) error
}

// EventPublisher publishes domain events through Kafka.
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderPending publishes an OrderPending event
func (ep *EventPublisher) PublishOrderPending(ctx context.Context, event *models.OrderPendingEvent) error {
	key := fmt.Sprintf("order-%s", event.GatewayRef)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishPaymentConfirmed publishes a PaymentConfirmed event
func (ep *EventPublisher) PublishPaymentConfirmed(ctx context.Context, event *models.PaymentConfirmedEvent) error {
	key := fmt.Sprintf("order-%s", event.GatewayRef)
	return ep.producer.PublishEvent(ctx, key, event)
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderPending(context.Context, *models.OrderPendingEvent) error {
	return nil
}

func (NoopPublisher) PublishPaymentConfirmed(context.Context, *models.PaymentConfirmedEvent) error {
	return nil
}
