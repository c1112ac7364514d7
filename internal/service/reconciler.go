package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/broker"
	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/ledger"
	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/models"
	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/util"
)

const paymentConfirmedMessage = "✅ Pagamento confirmado! Seu pedido já está em andamento. Obrigado!"

// WebhookReconciler converts asynchronous payment-event pushes into customer
// notifications with exactly-once effect. The pushed payload is untrusted:
// the gateway is always re-queried for the authoritative status before any
// action is taken.
type WebhookReconciler struct {
	gateway  PaymentGateway
	ledger   ledger.Ledger
	notifier Notifier
	events   broker.Publisher
	logger   *zap.Logger
}

// NewWebhookReconciler creates a new webhook reconciler.
func NewWebhookReconciler(
	gw PaymentGateway,
	led ledger.Ledger,
	notifier Notifier,
	events broker.Publisher,
) *WebhookReconciler {
	return &WebhookReconciler{
		gateway:  gw,
		ledger:   led,
		notifier: notifier,
		events:   events,
		logger:   util.GetLogger(),
	}
}

// HandleEvent processes one gateway event. It never propagates failure to
// the webhook caller: the HTTP handler acknowledges regardless, so the
// gateway's redelivery behavior stays under our control.
func (r *WebhookReconciler) HandleEvent(ctx context.Context, event models.PaymentEvent) {
	ctx, span := util.StartSpan(ctx, "WebhookReconciler.HandleEvent")
	defer span.End()

	if event.Type != models.EventTypePayment {
		util.WebhookEventsTotal.WithLabelValues("ignored").Inc()
		return
	}

	status, err := r.gateway.GetStatus(ctx, event.GatewayRef)
	if err != nil {
		// The gateway retries delivery; acting on a failed query could act
		// on stale data.
		util.WebhookEventsTotal.WithLabelValues("query_failed").Inc()
		r.logger.Warn("Payment status query failed",
			zap.String("gateway_ref", event.GatewayRef),
			zap.Error(err))
		return
	}

	if status != models.PaymentStatusApproved {
		// Rejected or pending leaves the entry in place so a later
		// approval can still be honored.
		util.WebhookEventsTotal.WithLabelValues("not_approved").Inc()
		r.logger.Info("Payment not approved yet",
			zap.String("gateway_ref", event.GatewayRef),
			zap.String("status", status))
		return
	}

	contact, found, err := r.ledger.PopIfPresent(ctx, event.GatewayRef)
	if err != nil {
		util.WebhookEventsTotal.WithLabelValues("ledger_error").Inc()
		r.logger.Error("Ledger pop failed",
			zap.String("gateway_ref", event.GatewayRef),
			zap.Error(err))
		return
	}
	if !found {
		// Expected under duplicate delivery or after a restart.
		util.OrphanApprovalsTotal.Inc()
		r.logger.Warn("Approved payment with no matching pending order",
			zap.String("gateway_ref", event.GatewayRef))
		return
	}

	if err := r.notifier.SendText(ctx, contact, paymentConfirmedMessage); err != nil {
		r.logger.Error("Failed to notify customer of approved payment",
			zap.String("gateway_ref", event.GatewayRef),
			zap.String("contact", contact),
			zap.Error(err))
	}

	util.WebhookEventsTotal.WithLabelValues("confirmed").Inc()
	util.PaymentsConfirmedTotal.Inc()
	r.logger.Info("Payment reconciled",
		zap.String("gateway_ref", event.GatewayRef),
		zap.String("contact", contact))

	confirmed := &models.PaymentConfirmedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePaymentConfirmed,
			Timestamp: time.Now(),
		},
		GatewayRef: event.GatewayRef,
		Contact:    contact,
	}
	if err := r.events.PublishPaymentConfirmed(ctx, confirmed); err != nil {
		r.logger.Error("Failed to publish PaymentConfirmed event", zap.Error(err))
	}
}
