package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/broker"
	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/catalog"
	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/classify"
	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/ledger"
	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/models"
	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/util"
)

// Customer-facing texts. Internal failure causes are logged, never echoed.
const (
	replyFileError = "Opa, tive um problema técnico ao processar seu arquivo. Tente novamente."
	replyPixError  = "Opa, desculpe! Tive um problema ao gerar seu Pix. Por favor, tente novamente em alguns instantes."
	helpMenuHeader = "Olá! Não entendi qual serviço você deseja. Nossos serviços disponíveis são:\n"
)

// OrderOrchestrator drives the end-to-end inbound flow: classify, archive
// any attachment, issue a payment intent, register the pending order and
// compose the reply.
type OrderOrchestrator struct {
	catalog *catalog.Catalog
	gateway PaymentGateway
	ledger  ledger.Ledger
	store   ObjectStore
	events  broker.Publisher
	logger  *zap.Logger
}

// NewOrderOrchestrator creates a new order orchestrator.
func NewOrderOrchestrator(
	cat *catalog.Catalog,
	gw PaymentGateway,
	led ledger.Ledger,
	store ObjectStore,
	events broker.Publisher,
) *OrderOrchestrator {
	return &OrderOrchestrator{
		catalog: cat,
		gateway: gw,
		ledger:  led,
		store:   store,
		events:  events,
		logger:  util.GetLogger(),
	}
}

// HandleMessage processes one inbound customer message and returns the reply
// text. Every path ends in a reply; failures map to generic messages.
func (o *OrderOrchestrator) HandleMessage(ctx context.Context, msg models.InboundMessage) string {
	ctx, span := util.StartSpan(ctx, "OrderOrchestrator.HandleMessage")
	defer span.End()

	util.MessagesReceivedTotal.Inc()

	svc, ok := classify.Classify(o.catalog, msg)
	if !ok {
		util.HelpRepliesTotal.Inc()
		return o.helpMenu()
	}

	if msg.AttachmentCount > 0 {
		// An order must never be billed for a file that failed to land in
		// storage, so the upload happens before any gateway call.
		if err := o.archiveAttachment(ctx, msg); err != nil {
			o.logger.Error("Failed to archive attachment",
				zap.String("contact", msg.SenderContact),
				zap.Error(err))
			return replyFileError
		}
		util.AttachmentUploadsTotal.Inc()
	}

	intent, err := o.gateway.CreateIntent(ctx, svc.PriceCents, svc.Description)
	if err != nil {
		util.PaymentIntentsFailedTotal.WithLabelValues("gateway").Inc()
		o.logger.Error("Failed to create payment intent",
			zap.String("contact", msg.SenderContact),
			zap.String("service", svc.Key),
			zap.Error(err))
		return replyPixError
	}

	// Register before replying: once the customer holds the token the
	// approval webhook must find this entry.
	if err := o.ledger.Put(ctx, intent.GatewayRef, msg.SenderContact); err != nil {
		util.PaymentIntentsFailedTotal.WithLabelValues("ledger").Inc()
		o.logger.Error("Failed to register pending order",
			zap.String("gateway_ref", intent.GatewayRef),
			zap.Error(err))
		return replyPixError
	}

	util.PaymentIntentsCreatedTotal.Inc()
	o.logger.Info("Pending order registered",
		zap.String("gateway_ref", intent.GatewayRef),
		zap.String("service", svc.Key),
		zap.Int64("amount_cents", svc.PriceCents))

	event := &models.OrderPendingEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPending,
			Timestamp: time.Now(),
		},
		GatewayRef:  intent.GatewayRef,
		Contact:     msg.SenderContact,
		Description: svc.Description,
		AmountCents: svc.PriceCents,
	}
	if err := o.events.PublishOrderPending(ctx, event); err != nil {
		o.logger.Error("Failed to publish OrderPending event", zap.Error(err))
	}

	return fmt.Sprintf(
		"Serviço: %s\nValor: %s\n\n✅ *Seu PIX foi gerado!*\n\nClique no código abaixo para copiar e pague no seu app do banco:\n\n`%s`",
		svc.Description, FormatPrice(svc.PriceCents), intent.PayerToken)
}

// archiveAttachment fetches the attachment and stores it under
// {contact}-{originalFileName}.
func (o *OrderOrchestrator) archiveAttachment(ctx context.Context, msg models.InboundMessage) error {
	name := classify.AttachmentFileName(msg.AttachmentURL)

	data, err := o.store.Fetch(ctx, msg.AttachmentURL)
	if err != nil {
		util.AttachmentFailuresTotal.WithLabelValues("fetch").Inc()
		return fmt.Errorf("fetch failed: %w", err)
	}

	if err := o.store.Upload(ctx, fmt.Sprintf("%s-%s", msg.SenderContact, name), data); err != nil {
		util.AttachmentFailuresTotal.WithLabelValues("upload").Inc()
		return fmt.Errorf("upload failed: %w", err)
	}
	return nil
}

// helpMenu lists each distinct service description exactly once, in
// first-seen catalog order.
func (o *OrderOrchestrator) helpMenu() string {
	var b strings.Builder
	b.WriteString(helpMenuHeader)

	seen := make(map[string]bool)
	for _, svc := range o.catalog.All() {
		if seen[svc.Description] {
			continue
		}
		seen[svc.Description] = true
		fmt.Fprintf(&b, "\n📄 *%s*: %s", svc.Description, svc.Instructions)
	}
	return b.String()
}

// FormatPrice renders a cent amount in the shop's locale convention:
// currency prefix, decimal comma, two decimals.
func FormatPrice(cents int64) string {
	return fmt.Sprintf("R$ %d,%02d", cents/100, cents%100)
}
