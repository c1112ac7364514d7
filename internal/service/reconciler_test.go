package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/broker"
	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/ledger"
	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/models"
)

func newTestReconciler(gw *fakeGateway, led ledger.Ledger, notifier *fakeNotifier) *WebhookReconciler {
	return NewWebhookReconciler(gw, led, notifier, broker.NoopPublisher{})
}

func TestHandleEventApprovedNotifiesOnce(t *testing.T) {
	gw := newFakeGateway()
	led := ledger.NewMemory()
	notifier := &fakeNotifier{}
	rec := newTestReconciler(gw, led, notifier)

	gw.status["ref-1"] = models.PaymentStatusApproved
	require.NoError(t, led.Put(context.Background(), "ref-1", "+5511999990000"))

	rec.HandleEvent(context.Background(), models.PaymentEvent{
		Type:       models.EventTypePayment,
		GatewayRef: "ref-1",
	})

	require.Equal(t, 1, notifier.count())
	assert.Equal(t, "+5511999990000|"+paymentConfirmedMessage, notifier.sends[0])
	assert.Equal(t, 0, led.Len())
}

func TestHandleEventDuplicateDeliveries(t *testing.T) {
	gw := newFakeGateway()
	led := ledger.NewMemory()
	notifier := &fakeNotifier{}
	rec := newTestReconciler(gw, led, notifier)

	gw.status["ref-1"] = models.PaymentStatusApproved
	require.NoError(t, led.Put(context.Background(), "ref-1", "+5511999990000"))

	event := models.PaymentEvent{Type: models.EventTypePayment, GatewayRef: "ref-1"}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec.HandleEvent(context.Background(), event)
		}()
	}
	wg.Wait()

	// Exactly one delivery wins the pop; the rest are orphans.
	assert.Equal(t, 1, notifier.count())
}

func TestHandleEventNotApprovedLeavesEntry(t *testing.T) {
	gw := newFakeGateway()
	led := ledger.NewMemory()
	notifier := &fakeNotifier{}
	rec := newTestReconciler(gw, led, notifier)

	gw.status["ref-1"] = models.PaymentStatusRejected
	require.NoError(t, led.Put(context.Background(), "ref-1", "+5511999990000"))

	rec.HandleEvent(context.Background(), models.PaymentEvent{
		Type:       models.EventTypePayment,
		GatewayRef: "ref-1",
	})

	assert.Equal(t, 0, notifier.count())
	// A later approval for the same reference still succeeds.
	gw.status["ref-1"] = models.PaymentStatusApproved
	rec.HandleEvent(context.Background(), models.PaymentEvent{
		Type:       models.EventTypePayment,
		GatewayRef: "ref-1",
	})
	assert.Equal(t, 1, notifier.count())
}

func TestHandleEventOrphanApproval(t *testing.T) {
	gw := newFakeGateway()
	led := ledger.NewMemory()
	notifier := &fakeNotifier{}
	rec := newTestReconciler(gw, led, notifier)

	gw.status["ghost"] = models.PaymentStatusApproved

	rec.HandleEvent(context.Background(), models.PaymentEvent{
		Type:       models.EventTypePayment,
		GatewayRef: "ghost",
	})

	assert.Equal(t, 0, notifier.count())
}

func TestHandleEventStatusQueryFailure(t *testing.T) {
	gw := newFakeGateway()
	gw.statusErr = errors.New("gateway down")
	led := ledger.NewMemory()
	notifier := &fakeNotifier{}
	rec := newTestReconciler(gw, led, notifier)

	require.NoError(t, led.Put(context.Background(), "ref-1", "+5511999990000"))

	rec.HandleEvent(context.Background(), models.PaymentEvent{
		Type:       models.EventTypePayment,
		GatewayRef: "ref-1",
	})

	// Nothing consumed, nothing sent: the gateway will redeliver.
	assert.Equal(t, 0, notifier.count())
	assert.Equal(t, 1, led.Len())
}

func TestHandleEventIgnoresOtherTypes(t *testing.T) {
	gw := newFakeGateway()
	led := ledger.NewMemory()
	notifier := &fakeNotifier{}
	rec := newTestReconciler(gw, led, notifier)

	gw.status["ref-1"] = models.PaymentStatusApproved
	require.NoError(t, led.Put(context.Background(), "ref-1", "+5511999990000"))

	rec.HandleEvent(context.Background(), models.PaymentEvent{
		Type:       "merchant_order",
		GatewayRef: "ref-1",
	})

	assert.Equal(t, 0, notifier.count())
	assert.Equal(t, 1, led.Len())
}

func TestHandleEventNotifierFailureStillConsumes(t *testing.T) {
	gw := newFakeGateway()
	led := ledger.NewMemory()
	notifier := &fakeNotifier{err: errors.New("channel down")}
	rec := newTestReconciler(gw, led, notifier)

	gw.status["ref-1"] = models.PaymentStatusApproved
	require.NoError(t, led.Put(context.Background(), "ref-1", "+5511999990000"))

	rec.HandleEvent(context.Background(), models.PaymentEvent{
		Type:       models.EventTypePayment,
		GatewayRef: "ref-1",
	})

	// The entry is gone either way; redelivery must not double-charge the
	// confirmation path.
	assert.Equal(t, 0, led.Len())
	assert.Equal(t, 0, notifier.count())
}
