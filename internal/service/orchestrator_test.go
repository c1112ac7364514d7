package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/broker"
	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/catalog"
	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/ledger"
	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/models"
)

type fakeGateway struct {
	mu        sync.Mutex
	nextRef   int
	status    map[string]string
	createErr error
	statusErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{status: make(map[string]string)}
}

func (g *fakeGateway) CreateIntent(_ context.Context, amountCents int64, description string) (*models.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.nextRef++
	ref := fmt.Sprintf("ref-%d", g.nextRef)
	g.status[ref] = models.PaymentStatusPending
	return &models.PaymentIntent{
		GatewayRef: ref,
		PayerToken: "pix-token-" + ref,
	}, nil
}

func (g *fakeGateway) GetStatus(_ context.Context, ref string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.statusErr != nil {
		return "", g.statusErr
	}
	return g.status[ref], nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	sends []string
	err   error
}

func (n *fakeNotifier) SendText(_ context.Context, to, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sends = append(n.sends, to+"|"+body)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sends)
}

type fakeStore struct {
	fetchErr  error
	uploadErr error
	uploads   []string
}

func (s *fakeStore) Fetch(_ context.Context, url string) ([]byte, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return []byte("file-bytes"), nil
}

func (s *fakeStore) Upload(_ context.Context, name string, _ []byte) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	s.uploads = append(s.uploads, name)
	return nil
}

func newTestOrchestrator(gw *fakeGateway, led ledger.Ledger, store *fakeStore) *OrderOrchestrator {
	return NewOrderOrchestrator(catalog.Default(), gw, led, store, broker.NoopPublisher{})
}

func TestHandleMessageKeywordOrder(t *testing.T) {
	gw := newFakeGateway()
	led := ledger.NewMemory()
	orch := newTestOrchestrator(gw, led, &fakeStore{})

	reply := orch.HandleMessage(context.Background(), models.InboundMessage{
		SenderContact: "+5511999990000",
		RawBody:       "preciso da certidao",
	})

	assert.Contains(t, reply, "Emissão de Certidão")
	assert.Contains(t, reply, "R$ 10,00")
	assert.Contains(t, reply, "`pix-token-ref-1`")

	// The pending order is registered before the reply is rendered.
	contact, ok, err := led.PopIfPresent(context.Background(), "ref-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "+5511999990000", contact)
}

func TestHandleMessageAttachmentOrder(t *testing.T) {
	gw := newFakeGateway()
	led := ledger.NewMemory()
	store := &fakeStore{}
	orch := newTestOrchestrator(gw, led, store)

	reply := orch.HandleMessage(context.Background(), models.InboundMessage{
		SenderContact:   "+5511999990000",
		RawBody:         "segue",
		AttachmentCount: 1,
		AttachmentURL:   "https://media.example.com/AC1/foto.pdf",
	})

	assert.Contains(t, reply, "Impressão do arquivo 'foto.pdf'")
	assert.Contains(t, reply, "R$ 1,50")
	require.Len(t, store.uploads, 1)
	assert.Equal(t, "+5511999990000-foto.pdf", store.uploads[0])
}

func TestHandleMessageHelpMenu(t *testing.T) {
	gw := newFakeGateway()
	orch := newTestOrchestrator(gw, ledger.NewMemory(), &fakeStore{})

	reply := orch.HandleMessage(context.Background(), models.InboundMessage{
		SenderContact: "+5511999990000",
		RawBody:       "bom dia",
	})

	// Each distinct description exactly once, in first-seen catalog order.
	assert.Equal(t, 1, strings.Count(reply, "Impressão P&B"))
	assert.Equal(t, 1, strings.Count(reply, "Criação de Currículo"))
	assert.Equal(t, 1, strings.Count(reply, "Emissão de Certidão"))
	assert.Equal(t, 1, strings.Count(reply, "Impressão de Foto 3x4"))
	assert.Less(t,
		strings.Index(reply, "Impressão P&B"),
		strings.Index(reply, "Criação de Currículo"))

	// No intent was issued.
	assert.Equal(t, 0, gw.nextRef)
}

func TestHandleMessageAttachmentFetchFailureAbortsBilling(t *testing.T) {
	gw := newFakeGateway()
	led := ledger.NewMemory()
	store := &fakeStore{fetchErr: errors.New("media unavailable")}
	orch := newTestOrchestrator(gw, led, store)

	reply := orch.HandleMessage(context.Background(), models.InboundMessage{
		SenderContact:   "+5511999990000",
		AttachmentCount: 1,
		AttachmentURL:   "https://media.example.com/AC1/foto.pdf",
	})

	assert.Equal(t, replyFileError, reply)
	assert.Equal(t, 0, gw.nextRef)
	assert.Equal(t, 0, led.Len())
}

func TestHandleMessageUploadFailureAbortsBilling(t *testing.T) {
	gw := newFakeGateway()
	led := ledger.NewMemory()
	store := &fakeStore{uploadErr: errors.New("quota exceeded")}
	orch := newTestOrchestrator(gw, led, store)

	reply := orch.HandleMessage(context.Background(), models.InboundMessage{
		SenderContact:   "+5511999990000",
		AttachmentCount: 1,
		AttachmentURL:   "https://media.example.com/AC1/foto.pdf",
	})

	assert.Equal(t, replyFileError, reply)
	assert.Equal(t, 0, gw.nextRef)
}

func TestHandleMessageGatewayFailureIsGeneric(t *testing.T) {
	gw := newFakeGateway()
	gw.createErr = errors.New("invalid credentials: token xyz")
	led := ledger.NewMemory()
	orch := newTestOrchestrator(gw, led, &fakeStore{})

	reply := orch.HandleMessage(context.Background(), models.InboundMessage{
		SenderContact: "+5511999990000",
		RawBody:       "quero imprimir",
	})

	assert.Equal(t, replyPixError, reply)
	// Internal cause never reaches the customer.
	assert.NotContains(t, reply, "token xyz")
	assert.Equal(t, 0, led.Len())
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{150, "R$ 1,50"},
		{1500, "R$ 15,00"},
		{1000, "R$ 10,00"},
		{800, "R$ 8,00"},
		{5, "R$ 0,05"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPrice(tt.cents))
	}
}
