package service

import (
	"context"

	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/models"
)

// PaymentGateway issues payment intents and answers authoritative status
// queries.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountCents int64, description string) (*models.PaymentIntent, error)
	GetStatus(ctx context.Context, gatewayRef string) (string, error)
}

// Notifier delivers outbound text messages to a customer contact.
type Notifier interface {
	SendText(ctx context.Context, to, body string) error
}

// ObjectStore fetches attachment binaries and archives them.
type ObjectStore interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	Upload(ctx context.Context, name string, data []byte) error
}
