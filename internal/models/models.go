package models

import "time"

// Service represents a priced catalog entry triggered by a keyword.
type Service struct {
	Key          string `json:"key"`
	Description  string `json:"description"`
	PriceCents   int64  `json:"price_cents"`
	Instructions string `json:"instructions"`
}

// InboundMessage represents a single customer contact from the chat channel.
type InboundMessage struct {
	SenderContact   string `json:"sender_contact"`
	RawBody         string `json:"raw_body"`
	AttachmentCount int    `json:"attachment_count"`
	AttachmentURL   string `json:"attachment_url,omitempty"`
}

// PaymentIntent is a single-use charge created with the payment gateway.
// GatewayRef is the gateway-assigned reconciliation key; PayerToken is the
// copyable Pix code the customer pays with.
type PaymentIntent struct {
	GatewayRef string `json:"gateway_ref"`
	PayerToken string `json:"payer_token"`
}

// PendingOrder tracks an issued-but-unconfirmed payment intent.
type PendingOrder struct {
	Contact   string    `json:"contact"`
	CreatedAt time.Time `json:"created_at"`
}

// PaymentEvent is an asynchronous notification pushed by the gateway.
// The carried metadata is untrusted: the authoritative status must be
// re-queried before acting.
type PaymentEvent struct {
	Type       string `json:"type"`
	GatewayRef string `json:"gateway_ref"`
}

// EventTypePayment is the only gateway event type the reconciler acts on.
const EventTypePayment = "payment"

// Payment statuses as reported by the gateway status query
const (
	PaymentStatusPending  = "pending"
	PaymentStatusApproved = "approved"
	PaymentStatusRejected = "rejected"
)
