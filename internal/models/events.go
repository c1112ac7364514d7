package models

import "time"

// Event types
const (
	EventTypeOrderPending     = "ORDER_PENDING"
	EventTypePaymentConfirmed = "PAYMENT_CONFIRMED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPendingEvent published when a payment intent is issued and registered
type OrderPendingEvent struct {
	BaseEvent
	GatewayRef  string `json:"gateway_ref"`
	Contact     string `json:"contact"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
}

// PaymentConfirmedEvent published when an approved payment is reconciled
type PaymentConfirmedEvent struct {
	BaseEvent
	GatewayRef string `json:"gateway_ref"`
	Contact    string `json:"contact"`
}
