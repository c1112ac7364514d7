package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesReceivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "messages_received_total",
		Help: "Total number of inbound customer messages",
	})

	HelpRepliesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "help_replies_total",
		Help: "Total number of messages answered with the help menu",
	})

	AttachmentUploadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attachment_uploads_total",
		Help: "Total number of attachments archived to storage",
	})

	AttachmentFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attachment_failures_total",
		Help: "Total number of failed attachment fetch/upload operations",
	}, []string{"stage"})

	PaymentIntentsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_intents_created_total",
		Help: "Total number of payment intents issued with the gateway",
	})

	PaymentIntentsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_intents_failed_total",
		Help: "Total number of failed payment intent issuances",
	}, []string{"reason"})

	PaymentsConfirmedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payments_confirmed_total",
		Help: "Total number of reconciled approved payments",
	})

	OrphanApprovalsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orphan_approvals_total",
		Help: "Total number of approved payments with no matching pending order",
	})

	WebhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_total",
		Help: "Total number of gateway webhook events by outcome",
	}, []string{"outcome"})

	PendingOrdersEvictedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pending_orders_evicted_total",
		Help: "Total number of pending orders dropped by the expiry sweeper",
	})

	GatewayRequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_request_latency_seconds",
		Help:    "Latency of payment gateway calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
