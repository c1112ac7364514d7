// Package gateway implements the Mercado Pago payment client: single-use
// Pix charge creation and authoritative status queries.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/models"
	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/util"
)

// ErrMissingCredentials is returned when no access token is configured.
var ErrMissingCredentials = errors.New("payment gateway access token not configured")

// Client talks to the payment gateway over HTTP. One gateway call per
// issuance request; retries are left to the gateway's own webhook redelivery.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	notifyURL   string
	logger      *zap.Logger
}

// NewClient creates a gateway client. publicHostname, when non-empty, is used
// to build the payment-event callback URL; otherwise no callback is sent.
func NewClient(baseURL, accessToken, publicHostname string, timeout time.Duration) *Client {
	notifyURL := ""
	if publicHostname != "" {
		notifyURL = fmt.Sprintf("https://%s/pix-webhook", publicHostname)
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		accessToken: accessToken,
		notifyURL:   notifyURL,
		logger:      util.GetLogger(),
	}
}

type createPaymentRequest struct {
	TransactionAmount float64 `json:"transaction_amount"`
	Description       string  `json:"description"`
	PaymentMethodID   string  `json:"payment_method_id"`
	NotificationURL   string  `json:"notification_url,omitempty"`
	ExternalReference string  `json:"external_reference"`
}

type paymentResponse struct {
	ID                 json.Number `json:"id"`
	Status             string      `json:"status"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode string `json:"qr_code"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

// CreateIntent issues a single-use Pix charge. A fresh external reference is
// generated per call so duplicate submissions can be deduplicated gateway-side.
func (c *Client) CreateIntent(ctx context.Context, amountCents int64, description string) (*models.PaymentIntent, error) {
	ctx, span := util.StartSpan(ctx, "Gateway.CreateIntent")
	defer span.End()

	if c.accessToken == "" {
		return nil, ErrMissingCredentials
	}

	start := time.Now()
	defer func() {
		util.GatewayRequestLatency.WithLabelValues("create_intent").Observe(time.Since(start).Seconds())
	}()

	externalRef := uuid.New().String()
	reqBody := createPaymentRequest{
		TransactionAmount: float64(amountCents) / 100,
		Description:       description,
		PaymentMethodID:   "pix",
		NotificationURL:   c.notifyURL,
		ExternalReference: externalRef,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payments", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("payment rejected by gateway: status=%d body=%s", resp.StatusCode, body)
	}

	var payment paymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return nil, fmt.Errorf("failed to decode payment response: %w", err)
	}

	if payment.PointOfInteraction.TransactionData.QRCode == "" {
		return nil, fmt.Errorf("payment response missing payer token")
	}

	c.logger.Info("Payment intent created",
		zap.String("gateway_ref", payment.ID.String()),
		zap.String("external_reference", externalRef))

	return &models.PaymentIntent{
		GatewayRef: payment.ID.String(),
		PayerToken: payment.PointOfInteraction.TransactionData.QRCode,
	}, nil
}

// GetStatus queries the authoritative status of a payment. Webhook payloads
// are never trusted to carry the final status; callers act on this value only.
func (c *Client) GetStatus(ctx context.Context, gatewayRef string) (string, error) {
	ctx, span := util.StartSpan(ctx, "Gateway.GetStatus")
	defer span.End()

	if c.accessToken == "" {
		return "", ErrMissingCredentials
	}

	start := time.Now()
	defer func() {
		util.GatewayRequestLatency.WithLabelValues("get_status").Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/payments/"+gatewayRef, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("status query failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status query rejected: status=%d", resp.StatusCode)
	}

	var payment paymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return "", fmt.Errorf("failed to decode status response: %w", err)
	}

	return payment.Status, nil
}
