// Package channel adapts the Twilio WhatsApp transport: TwiML replies for
// inbound webhooks and REST message sends for outbound notifications.
package channel

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/util"
)

const addressPrefix = "whatsapp:"

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// RenderReply wraps a reply body in the TwiML the transport expects back
// from the inbound message webhook.
func RenderReply(body string) []byte {
	out, err := xml.Marshal(twimlResponse{Message: body})
	if err != nil {
		// Marshal of a plain string element cannot fail; keep the reply
		// flowing regardless.
		return []byte("<Response></Response>")
	}
	return append([]byte(xml.Header), out...)
}

// StripAddressPrefix converts a channel address to the bare contact id.
func StripAddressPrefix(address string) string {
	return strings.TrimPrefix(address, addressPrefix)
}

// Sender delivers outbound text notifications through the Twilio REST API.
type Sender struct {
	httpClient *http.Client
	baseURL    string
	accountSID string
	authToken  string
	from       string
	logger     *zap.Logger
}

// NewSender creates a new outbound message sender.
func NewSender(baseURL, accountSID, authToken, from string, timeout time.Duration) *Sender {
	return &Sender{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		logger:     util.GetLogger(),
	}
}

// SendText sends a plain text message to a customer contact.
func (s *Sender) SendText(ctx context.Context, to, body string) error {
	form := url.Values{}
	form.Set("To", addressPrefix+to)
	form.Set("From", addressPrefix+s.from)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, s.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.accountSID, s.authToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("message send rejected: status=%d", resp.StatusCode)
	}

	s.logger.Debug("Notification delivered", zap.String("to", to))
	return nil
}
