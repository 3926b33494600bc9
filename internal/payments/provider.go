package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// ErrDeclined is returned when the gateway rejects the charge.
var ErrDeclined = errors.New("payments: declined by provider")

// Provider charges a wallet token. The token comes from the client-side SDK
// and is forwarded verbatim; interpreting it is the gateway's job.
type Provider interface {
	ProcessPayment(ctx context.Context, token string, amount int, currency string) error
}

// GatewayClient talks to the card gateway over HTTP. Transient failures are
// retried with backoff; every attempt is bounded by the request context.
type GatewayClient struct {
	baseURL string
	client  *retryablehttp.Client
}

func NewGatewayClient(baseURL string, timeout time.Duration) *GatewayClient {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.HTTPClient.Timeout = timeout
	client.Logger = nil
	return &GatewayClient{baseURL: baseURL, client: client}
}

type chargeRequest struct {
	Token    string `json:"token"`
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
}

func (g *GatewayClient) ProcessPayment(ctx context.Context, token string, amount int, currency string) error {
	if g.baseURL == "" {
		return fmt.Errorf("payments: gateway not configured")
	}

	body, err := json.Marshal(chargeRequest{Token: token, Amount: amount, Currency: currency})
	if err != nil {
		return fmt.Errorf("payments: encode charge: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/charges", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("payments: build charge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("payments: charge request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusUnprocessableEntity:
		return ErrDeclined
	default:
		return fmt.Errorf("payments: gateway returned status %d", resp.StatusCode)
	}
}
