package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const httpTimeout = 15 * time.Second

// HTTPConfirmer confirms payment intents against the provider's REST API.
// If BaseURL is empty every confirmation fails with an api_error, so a
// misconfigured deployment never publishes unpaid listings.
type HTTPConfirmer struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

// NewHTTPConfirmer constructs a confirmer with a shared HTTP client.
func NewHTTPConfirmer(baseURL, apiKey string) *HTTPConfirmer {
	return &HTTPConfirmer{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

type confirmRequest struct {
	ReturnURL string `json:"return_url"`
}

// confirmResponse mirrors the provider's payment intent / error envelope.
type confirmResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// ConfirmPayment posts the confirmation. Only an explicit "succeeded"
// status counts as paid. Provider-reported failures and any other status
// come back as *PaymentError; transport failures are plain errors.
func (c *HTTPConfirmer) ConfirmPayment(ctx context.Context, intentID, returnURL string) error {
	if c.BaseURL == "" {
		log.Println("[checkout] PAYMENT_API_URL not set, refusing to confirm")
		return &PaymentError{Type: "api_error", Message: "payment provider not configured"}
	}

	endpoint := fmt.Sprintf("%s/payment_intents/%s/confirm", c.BaseURL, url.PathEscape(intentID))
	payload, err := json.Marshal(confirmRequest{ReturnURL: returnURL})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http POST: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	var out confirmResponse
	if len(body) > 0 {
		if err := json.Unmarshal(body, &out); err != nil && resp.StatusCode < 300 {
			return fmt.Errorf("json unmarshal: %w", err)
		}
	}

	if out.Error != nil {
		return &PaymentError{Type: out.Error.Type, Message: out.Error.Message}
	}
	if resp.StatusCode >= 300 {
		return &PaymentError{Type: "api_error", Message: fmt.Sprintf("provider returned %d", resp.StatusCode)}
	}
	switch out.Status {
	case "succeeded":
		return nil
	case "":
		return &PaymentError{Type: "api_error", Message: "provider response carries no payment status"}
	default:
		// processing is not paid yet; the buyer retries once it settles
		return &PaymentError{Type: "api_error", Message: "payment intent status " + out.Status}
	}
}
