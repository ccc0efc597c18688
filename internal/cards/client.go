// Package cards fetches the caller's card credential from the card
// service. The credential arrives as an envelope-protected payload and is
// decrypted in-process; it is never persisted.
package cards

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tibib/internal/envelope"
)

// Card is a decrypted card credential.
type Card struct {
	Number string
}

// Masked returns the card number with all but the last four digits
// hidden, for confirmation pages and logs.
func (c Card) Masked() string {
	digits := strings.ReplaceAll(c.Number, " ", "")
	if len(digits) <= 4 {
		return digits
	}
	return "**** **** **** " + digits[len(digits)-4:]
}

// Fetcher retrieves the caller's card credential.
type Fetcher interface {
	Fetch(ctx context.Context, token string) (*Card, error)
}

// Client fetches cards over HTTP and decrypts them with the envelope.
type Client struct {
	baseURL    string
	httpClient *http.Client
	envelope   *envelope.Envelope
}

// NewClient creates a card service client.
func NewClient(baseURL string, httpClient *http.Client, env *envelope.Envelope) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		envelope:   env,
	}
}

// Fetch calls the get-card endpoint with the caller's bearer credential
// and decrypts the returned payload. Any non-200 response or a failed
// signature verification is an error; the flows surface both as a card
// retrieval failure.
func (c *Client) Fetch(ctx context.Context, token string) (*Card, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/get-card", nil)
	if err != nil {
		return nil, fmt.Errorf("creating get-card request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching card: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching card: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		CreditCard string `json:"credit_card"`
		Signature  string `json:"signature"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding card response: %w", err)
	}

	number, err := c.envelope.DecryptAndVerify(payload.CreditCard, payload.Signature)
	if err != nil {
		return nil, fmt.Errorf("verifying card payload: %w", err)
	}

	return &Card{Number: string(number)}, nil
}
