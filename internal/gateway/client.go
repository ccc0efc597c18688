// Package gateway talks to the payment gateway collaborator. The gateway
// is stochastic: it may accept a payment, demand payment (402), or fail
// outright (5xx). Callers submit through a bounded-retry wrapper.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ChargeRequest is the envelope-protected payload submitted to the
// gateway: the card number in the clear (it just came out of the card
// service envelope), the nominal as OAEP ciphertext, and the PSS
// signature over that ciphertext.
type ChargeRequest struct {
	CardNumber string `json:"credit_card"`
	Nominal    string `json:"nominal"`
	Signature  string `json:"signature"`
}

// OutcomeError is a non-success gateway outcome. Every non-2xx response
// is retryable up to the attempt cap; the flows make no distinction
// between 402 and 5xx beyond the message they surface.
type OutcomeError struct {
	StatusCode int
	Message    string
}

func (e *OutcomeError) Error() string {
	return fmt.Sprintf("gateway returned %d: %s", e.StatusCode, e.Message)
}

// Submitter submits a single payment attempt.
type Submitter interface {
	Submit(ctx context.Context, token string, req ChargeRequest) error
}

// Client is the HTTP Submitter for the real (or simulated) gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a gateway client. A nil httpClient gets a default
// with a 30s transport-level timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Submit posts one charge attempt. A nil return means the gateway
// accepted the payment.
func (c *Client) Submit(ctx context.Context, token string, req ChargeRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshaling charge request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/charge", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating charge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("submitting payment: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	return &OutcomeError{
		StatusCode: resp.StatusCode,
		Message:    readErrorMessage(resp.Body, resp.StatusCode),
	}
}

// readErrorMessage extracts {"error": "..."} from a gateway error body,
// falling back to the HTTP status text.
func readErrorMessage(body io.Reader, statusCode int) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return http.StatusText(statusCode)
}
