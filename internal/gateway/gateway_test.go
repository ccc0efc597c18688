package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// stubSubmitter fails a configured number of times before succeeding.
type stubSubmitter struct {
	calls    atomic.Int64
	failures int
	err      error
}

func (s *stubSubmitter) Submit(ctx context.Context, token string, req ChargeRequest) error {
	n := s.calls.Add(1)
	if s.failures < 0 || n <= int64(s.failures) {
		return s.err
	}
	return nil
}

func TestRetrySubmitterSuccessFirstAttempt(t *testing.T) {
	stub := &stubSubmitter{failures: 0}
	r := NewRetrySubmitter(stub, 5, time.Second)

	if err := r.Submit(context.Background(), "token", ChargeRequest{}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if got := stub.calls.Load(); got != 1 {
		t.Errorf("expected exactly 1 gateway call, got %d", got)
	}
}

func TestRetrySubmitterRecoversWithinBudget(t *testing.T) {
	stub := &stubSubmitter{failures: 3, err: &OutcomeError{StatusCode: http.StatusPaymentRequired, Message: "Payment required"}}
	r := NewRetrySubmitter(stub, 5, time.Second)

	if err := r.Submit(context.Background(), "token", ChargeRequest{}); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if got := stub.calls.Load(); got != 4 {
		t.Errorf("expected 4 gateway calls, got %d", got)
	}
}

func TestRetrySubmitterExhaustsAttemptCap(t *testing.T) {
	outcome := &OutcomeError{StatusCode: http.StatusPaymentRequired, Message: "Payment required"}
	stub := &stubSubmitter{failures: -1, err: outcome}
	r := NewRetrySubmitter(stub, 5, time.Second)

	err := r.Submit(context.Background(), "token", ChargeRequest{})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if got := stub.calls.Load(); got != 5 {
		t.Errorf("expected exactly 5 gateway calls, got %d", got)
	}

	var oe *OutcomeError
	if !errors.As(err, &oe) {
		t.Fatalf("expected OutcomeError, got %T", err)
	}
	if oe.Message != "Payment required" {
		t.Errorf("expected last outcome's message, got %q", oe.Message)
	}
}

func TestRetrySubmitterStopsWhenCallerGivesUp(t *testing.T) {
	stub := &stubSubmitter{failures: -1, err: &OutcomeError{StatusCode: http.StatusInternalServerError, Message: "Payment gateway error"}}
	r := NewRetrySubmitter(stub, 5, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := r.Submit(ctx, "token", ChargeRequest{}); err == nil {
		t.Fatal("expected error with canceled context")
	}
	if got := stub.calls.Load(); got != 1 {
		t.Errorf("expected 1 gateway call before bailing out, got %d", got)
	}
}

func TestClientClassifiesOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    bool
		wantStatus int
		wantMsg    string
	}{
		{"success", http.StatusOK, `{"message":"Payment successful"}`, false, 0, ""},
		{"payment_required", http.StatusPaymentRequired, `{"error":"Payment required"}`, true, http.StatusPaymentRequired, "Payment required"},
		{"server_error", http.StatusInternalServerError, `{"error":"Payment gateway error"}`, true, http.StatusInternalServerError, "Payment gateway error"},
		{"opaque_error_body", http.StatusBadGateway, `not json`, true, http.StatusBadGateway, "Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/charge" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer token123" {
					t.Errorf("unexpected Authorization header %q", got)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, nil)
			err := client.Submit(context.Background(), "token123", ChargeRequest{CardNumber: "4111111111111111"})

			if !tt.wantErr {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				return
			}

			var oe *OutcomeError
			if !errors.As(err, &oe) {
				t.Fatalf("expected OutcomeError, got %T: %v", err, err)
			}
			if oe.StatusCode != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, oe.StatusCode)
			}
			if oe.Message != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, oe.Message)
			}
		})
	}
}

func TestSimulatorOutcomeWeights(t *testing.T) {
	tests := []struct {
		roll       float64
		wantStatus int
	}{
		{0.0, http.StatusOK},
		{0.5, http.StatusOK},
		{0.8999, http.StatusOK},
		{0.90, http.StatusPaymentRequired},
		{0.9499, http.StatusPaymentRequired},
		{0.95, http.StatusInternalServerError},
		{0.9999, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if status, _ := outcome(tt.roll); status != tt.wantStatus {
			t.Errorf("outcome(%v) = %d, want %d", tt.roll, status, tt.wantStatus)
		}
	}
}
