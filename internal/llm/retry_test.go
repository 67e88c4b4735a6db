package llm

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

func init() {
	// Use a tiny base delay so tests finish quickly.
	RetryBaseDelay = time.Millisecond
}

func transientErr() error {
	return &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "rate limited"}
}

func permanentErr() error {
	return &openai.APIError{HTTPStatusCode: http.StatusBadRequest, Message: "bad request"}
}

func TestCallWithRetryImmediateSuccess(t *testing.T) {
	calls := 0
	err := CallWithRetry(context.Background(), 3, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("CallWithRetry: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestCallWithRetryTransientThenSuccess(t *testing.T) {
	calls := 0
	err := CallWithRetry(context.Background(), 3, func() error {
		calls++
		if calls < 3 {
			return transientErr()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("CallWithRetry: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestCallWithRetryExhausted(t *testing.T) {
	calls := 0
	err := CallWithRetry(context.Background(), 3, func() error {
		calls++
		return transientErr()
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestCallWithRetryPermanentStopsImmediately(t *testing.T) {
	calls := 0
	err := CallWithRetry(context.Background(), 5, func() error {
		calls++
		return fmt.Errorf("parsing response: %w", permanentErr())
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (permanent errors must not retry)", calls)
	}
}

func TestCallWithRetryDefaultAttempts(t *testing.T) {
	calls := 0
	_ = CallWithRetry(context.Background(), 0, func() error {
		calls++
		return transientErr()
	})
	if calls != defaultMaxAttempts {
		t.Errorf("calls = %d, want %d", calls, defaultMaxAttempts)
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limit", &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}, true},
		{"server error", &openai.APIError{HTTPStatusCode: http.StatusInternalServerError}, true},
		{"bad gateway", &openai.APIError{HTTPStatusCode: http.StatusBadGateway}, true},
		{"unauthorized", &openai.APIError{HTTPStatusCode: http.StatusUnauthorized}, false},
		{"bad request", &openai.APIError{HTTPStatusCode: http.StatusBadRequest}, false},
		{"wrapped API error", fmt.Errorf("chat: %w", &openai.APIError{HTTPStatusCode: http.StatusServiceUnavailable}), true},
		{"request error", &openai.RequestError{HTTPStatusCode: http.StatusBadGateway}, true},
		{"deadline", context.DeadlineExceeded, true},
		{"plain error", fmt.Errorf("no JSON object in model output"), false},
		{"nil-ish parse error", fmt.Errorf("empty model output"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
