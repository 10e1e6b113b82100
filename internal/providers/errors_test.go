package providers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestCollaboratorError(t *testing.T) {
	base := errors.New("connection refused")
	err := AsCollaboratorError("groq", "classify", base)

	var cErr *CollaboratorError
	if !errors.As(err, &cErr) {
		t.Fatalf("expected CollaboratorError, got %T", err)
	}
	if !errors.Is(err, base) {
		t.Error("expected wrapped error to be reachable")
	}
	if got := err.Error(); got != "classify via groq failed: connection refused" {
		t.Errorf("unexpected message %q", got)
	}

	again := AsCollaboratorError("other", "generate", err)
	if again != err {
		t.Error("expected existing CollaboratorError to pass through unchanged")
	}
	if AsCollaboratorError("groq", "chat", nil) != nil {
		t.Error("expected nil for nil error")
	}
}

func TestFriendlyMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"rate limit", &RateLimitError{Message: "slow down"}, "Rate limit exceeded. Please wait a moment and try again."},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), "Request timed out. Please try again."},
		{"unauthorized", &StatusError{StatusCode: 401}, "Invalid API key. Please check your configuration."},
		{"model missing", &StatusError{StatusCode: 404, Message: "model not found"}, "Model not available. Please try again later."},
		{"api key text", errors.New("missing API key"), "Invalid API key. Please check your configuration."},
		{"network text", errors.New("network unreachable"), "Network error. Please check your internet connection."},
		{"other", errors.New("boom"), "An unexpected error occurred. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FriendlyMessage(tt.err); got != tt.want {
				t.Errorf("FriendlyMessage() = %q, want %q", got, tt.want)
			}
		})
	}
	if FriendlyMessage(nil) != "" {
		t.Error("expected empty message for nil error")
	}
}

func TestParseRetryAfter(t *testing.T) {
	if got := parseRetryAfter("5"); got != 5*time.Second {
		t.Errorf("expected 5s, got %v", got)
	}
	if got := parseRetryAfter(""); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
	if got := parseRetryAfter("soon"); got != 0 {
		t.Errorf("expected 0 for garbage, got %v", got)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(60)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := rl.Wait(ctx); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}
	if got := rl.Status().TotalConsumed; got != 3 {
		t.Errorf("expected 3 consumed, got %d", got)
	}

	rl.Record429(time.Hour)
	cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := rl.Wait(cctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected paused limiter to block until deadline, got %v", err)
	}
}
