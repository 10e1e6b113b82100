package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// CollaboratorError reports that an external LLM service was unreachable,
// timed out, or returned output that could not be used.
type CollaboratorError struct {
	Provider string
	Op       string // "classify", "generate", "chat"
	Err      error
}

func (e *CollaboratorError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s via %s failed: %v", e.Op, e.Provider, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// AsCollaboratorError wraps err unless it already is a CollaboratorError.
func AsCollaboratorError(provider, op string, err error) error {
	if err == nil {
		return nil
	}
	var cErr *CollaboratorError
	if errors.As(err, &cErr) {
		return err
	}
	return &CollaboratorError{Provider: provider, Op: op, Err: err}
}

// RateLimitError is returned when a provider answers 429.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
	StatusCode int
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %s)", e.Message, e.RetryAfter)
	}
	return e.Message
}

// IsRateLimitError extracts a RateLimitError from err's chain.
func IsRateLimitError(err error) (*RateLimitError, bool) {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle, true
	}
	return nil, false
}

// StatusError is a non-429 HTTP failure from a provider.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("provider error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("provider error (status %d): %s", e.StatusCode, e.Message)
}

func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := time.Parse(time.RFC1123, v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// FriendlyMessage turns a collaborator failure into a short message suitable
// for showing to an end user.
func FriendlyMessage(err error) string {
	if err == nil {
		return ""
	}
	if _, ok := IsRateLimitError(err); ok {
		return "Rate limit exceeded. Please wait a moment and try again."
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timed out. Please try again."
	}
	var sErr *StatusError
	if errors.As(err, &sErr) {
		switch sErr.StatusCode {
		case 401, 403:
			return "Invalid API key. Please check your configuration."
		case 404:
			return "Model not available. Please try again later."
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "Request timed out. Please try again."
		}
		return "Network error. Please check your internet connection."
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key") || strings.Contains(msg, "api_key"):
		return "Invalid API key. Please check your configuration."
	case strings.Contains(msg, "rate limit"):
		return "Rate limit exceeded. Please wait a moment and try again."
	case strings.Contains(msg, "network") || strings.Contains(msg, "connection"):
		return "Network error. Please check your internet connection."
	case strings.Contains(msg, "model"):
		return "Model not available. Please try again later."
	case strings.Contains(msg, "timeout"):
		return "Request timed out. Please try again."
	default:
		return "An unexpected error occurred. Please try again."
	}
}
