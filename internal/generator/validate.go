package generator

import (
	"errors"
	"log/slog"
	"strings"
)

var (
	ErrEmptyResponse    = errors.New("LLM response is empty")
	ErrResponseTooShort = errors.New("LLM response too short")
)

// MinResponseLength is the shortest trimmed reply accepted as a post.
const MinResponseLength = 10

var refusalIndicators = []string{
	"i cannot",
	"i can't",
	"error:",
	"sorry, i",
	"i apologize",
}

// ValidateResponse rejects empty and too-short replies. Replies that look
// like refusals are only logged.
func ValidateResponse(content string, logger *slog.Logger) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return ErrEmptyResponse
	}
	lower := strings.ToLower(content)
	for _, indicator := range refusalIndicators {
		if strings.Contains(lower, indicator) {
			if logger != nil {
				logger.Warn("possible refusal in LLM response", "indicator", indicator)
			}
		}
	}
	if len([]rune(trimmed)) < MinResponseLength {
		return ErrResponseTooShort
	}
	return nil
}
