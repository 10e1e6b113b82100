package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	defer func(prev string) { logLevel = prev }(logLevel)

	var buf bytes.Buffer
	logLevel = "warn"
	logger, err := newLogger(&buf)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("unexpected log output %q", buf.String())
	}

	logLevel = "loud"
	if _, err := newLogger(&buf); err == nil {
		t.Error("newLogger() accepted an unknown level")
	}
}
