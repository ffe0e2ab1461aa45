package application

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/example/slot-availability/internal/logging"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestServiceLoggerPrefersContextLogger(t *testing.T) {
	t.Parallel()

	var ctxBuf, baseBuf bytes.Buffer
	ctxLogger := slog.New(slog.NewJSONHandler(&ctxBuf, nil))
	base := slog.New(slog.NewJSONHandler(&baseBuf, nil))

	ctx := logging.ContextWithLogger(context.Background(), ctxLogger)
	serviceLogger(ctx, base, "AvailabilityService", "GetAvailabilities", "request_id", "req-1").Info("hello")

	if baseBuf.Len() != 0 {
		t.Fatalf("expected base logger to stay unused")
	}

	var entry map[string]any
	if err := json.Unmarshal(ctxBuf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log entry: %v", err)
	}
	if entry["service"] != "AvailabilityService" || entry["operation"] != "GetAvailabilities" || entry["request_id"] != "req-1" {
		t.Fatalf("unexpected log attributes: %v", entry)
	}
}
