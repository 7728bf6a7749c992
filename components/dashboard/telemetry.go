package dashboard

import (
	"context"
	"log/slog"
	"sort"
	"strings"
)

// Telemetry records dashboard events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// SlogTelemetry writes telemetry events as structured log records. Events
// whose name ends in "error" or "violation" are logged at error level.
type SlogTelemetry struct {
	Logger *slog.Logger
}

// NewSlogTelemetry wraps logger, falling back to slog.Default.
func NewSlogTelemetry(logger *slog.Logger) *SlogTelemetry {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogTelemetry{Logger: logger}
}

// Record implements Telemetry.
func (t *SlogTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	if t == nil || t.Logger == nil {
		return
	}
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	attrs := make([]slog.Attr, 0, len(keys))
	for _, key := range keys {
		attrs = append(attrs, slog.Any(key, payload[key]))
	}
	level := slog.LevelInfo
	if strings.HasSuffix(event, "error") || strings.HasSuffix(event, "violation") {
		level = slog.LevelError
	}
	t.Logger.LogAttrs(ctx, level, event, attrs...)
}
