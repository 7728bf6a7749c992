package commands

import (
	"context"

	dashboard "github.com/goliatone/go-cnapp-dashboard/components/dashboard"
)

// Telemetry receives "dashboard.command.*" events. It is the same sink the
// service records to, so one SlogTelemetry can serve both.
type Telemetry = dashboard.Telemetry

var _ Telemetry = (*dashboard.SlogTelemetry)(nil)

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}
