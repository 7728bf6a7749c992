package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/goliatone/go-cnapp-dashboard/components/dashboard"
)

// SeedDashboardInput controls bootstrap behavior. An already parsed Manifest
// wins over Path. Without either the built-in categories and widgets are
// restored.
type SeedDashboardInput struct {
	Path     string                  `json:"path"`
	Manifest *dashboard.SeedManifest `json:"-"`
}

// SeedDashboardCommand replaces the dashboard state from a seed manifest.
type SeedDashboardCommand struct {
	service   *dashboard.Service
	telemetry Telemetry
}

// NewSeedDashboardCommand wires dependencies.
func NewSeedDashboardCommand(service *dashboard.Service, telemetry Telemetry) *SeedDashboardCommand {
	return &SeedDashboardCommand{
		service:   service,
		telemetry: normalizeTelemetry(telemetry),
	}
}

var _ gocommand.Commander[SeedDashboardInput] = (*SeedDashboardCommand)(nil)

// Execute runs the bootstrap pipeline.
func (c *SeedDashboardCommand) Execute(ctx context.Context, msg SeedDashboardInput) error {
	if c.service == nil {
		return errors.New("seed command requires service")
	}
	doc := msg.Manifest
	if doc == nil && msg.Path != "" {
		var err error
		if doc, err = dashboard.ReadManifest(msg.Path); err != nil {
			return err
		}
	}
	if doc == nil {
		doc = dashboard.DefaultManifest()
	}
	if err := dashboard.SeedFromManifest(ctx, c.service, doc); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.seed", map[string]any{
		"path":       msg.Path,
		"categories": len(doc.Categories),
	})
	return nil
}
