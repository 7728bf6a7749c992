package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/goliatone/go-cnapp-dashboard/components/dashboard"
)

// AddWidgetInput carries the add-widget form (or API body).
type AddWidgetInput struct {
	Category dashboard.CategoryKey `json:"category"`
	Name     string                `json:"name"`
	Payload  dashboard.WidgetEntry `json:"payload"`
}

type addService interface {
	AddWidget(ctx context.Context, req dashboard.AddWidgetRequest) (dashboard.DashboardState, error)
}

// AddWidgetCommand translates incoming requests into service calls and emits
// telemetry so operators can observe widget activity.
type AddWidgetCommand struct {
	service   addService
	telemetry Telemetry
}

// NewAddWidgetCommand creates a command instance.
func NewAddWidgetCommand(service addService, telemetry Telemetry) *AddWidgetCommand {
	return &AddWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AddWidgetInput] = (*AddWidgetCommand)(nil)

// Execute delegates to the dashboard service.
func (c *AddWidgetCommand) Execute(ctx context.Context, msg AddWidgetInput) error {
	if c.service == nil {
		return errors.New("add command requires service")
	}
	state, err := c.service.AddWidget(ctx, dashboard.AddWidgetRequest{
		Category: msg.Category,
		Name:     msg.Name,
		Payload:  msg.Payload,
	})
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.add_widget", map[string]any{
		"category": string(msg.Category),
		"widget":   msg.Name,
		"revision": state.Revision(),
	})
	return nil
}
