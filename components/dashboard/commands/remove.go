package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/goliatone/go-cnapp-dashboard/components/dashboard"
)

// RemoveWidgetInput identifies the widget to remove.
type RemoveWidgetInput struct {
	Category dashboard.CategoryKey `json:"category"`
	Name     string                `json:"name"`
}

type removeService interface {
	RemoveWidget(ctx context.Context, req dashboard.RemoveWidgetRequest) (dashboard.DashboardState, error)
}

// RemoveWidgetCommand wraps Service.RemoveWidget.
type RemoveWidgetCommand struct {
	service   removeService
	telemetry Telemetry
}

// NewRemoveWidgetCommand builds a command instance.
func NewRemoveWidgetCommand(service removeService, telemetry Telemetry) *RemoveWidgetCommand {
	return &RemoveWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RemoveWidgetInput] = (*RemoveWidgetCommand)(nil)

// Execute removes the widget. Unknown widget names are not an error.
func (c *RemoveWidgetCommand) Execute(ctx context.Context, msg RemoveWidgetInput) error {
	if c.service == nil {
		return errors.New("remove command requires service")
	}
	state, err := c.service.RemoveWidget(ctx, dashboard.RemoveWidgetRequest{
		Category: msg.Category,
		Name:     msg.Name,
	})
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.remove_widget", map[string]any{
		"category": string(msg.Category),
		"widget":   msg.Name,
		"revision": state.Revision(),
	})
	return nil
}
