package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/goliatone/go-cnapp-dashboard/components/dashboard"
)

// RefreshWidgetInput asks subscribers to re-render a widget, a category
// (blank Widget) or the whole page (blank Category).
type RefreshWidgetInput struct {
	Event dashboard.WidgetEvent
}

type refreshNotifier interface {
	Snapshot(ctx context.Context) (dashboard.DashboardState, error)
	NotifyWidgetUpdated(ctx context.Context, event dashboard.WidgetEvent) error
}

// RefreshWidgetCommand broadcasts a refresh stamped with the current
// revision. It never mutates the dashboard.
type RefreshWidgetCommand struct {
	service   refreshNotifier
	telemetry Telemetry
}

// NewRefreshWidgetCommand creates the command.
func NewRefreshWidgetCommand(service refreshNotifier, telemetry Telemetry) *RefreshWidgetCommand {
	return &RefreshWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshWidgetInput] = (*RefreshWidgetCommand)(nil)

// Execute validates the target against the current snapshot and notifies
// the service's refresh hooks.
func (c *RefreshWidgetCommand) Execute(ctx context.Context, msg RefreshWidgetInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	state, err := c.service.Snapshot(ctx)
	if err != nil {
		return err
	}
	event := msg.Event
	if event.Category != "" && !state.HasCategory(event.Category) {
		return &dashboard.UnknownCategoryError{Key: event.Category}
	}
	if event.Reason == "" {
		event.Reason = "refresh"
	}
	event.Revision = state.Revision()
	if err := c.service.NotifyWidgetUpdated(ctx, event); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.refresh", map[string]any{
		"category": string(event.Category),
		"widget":   event.Widget,
		"revision": event.Revision,
	})
	return nil
}
