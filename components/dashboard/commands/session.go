package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/goliatone/go-cnapp-dashboard/components/dashboard"
)

// SessionEventInput delivers a UI event to a stored session.
type SessionEventInput struct {
	SessionID string          `json:"session_id"`
	Event     dashboard.Event `json:"event"`
}

type sessionService interface {
	Dispatch(ctx context.Context, sessionID string, event dashboard.Event) (dashboard.Session, error)
}

// SessionEventCommand drives the add-widget drawer state machine.
type SessionEventCommand struct {
	service   sessionService
	telemetry Telemetry
}

// NewSessionEventCommand creates the command.
func NewSessionEventCommand(service sessionService, telemetry Telemetry) *SessionEventCommand {
	return &SessionEventCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SessionEventInput] = (*SessionEventCommand)(nil)

// Execute applies the event.
func (c *SessionEventCommand) Execute(ctx context.Context, msg SessionEventInput) error {
	if c.service == nil {
		return errors.New("session command requires service")
	}
	if msg.SessionID == "" {
		return errors.New("session command requires session id")
	}
	session, err := c.service.Dispatch(ctx, msg.SessionID, msg.Event)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.session_event", map[string]any{
		"session": msg.SessionID,
		"event":   string(msg.Event.Type),
		"phase":   string(session.Phase),
	})
	return nil
}
