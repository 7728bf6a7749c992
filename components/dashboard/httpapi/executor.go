package httpapi

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-cnapp-dashboard/components/dashboard"
	"github.com/goliatone/go-cnapp-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-cnapp-dashboard/components/dashboard/queries"
)

// Executor is the transport facing facade over dashboard commands and
// queries. Both the net/http handlers and the go-router adapter use it.
type Executor interface {
	AddWidget(ctx context.Context, input commands.AddWidgetInput) error
	RemoveWidget(ctx context.Context, input commands.RemoveWidgetInput) error
	Refresh(ctx context.Context, input commands.RefreshWidgetInput) error
	SessionEvent(ctx context.Context, input commands.SessionEventInput) error
	Layout(ctx context.Context, req dashboard.LayoutRequest) (dashboard.Layout, error)
	Widgets(ctx context.Context, req dashboard.FilterRequest) ([]dashboard.WidgetItem, error)
	NewSession(ctx context.Context) (dashboard.Session, error)
	Session(ctx context.Context, input queries.SessionInput) (queries.SessionView, error)
}

type sessionCreator interface {
	NewSession(ctx context.Context) (dashboard.Session, error)
}

// CommandExecutor adapts go-command commanders and queriers to Executor.
type CommandExecutor struct {
	AddCommand     gocommand.Commander[commands.AddWidgetInput]
	RemoveCommand  gocommand.Commander[commands.RemoveWidgetInput]
	RefreshCommand gocommand.Commander[commands.RefreshWidgetInput]
	SessionCommand gocommand.Commander[commands.SessionEventInput]
	LayoutQuery    gocommand.Querier[dashboard.LayoutRequest, dashboard.Layout]
	WidgetsQuery   gocommand.Querier[dashboard.FilterRequest, []dashboard.WidgetItem]
	SessionQuery   gocommand.Querier[queries.SessionInput, queries.SessionView]
	Sessions       sessionCreator
}

var _ Executor = (*CommandExecutor)(nil)

var errNotConfigured = errors.New("httpapi: operation not configured")

// NewCommandExecutor wires every command and query against the service.
func NewCommandExecutor(service *dashboard.Service, telemetry commands.Telemetry) *CommandExecutor {
	return &CommandExecutor{
		AddCommand:     commands.NewAddWidgetCommand(service, telemetry),
		RemoveCommand:  commands.NewRemoveWidgetCommand(service, telemetry),
		RefreshCommand: commands.NewRefreshWidgetCommand(service, telemetry),
		SessionCommand: commands.NewSessionEventCommand(service, telemetry),
		LayoutQuery:    queries.NewLayoutQuery(service),
		WidgetsQuery:   queries.NewFilteredWidgetsQuery(service),
		SessionQuery:   queries.NewSessionQuery(service),
		Sessions:       service,
	}
}

func (e *CommandExecutor) AddWidget(ctx context.Context, input commands.AddWidgetInput) error {
	if e.AddCommand == nil {
		return errNotConfigured
	}
	return e.AddCommand.Execute(ctx, input)
}

func (e *CommandExecutor) RemoveWidget(ctx context.Context, input commands.RemoveWidgetInput) error {
	if e.RemoveCommand == nil {
		return errNotConfigured
	}
	return e.RemoveCommand.Execute(ctx, input)
}

func (e *CommandExecutor) Refresh(ctx context.Context, input commands.RefreshWidgetInput) error {
	if e.RefreshCommand == nil {
		return errNotConfigured
	}
	return e.RefreshCommand.Execute(ctx, input)
}

func (e *CommandExecutor) SessionEvent(ctx context.Context, input commands.SessionEventInput) error {
	if e.SessionCommand == nil {
		return errNotConfigured
	}
	return e.SessionCommand.Execute(ctx, input)
}

func (e *CommandExecutor) Layout(ctx context.Context, req dashboard.LayoutRequest) (dashboard.Layout, error) {
	if e.LayoutQuery == nil {
		return dashboard.Layout{}, errNotConfigured
	}
	return e.LayoutQuery.Query(ctx, req)
}

func (e *CommandExecutor) Widgets(ctx context.Context, req dashboard.FilterRequest) ([]dashboard.WidgetItem, error) {
	if e.WidgetsQuery == nil {
		return nil, errNotConfigured
	}
	return e.WidgetsQuery.Query(ctx, req)
}

func (e *CommandExecutor) NewSession(ctx context.Context) (dashboard.Session, error) {
	if e.Sessions == nil {
		return dashboard.Session{}, errNotConfigured
	}
	return e.Sessions.NewSession(ctx)
}

func (e *CommandExecutor) Session(ctx context.Context, input queries.SessionInput) (queries.SessionView, error) {
	if e.SessionQuery == nil {
		return queries.SessionView{}, errNotConfigured
	}
	return e.SessionQuery.Query(ctx, input)
}
