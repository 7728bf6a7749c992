package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/goliatone/go-cnapp-dashboard/components/dashboard"
)

// SessionInput identifies a stored UI session.
type SessionInput struct {
	ID string
}

// SessionView is what renderers need from a session: the session itself, the
// drawer headline and the widgets of the target category filtered by the
// session's search term.
type SessionView struct {
	Session   dashboard.Session      `json:"session"`
	Composing bool                   `json:"is_composing"`
	Headline  string                 `json:"headline,omitempty"`
	Widgets   []dashboard.WidgetItem `json:"widgets"`
}

type sessionService interface {
	Session(ctx context.Context, id string) (dashboard.Session, error)
	FilteredWidgets(ctx context.Context, req dashboard.FilterRequest) ([]dashboard.WidgetItem, error)
}

// SessionQuery loads a session with its render outputs.
type SessionQuery struct {
	service sessionService
}

// NewSessionQuery builds the query.
func NewSessionQuery(service sessionService) *SessionQuery {
	return &SessionQuery{service: service}
}

var _ gocommand.Querier[SessionInput, SessionView] = (*SessionQuery)(nil)

// Query resolves the session view.
func (q *SessionQuery) Query(ctx context.Context, input SessionInput) (SessionView, error) {
	session, err := q.service.Session(ctx, input.ID)
	if err != nil {
		return SessionView{}, err
	}
	view := SessionView{
		Session:   session,
		Composing: session.IsComposing(),
		Widgets:   []dashboard.WidgetItem{},
	}
	if view.Composing {
		view.Headline = dashboard.AddWidgetHeadline
	}
	if session.TargetCategory != "" {
		widgets, err := q.service.FilteredWidgets(ctx, dashboard.FilterRequest{
			Category:   session.TargetCategory,
			SearchTerm: session.SearchTerm,
		})
		if err != nil {
			return SessionView{}, err
		}
		view.Widgets = widgets
	}
	return view, nil
}
