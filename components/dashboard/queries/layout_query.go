package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/goliatone/go-cnapp-dashboard/components/dashboard"
)

type layoutService interface {
	ConfigureLayout(ctx context.Context, req dashboard.LayoutRequest) (dashboard.Layout, error)
}

// LayoutQuery resolves the full page layout: every category in seed order
// with its cards filtered by the search term.
type LayoutQuery struct {
	service layoutService
}

// NewLayoutQuery builds the query.
func NewLayoutQuery(service layoutService) *LayoutQuery {
	return &LayoutQuery{service: service}
}

var _ gocommand.Querier[dashboard.LayoutRequest, dashboard.Layout] = (*LayoutQuery)(nil)

// Query passes the search term through verbatim so the page filters exactly
// like FilteredWidgets and the session search box.
func (q *LayoutQuery) Query(ctx context.Context, req dashboard.LayoutRequest) (dashboard.Layout, error) {
	if q.service == nil {
		return dashboard.Layout{}, errors.New("layout query requires service")
	}
	return q.service.ConfigureLayout(ctx, req)
}
