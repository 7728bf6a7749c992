package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/goliatone/go-cnapp-dashboard/components/dashboard"
)

type filterService interface {
	FilteredWidgets(ctx context.Context, req dashboard.FilterRequest) ([]dashboard.WidgetItem, error)
}

// FilteredWidgetsQuery lists the widgets of one category matching a search term.
type FilteredWidgetsQuery struct {
	service filterService
}

// NewFilteredWidgetsQuery builds the query.
func NewFilteredWidgetsQuery(service filterService) *FilteredWidgetsQuery {
	return &FilteredWidgetsQuery{service: service}
}

var _ gocommand.Querier[dashboard.FilterRequest, []dashboard.WidgetItem] = (*FilteredWidgetsQuery)(nil)

// Query returns the matching widgets in insertion order.
func (q *FilteredWidgetsQuery) Query(ctx context.Context, req dashboard.FilterRequest) ([]dashboard.WidgetItem, error) {
	return q.service.FilteredWidgets(ctx, req)
}
