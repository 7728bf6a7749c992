package dashboard

import (
	"context"
	"errors"
	"io"
)

const defaultDashboardTemplate = "dashboard.html"

// LayoutResolver is the subset of Service the controller needs.
type LayoutResolver interface {
	ConfigureLayout(ctx context.Context, req LayoutRequest) (Layout, error)
}

// ControllerOptions configures the dashboard controller.
type ControllerOptions struct {
	Service  LayoutResolver
	Renderer Renderer
	Template string
}

// Controller orchestrates HTML and JSON rendering for the dashboard page.
type Controller struct {
	opts ControllerOptions
}

// NewController wires the service into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = defaultDashboardTemplate
	}
	return &Controller{opts: opts}
}

// Render resolves the layout for the request.
func (c *Controller) Render(ctx context.Context, req LayoutRequest) (Layout, error) {
	if c.opts.Service == nil {
		return Layout{}, errors.New("dashboard: controller requires a layout service")
	}
	return c.opts.Service.ConfigureLayout(ctx, req)
}

// LayoutPayload returns the template friendly view of the layout.
func (c *Controller) LayoutPayload(ctx context.Context, req LayoutRequest) (map[string]any, error) {
	layout, err := c.Render(ctx, req)
	if err != nil {
		return nil, err
	}
	return layoutPayload(layout), nil
}

// RenderTemplate renders the dashboard page into out.
func (c *Controller) RenderTemplate(ctx context.Context, req LayoutRequest, out io.Writer) error {
	if c.opts.Renderer == nil {
		return errors.New("dashboard: controller requires a renderer")
	}
	payload, err := c.LayoutPayload(ctx, req)
	if err != nil {
		return err
	}
	_, err = c.opts.Renderer.Render(c.opts.Template, payload, out)
	return err
}

func layoutPayload(layout Layout) map[string]any {
	categories := make([]map[string]any, 0, len(layout.Categories))
	tabs := make([]map[string]any, 0, len(layout.Categories))
	for _, category := range layout.Categories {
		widgets := make([]map[string]any, 0, len(category.Widgets))
		for _, card := range category.Widgets {
			data := map[string]any(card.Data)
			if data == nil {
				data = map[string]any{}
			}
			widgets = append(widgets, map[string]any{
				"name":    card.Name,
				"kind":    string(card.Kind),
				"payload": map[string]any(card.Entry),
				"data":    data,
			})
		}
		categories = append(categories, map[string]any{
			"key":           string(category.Key),
			"title":         category.Title,
			"label":         category.Label,
			"tab":           category.Tab,
			"widgets":       widgets,
			"show_add_card": category.ShowAddCard,
		})
		tabs = append(tabs, map[string]any{
			"key":   string(category.Key),
			"label": category.Label,
			"tab":   category.Tab,
		})
	}
	return map[string]any{
		"title":               layout.Title,
		"breadcrumb":          layout.Breadcrumb,
		"range":               layout.Range,
		"search_term":         layout.SearchTerm,
		"revision":            layout.Revision,
		"add_widget_headline": AddWidgetHeadline,
		"empty_message":       NoGraphDataMessage,
		"tabs":                tabs,
		"categories":          categories,
	}
}
