package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-cnapp-dashboard/components/dashboard"
	"github.com/goliatone/go-cnapp-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-cnapp-dashboard/components/dashboard/httpapi"
	"github.com/goliatone/go-cnapp-dashboard/components/dashboard/queries"
)

// Config wires go-router with the dashboard controller, API and hooks.
type Config[T any] struct {
	Router     router.Router[T]
	Controller *dashboard.Controller
	API        httpapi.Executor
	Broadcast  *dashboard.BroadcastHook
	BasePath   string
	Routes     RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML         string
	Layout       string
	Widgets      string
	Widget       string
	Refresh      string
	Sessions     string
	Session      string
	SessionEvent string
	WebSocket    string
}

// Register mounts dashboard routes (HTML, JSON, REST, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/admin"
	}

	group := cfg.Router.Group(base)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		var buf bytes.Buffer
		req := dashboard.LayoutRequest{SearchTerm: ctx.Query("q")}
		if err := cfg.Controller.RenderTemplate(ctx.Context(), req, &buf); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	group.Get(routes.Layout, router.WrapHandler(func(ctx router.Context) error {
		payload, err := cfg.Controller.LayoutPayload(ctx.Context(), dashboard.LayoutRequest{SearchTerm: ctx.Query("q")})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, payload)
	}))

	if cfg.API != nil {
		registerAPI(group, cfg.API, routes)
	}

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}

	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, routes RouteConfig) {
	r.Get(routes.Widgets, router.WrapHandler(func(ctx router.Context) error {
		category := ctx.Param("category")
		items, err := api.Widgets(ctx.Context(), dashboard.FilterRequest{
			Category:   dashboard.CategoryKey(category),
			SearchTerm: ctx.Query("q"),
		})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]any{"category": category, "widgets": items})
	}))

	r.Post(routes.Widgets, router.WrapHandler(func(ctx router.Context) error {
		var payload httpapi.AddWidgetBody
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		err := api.AddWidget(ctx.Context(), commands.AddWidgetInput{
			Category: dashboard.CategoryKey(ctx.Param("category")),
			Name:     payload.Name,
			Payload:  payload.Payload,
		})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusCreated, map[string]string{"status": "created"})
	}))

	r.Delete(routes.Widget, router.WrapHandler(func(ctx router.Context) error {
		err := api.RemoveWidget(ctx.Context(), commands.RemoveWidgetInput{
			Category: dashboard.CategoryKey(ctx.Param("category")),
			Name:     ctx.Param("name"),
		})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.NoContent(http.StatusNoContent)
	}))

	r.Post(routes.Refresh, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.RefreshWidgetInput
		if err := json.Unmarshal(ctx.Body(), &payload.Event); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.Refresh(ctx.Context(), payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
	}))

	r.Post(routes.Sessions, router.WrapHandler(func(ctx router.Context) error {
		session, err := api.NewSession(ctx.Context())
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusCreated, session)
	}))

	r.Get(routes.Session, router.WrapHandler(func(ctx router.Context) error {
		view, err := api.Session(ctx.Context(), queries.SessionInput{ID: ctx.Param("id")})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, view)
	}))

	r.Post(routes.SessionEvent, router.WrapHandler(func(ctx router.Context) error {
		var event dashboard.Event
		if err := json.Unmarshal(ctx.Body(), &event); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		id := ctx.Param("id")
		if err := api.SessionEvent(ctx.Context(), commands.SessionEventInput{SessionID: id, Event: event}); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		view, err := api.Session(ctx.Context(), queries.SessionInput{ID: id})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, view)
	}))
}

func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		err := hook.Stream(ws.Context(), func(event dashboard.WidgetEvent) error {
			return ws.WriteJSON(event)
		})
		if ws.Context().Err() != nil {
			return ws.Close()
		}
		return err
	})
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/dashboard"
	}
	if routes.Layout == "" {
		routes.Layout = "/dashboard/_layout"
	}
	if routes.Widgets == "" {
		routes.Widgets = "/dashboard/categories/:category/widgets"
	}
	if routes.Widget == "" {
		routes.Widget = "/dashboard/categories/:category/widgets/:name"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/dashboard/refresh"
	}
	if routes.Sessions == "" {
		routes.Sessions = "/dashboard/sessions"
	}
	if routes.Session == "" {
		routes.Session = "/dashboard/sessions/:id"
	}
	if routes.SessionEvent == "" {
		routes.SessionEvent = "/dashboard/sessions/:id/events"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/dashboard/ws"
	}
	return routes
}
