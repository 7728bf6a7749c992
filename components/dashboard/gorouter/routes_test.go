package gorouter

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-cnapp-dashboard/components/dashboard"
	"github.com/goliatone/go-cnapp-dashboard/components/dashboard/httpapi"
)

func TestRegisterValidatesConfig(t *testing.T) {
	err := Register(Config[struct{}]{})
	if err == nil {
		t.Fatalf("expected error when router/controller missing")
	}
	err = Register(Config[struct{}]{Controller: dashboard.NewController(dashboard.ControllerOptions{})})
	if err == nil {
		t.Fatalf("expected error when router missing")
	}
}

func TestDefaultRouteConfig(t *testing.T) {
	routes := defaultRouteConfig(RouteConfig{HTML: "/posture"})
	assert.Equal(t, "/posture", routes.HTML)
	assert.Equal(t, "/dashboard/_layout", routes.Layout)
	assert.Equal(t, "/dashboard/categories/:category/widgets", routes.Widgets)
	assert.Equal(t, "/dashboard/categories/:category/widgets/:name", routes.Widget)
	assert.Equal(t, "/dashboard/sessions/:id/events", routes.SessionEvent)
	assert.Equal(t, "/dashboard/ws", routes.WebSocket)
}

func TestRemoveWidgetRespondsNoContent(t *testing.T) {
	service := dashboard.NewService(dashboard.Options{Store: dashboard.NewDefaultStore()})
	adapter := router.NewFiberAdapter()
	err := Register(Config[*fiber.App]{
		Router:     adapter.Router(),
		Controller: dashboard.NewController(dashboard.ControllerOptions{Service: service}),
		API:        httpapi.NewCommandExecutor(service, nil),
	})
	require.NoError(t, err)
	app := adapter.WrappedRouter()

	for _, name := range []string{"imageRiskManagement", "doesNotExist"} {
		req := httptest.NewRequest(http.MethodDelete, "/admin/dashboard/categories/RegistryScan/widgets/"+name, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode, name)
		assert.Empty(t, strings.TrimSpace(string(body)), name)
	}

	state, err := service.Snapshot(context.Background())
	require.NoError(t, err)
	_, found := state.Widget("RegistryScan", "imageRiskManagement")
	assert.False(t, found)
}
