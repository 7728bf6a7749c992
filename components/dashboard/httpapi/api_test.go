package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-cnapp-dashboard/components/dashboard"
	"github.com/goliatone/go-cnapp-dashboard/components/dashboard/commands"
)

type stubCommander[T any] struct {
	last  T
	calls int
	err   error
}

func (s *stubCommander[T]) Execute(ctx context.Context, msg T) error {
	s.last = msg
	s.calls++
	return s.err
}

func TestHandleAddWidget(t *testing.T) {
	add := &stubCommander[commands.AddWidgetInput]{}
	api := &Handlers{Executor: &CommandExecutor{AddCommand: add}}
	buf, _ := json.Marshal(AddWidgetBody{Name: "New Scanner", Payload: dashboard.WidgetEntry{"connected": 1}})
	req := httptest.NewRequest(http.MethodPost, "/widgets", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	api.HandleAddWidget(rec, req, "CSPMExclusiveDashboard")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if add.calls != 1 {
		t.Fatalf("expected add to execute")
	}
	assert.Equal(t, dashboard.CategoryCSPM, add.last.Category)
	assert.Equal(t, "New Scanner", add.last.Name)
	assert.Equal(t, 1.0, add.last.Payload["connected"])
}

func TestHandleAddWidgetBadBody(t *testing.T) {
	add := &stubCommander[commands.AddWidgetInput]{}
	api := &Handlers{Executor: &CommandExecutor{AddCommand: add}}
	req := httptest.NewRequest(http.MethodPost, "/widgets", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	api.HandleAddWidget(rec, req, "CSPMExclusiveDashboard")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, add.calls)
}

func TestHandleRemoveWidget(t *testing.T) {
	remove := &stubCommander[commands.RemoveWidgetInput]{}
	api := &Handlers{Executor: &CommandExecutor{RemoveCommand: remove}}
	req := httptest.NewRequest(http.MethodDelete, "/widgets/imageRiskManagement", nil)
	rec := httptest.NewRecorder()
	api.HandleRemoveWidget(rec, req, "RegistryScan", "imageRiskManagement")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if remove.last.Name != "imageRiskManagement" || remove.last.Category != dashboard.CategoryRegistryScan {
		t.Fatalf("expected widget propagation, got %+v", remove.last)
	}
}

func TestHandleRefreshWidget(t *testing.T) {
	refresh := &stubCommander[commands.RefreshWidgetInput]{}
	api := &Handlers{Executor: &CommandExecutor{RefreshCommand: refresh}}
	buf, _ := json.Marshal(dashboard.WidgetEvent{Category: dashboard.CategoryCSPM, Widget: "cloud Accounts"})
	req := httptest.NewRequest(http.MethodPost, "/refresh", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	api.HandleRefreshWidget(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if refresh.calls != 1 {
		t.Fatalf("expected refresh to execute")
	}
	assert.Equal(t, "cloud Accounts", refresh.last.Event.Widget)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{&dashboard.UnknownCategoryError{Key: "x"}, http.StatusNotFound},
		{fmt.Errorf("wrap: %w", dashboard.ErrSessionNotFound), http.StatusNotFound},
		{dashboard.ErrWidgetNameRequired, http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: CSPM: minimum", dashboard.ErrInvalidPayload), http.StatusUnprocessableEntity},
		{dashboard.ErrNotComposing, http.StatusConflict},
		{dashboard.ErrUnknownEvent, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusFor(tc.err), "error %v", tc.err)
	}
}

func TestCommandExecutorRequiresConfiguration(t *testing.T) {
	exec := &CommandExecutor{}
	ctx := context.Background()
	require.ErrorIs(t, exec.AddWidget(ctx, commands.AddWidgetInput{}), errNotConfigured)
	_, err := exec.Layout(ctx, dashboard.LayoutRequest{})
	require.ErrorIs(t, err, errNotConfigured)
	_, err = exec.NewSession(ctx)
	require.ErrorIs(t, err, errNotConfigured)
}

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	return newTestMuxWith(t, dashboard.Options{})
}

func newTestMuxWith(t *testing.T, opts dashboard.Options) *http.ServeMux {
	t.Helper()
	opts.Store = dashboard.NewDefaultStore()
	service := dashboard.NewService(opts)
	api := &Handlers{Executor: NewCommandExecutor(service, nil)}
	return api.Mux("/admin")
}

func doJSON(t *testing.T, mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestMuxAddThenFilter(t *testing.T) {
	mux := newTestMux(t)
	rec := doJSON(t, mux, http.MethodPost, "/admin/dashboard/categories/CSPMExclusiveDashboard/widgets",
		`{"name":"New Scanner","payload":{"connected":1,"notConnected":0}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, mux, http.MethodGet, "/admin/dashboard/categories/CSPMExclusiveDashboard/widgets?q=scan", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Widgets []dashboard.WidgetItem `json:"widgets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Widgets, 1)
	assert.Equal(t, "New Scanner", body.Widgets[0].Name)
}

func TestMuxErrorStatuses(t *testing.T) {
	mux := newTestMux(t)
	rec := doJSON(t, mux, http.MethodGet, "/admin/dashboard/categories/Nope/widgets", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/admin/dashboard/categories/Nope/widgets", `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/admin/dashboard/categories/TicketDashboard/widgets", `{"name":"  "}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, mux, http.MethodDelete, "/admin/dashboard/categories/RegistryScan/widgets/doesNotExist", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/admin/dashboard/sessions/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMuxRejectsInvalidPayload(t *testing.T) {
	mux := newTestMuxWith(t, dashboard.Options{ValidatePayloads: true})
	rec := doJSON(t, mux, http.MethodPost, "/admin/dashboard/categories/CSPMExclusiveDashboard/widgets",
		`{"name":"x","payload":{"connected":-1}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "file://")
}

func TestMuxSessionFlow(t *testing.T) {
	mux := newTestMux(t)
	rec := doJSON(t, mux, http.MethodPost, "/admin/dashboard/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var session dashboard.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	require.NotEmpty(t, session.ID)
	eventsPath := "/admin/dashboard/sessions/" + session.ID + "/events"

	rec = doJSON(t, mux, http.MethodPost, eventsPath, `{"type":"set_widget_name","text":"x"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	for _, body := range []string{
		`{"type":"open_add_widget"}`,
		`{"type":"select_target_category","category":"RegistryScan"}`,
		`{"type":"set_widget_name","text":"Vuln Trend"}`,
		`{"type":"set_widget_description","text":"weekly"}`,
	} {
		rec = doJSON(t, mux, http.MethodPost, eventsPath, body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	var view struct {
		Composing bool   `json:"is_composing"`
		Headline  string `json:"headline"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.True(t, view.Composing)
	assert.Equal(t, dashboard.AddWidgetHeadline, view.Headline)

	rec = doJSON(t, mux, http.MethodPost, eventsPath, `{"type":"confirm_add_widget"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/admin/dashboard/categories/RegistryScan/widgets?q=vuln", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Vuln Trend"`)
	assert.Contains(t, rec.Body.String(), `"description":"weekly"`)

	rec = doJSON(t, mux, http.MethodPost, eventsPath, `{"type":"dance"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = doJSON(t, mux, http.MethodPost, eventsPath, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMuxLayout(t *testing.T) {
	mux := newTestMux(t)
	rec := doJSON(t, mux, http.MethodGet, "/admin/dashboard/_layout?q=risk", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var layout dashboard.Layout
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &layout))
	assert.Equal(t, "risk", layout.SearchTerm)
	require.Len(t, layout.Categories, 4)
	require.Len(t, layout.Categories[0].Widgets, 1)
	assert.Equal(t, "cloud Account RiskAssessment", layout.Categories[0].Widgets[0].Name)
}
