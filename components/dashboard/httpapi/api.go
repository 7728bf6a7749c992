package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/goliatone/go-cnapp-dashboard/components/dashboard"
	"github.com/goliatone/go-cnapp-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-cnapp-dashboard/components/dashboard/queries"
)

// Handlers exposes HTTP endpoints backed by shared commands.
type Handlers struct {
	Executor  Executor
	Broadcast *dashboard.BroadcastHook
}

// AddWidgetBody is the JSON body for adding a widget to a category.
type AddWidgetBody struct {
	Name    string                `json:"name"`
	Payload dashboard.WidgetEntry `json:"payload"`
}

// StatusFor maps dashboard errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, dashboard.ErrUnknownCategory), errors.Is(err, dashboard.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrWidgetNameRequired), errors.Is(err, dashboard.ErrInvalidPayload):
		return http.StatusUnprocessableEntity
	case errors.Is(err, dashboard.ErrNotComposing):
		return http.StatusConflict
	case errors.Is(err, dashboard.ErrUnknownEvent):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) HandleLayout(w http.ResponseWriter, r *http.Request) {
	layout, err := h.Executor.Layout(r.Context(), dashboard.LayoutRequest{SearchTerm: r.URL.Query().Get("q")})
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, layout)
}

func (h *Handlers) HandleListWidgets(w http.ResponseWriter, r *http.Request, category string) {
	items, err := h.Executor.Widgets(r.Context(), dashboard.FilterRequest{
		Category:   dashboard.CategoryKey(category),
		SearchTerm: r.URL.Query().Get("q"),
	})
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"category": category, "widgets": items})
}

func (h *Handlers) HandleAddWidget(w http.ResponseWriter, r *http.Request, category string) {
	var payload AddWidgetBody
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	input := commands.AddWidgetInput{
		Category: dashboard.CategoryKey(category),
		Name:     payload.Name,
		Payload:  payload.Payload,
	}
	if err := h.Executor.AddWidget(r.Context(), input); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

func (h *Handlers) HandleRemoveWidget(w http.ResponseWriter, r *http.Request, category, name string) {
	input := commands.RemoveWidgetInput{Category: dashboard.CategoryKey(category), Name: name}
	if err := h.Executor.RemoveWidget(r.Context(), input); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleRefreshWidget(w http.ResponseWriter, r *http.Request) {
	var payload commands.RefreshWidgetInput
	if err := json.NewDecoder(r.Body).Decode(&payload.Event); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Executor.Refresh(r.Context(), payload); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handlers) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.Executor.NewSession(r.Context())
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (h *Handlers) HandleGetSession(w http.ResponseWriter, r *http.Request, id string) {
	view, err := h.Executor.Session(r.Context(), queries.SessionInput{ID: id})
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) HandleSessionEvent(w http.ResponseWriter, r *http.Request, id string) {
	var event dashboard.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Executor.SessionEvent(r.Context(), commands.SessionEventInput{SessionID: id, Event: event}); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	h.HandleGetSession(w, r, id)
}

// Mux mounts the handlers on a standard library ServeMux under base.
func (h *Handlers) Mux(base string) *http.ServeMux {
	base = strings.TrimRight(base, "/")
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+base+"/dashboard/_layout", h.HandleLayout)
	mux.HandleFunc("GET "+base+"/dashboard/categories/{category}/widgets", func(w http.ResponseWriter, r *http.Request) {
		h.HandleListWidgets(w, r, r.PathValue("category"))
	})
	mux.HandleFunc("POST "+base+"/dashboard/categories/{category}/widgets", func(w http.ResponseWriter, r *http.Request) {
		h.HandleAddWidget(w, r, r.PathValue("category"))
	})
	mux.HandleFunc("DELETE "+base+"/dashboard/categories/{category}/widgets/{name}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleRemoveWidget(w, r, r.PathValue("category"), r.PathValue("name"))
	})
	mux.HandleFunc("POST "+base+"/dashboard/refresh", h.HandleRefreshWidget)
	mux.HandleFunc("POST "+base+"/dashboard/sessions", h.HandleCreateSession)
	mux.HandleFunc("GET "+base+"/dashboard/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleGetSession(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST "+base+"/dashboard/sessions/{id}/events", func(w http.ResponseWriter, r *http.Request) {
		h.HandleSessionEvent(w, r, r.PathValue("id"))
	})
	if h.Broadcast != nil {
		mux.HandleFunc("GET "+base+"/dashboard/ws", h.Broadcast.ServeWebSocket)
		mux.HandleFunc("GET "+base+"/dashboard/events", h.Broadcast.ServeSSE)
	}
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
