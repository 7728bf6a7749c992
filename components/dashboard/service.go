package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Options configures the dashboard Service. Every collaborator is provided via
// interface so applications can swap implementations without importing
// internal packages.
type Options struct {
	Store            WidgetStore
	Registry         CategoryRegistry
	Validator        PayloadValidator
	ValidatePayloads bool
	CardProvider     CardProvider
	Sessions         SessionStore
	RefreshHook      RefreshHook
	Telemetry        Telemetry
	NewSessionID     func() string
}

// Service orchestrates the widget store, category registry and UI sessions.
type Service struct {
	opts     Options
	sessions sessionLocks
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	if opts.Validator == nil {
		if opts.ValidatePayloads {
			opts.Validator = NewJSONSchemaValidator()
		} else {
			opts.Validator = noopPayloadValidator{}
		}
	}
	if opts.CardProvider == nil {
		opts.CardProvider = DefaultCardProvider()
	}
	if opts.Sessions == nil {
		opts.Sessions = NewInMemorySessionStore()
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.NewSessionID == nil {
		opts.NewSessionID = uuid.NewString
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Service{opts: opts}
}

// Registry exposes the category registry.
func (s *Service) Registry() CategoryRegistry {
	return s.opts.Registry
}

// AddWidgetRequest captures the data required to add or overwrite a widget.
type AddWidgetRequest struct {
	Category CategoryKey
	Name     string
	Payload  WidgetEntry
}

// AddWidget inserts or overwrites a widget. Unlike the store, the service
// rejects blank names since it stands in for the add-widget form.
func (s *Service) AddWidget(ctx context.Context, req AddWidgetRequest) (DashboardState, error) {
	store, err := s.widgetStore()
	if err != nil {
		return DashboardState{}, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return store.Snapshot(ctx), ErrWidgetNameRequired
	}
	if err := s.validatePayload(req.Category, req.Payload); err != nil {
		s.recordTelemetry(ctx, "dashboard.widget.validation_error", map[string]any{
			"category": string(req.Category),
			"widget":   req.Name,
			"error":    err.Error(),
		})
		return store.Snapshot(ctx), err
	}
	state, err := store.Update(ctx, func(current DashboardState) (DashboardState, error) {
		return current.AddWidget(req.Category, req.Name, req.Payload)
	})
	if err != nil {
		s.recordFailure(ctx, "add_widget", err)
		return state, err
	}
	s.recordTelemetry(ctx, "dashboard.widget.add", map[string]any{
		"category": string(req.Category),
		"widget":   req.Name,
		"revision": state.Revision(),
	})
	return state, s.notify(ctx, WidgetEvent{
		Category: req.Category,
		Widget:   req.Name,
		Reason:   "add",
		Revision: state.Revision(),
	})
}

// RemoveWidgetRequest identifies the widget to delete.
type RemoveWidgetRequest struct {
	Category CategoryKey
	Name     string
}

// RemoveWidget deletes a widget. Removing an absent widget is a no-op and
// does not notify subscribers.
func (s *Service) RemoveWidget(ctx context.Context, req RemoveWidgetRequest) (DashboardState, error) {
	store, err := s.widgetStore()
	if err != nil {
		return DashboardState{}, err
	}
	before := store.Snapshot(ctx).Revision()
	state, err := store.Update(ctx, func(current DashboardState) (DashboardState, error) {
		return current.RemoveWidget(req.Category, req.Name)
	})
	if err != nil {
		s.recordFailure(ctx, "remove_widget", err)
		return state, err
	}
	s.recordTelemetry(ctx, "dashboard.widget.remove", map[string]any{
		"category": string(req.Category),
		"widget":   req.Name,
		"revision": state.Revision(),
	})
	if state.Revision() == before {
		return state, nil
	}
	return state, s.notify(ctx, WidgetEvent{
		Category: req.Category,
		Widget:   req.Name,
		Reason:   "remove",
		Revision: state.Revision(),
	})
}

// FilterRequest selects the widgets of one category by name.
type FilterRequest struct {
	Category   CategoryKey
	SearchTerm string
}

// FilteredWidgets returns the widgets whose names contain the search term.
func (s *Service) FilteredWidgets(ctx context.Context, req FilterRequest) ([]WidgetItem, error) {
	store, err := s.widgetStore()
	if err != nil {
		return nil, err
	}
	items, err := store.Snapshot(ctx).FilteredWidgets(req.Category, req.SearchTerm)
	if err != nil {
		s.recordFailure(ctx, "filtered_widgets", err)
		return nil, err
	}
	s.recordTelemetry(ctx, "dashboard.widget.filter", map[string]any{
		"category": string(req.Category),
		"term":     req.SearchTerm,
		"count":    len(items),
	})
	return items, nil
}

// LayoutRequest configures the rendered layout.
type LayoutRequest struct {
	SearchTerm string
}

// ConfigureLayout renders every category in seed order with its filtered
// widget cards.
func (s *Service) ConfigureLayout(ctx context.Context, req LayoutRequest) (Layout, error) {
	store, err := s.widgetStore()
	if err != nil {
		return Layout{}, err
	}
	state := store.Snapshot(ctx)
	layout := Layout{
		Title:      DashboardTitle,
		Breadcrumb: append([]string(nil), defaultBreadcrumb...),
		Range:      DefaultRangeLabel,
		SearchTerm: req.SearchTerm,
		Revision:   state.Revision(),
	}
	for _, key := range state.Categories() {
		items, err := state.FilteredWidgets(key, req.SearchTerm)
		if err != nil {
			s.recordFailure(ctx, "configure_layout", err)
			return Layout{}, err
		}
		def := s.definition(key)
		section := CategoryLayout{
			Key:         key,
			Title:       def.DisplayTitle(),
			Label:       def.Label,
			Tab:         def.Tab,
			Widgets:     make([]WidgetCard, 0, len(items)),
			ShowAddCard: true,
		}
		for _, item := range items {
			section.Widgets = append(section.Widgets, s.card(ctx, def, item, state.Revision()))
		}
		layout.Categories = append(layout.Categories, section)
	}
	s.recordTelemetry(ctx, "dashboard.layout.resolve", map[string]any{
		"term":       req.SearchTerm,
		"categories": len(layout.Categories),
		"revision":   layout.Revision,
	})
	return layout, nil
}

func (s *Service) card(ctx context.Context, def CategoryDefinition, item WidgetItem, revision uint64) WidgetCard {
	payload := DecodePayload(def.Key, item.Entry)
	card := WidgetCard{
		Category: def.Key,
		Name:     item.Name,
		Kind:     payload.Kind(),
		Entry:    item.Entry,
	}
	provider, ok := s.opts.Registry.Provider(def.Key)
	if !ok || provider == nil {
		provider = s.opts.CardProvider
	}
	data, err := provider.Card(ctx, CardContext{
		Category: def,
		Widget:   item,
		Payload:  payload,
		Revision: revision,
	})
	if err != nil {
		s.recordTelemetry(ctx, "dashboard.widget.provider_error", map[string]any{
			"category": string(def.Key),
			"widget":   item.Name,
			"error":    err.Error(),
		})
		card.Data = CardData{"message": NoGraphDataMessage}
		return card
	}
	card.Data = data
	return card
}

// Snapshot returns the current dashboard state.
func (s *Service) Snapshot(ctx context.Context) (DashboardState, error) {
	store, err := s.widgetStore()
	if err != nil {
		return DashboardState{}, err
	}
	return store.Snapshot(ctx), nil
}

// Seed replaces the dashboard state wholesale and notifies subscribers.
func (s *Service) Seed(ctx context.Context, state DashboardState) error {
	store, err := s.widgetStore()
	if err != nil {
		return err
	}
	store.Reset(ctx, state)
	s.recordTelemetry(ctx, "dashboard.seed", map[string]any{
		"categories": len(state.Categories()),
	})
	return s.notify(ctx, WidgetEvent{Reason: "seed", Revision: state.Revision()})
}

// NewSession creates and stores an idle session targeting the first category.
func (s *Service) NewSession(ctx context.Context) (Session, error) {
	store, err := s.widgetStore()
	if err != nil {
		return Session{}, err
	}
	var first CategoryKey
	if keys := store.Snapshot(ctx).Categories(); len(keys) > 0 {
		first = keys[0]
	}
	session := NewSession(s.opts.NewSessionID(), first)
	if err := s.opts.Sessions.Save(ctx, session); err != nil {
		return Session{}, err
	}
	s.recordTelemetry(ctx, "dashboard.session.create", map[string]any{"session": session.ID})
	return session, nil
}

// Session loads a stored session.
func (s *Service) Session(ctx context.Context, id string) (Session, error) {
	return s.opts.Sessions.Load(ctx, id)
}

// Dispatch applies a UI event to a stored session. Events for the same
// session run one at a time. State changes are applied atomically against
// the latest snapshot and broadcast like direct calls.
func (s *Service) Dispatch(ctx context.Context, sessionID string, event Event) (Session, error) {
	store, err := s.widgetStore()
	if err != nil {
		return Session{}, err
	}
	unlock := s.sessions.lock(sessionID)
	defer unlock()
	session, err := s.opts.Sessions.Load(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	before := session
	var nextSession Session
	var prevRevision uint64
	state, err := store.Update(ctx, func(current DashboardState) (DashboardState, error) {
		prevRevision = current.Revision()
		next, nextState, err := Transition(session, current, event)
		nextSession = next
		return nextState, err
	})
	if err != nil {
		if errors.Is(err, ErrUnknownCategory) {
			s.recordFailure(ctx, "session_event", err)
		}
		return session, err
	}
	if err := s.opts.Sessions.Save(ctx, nextSession); err != nil {
		return session, err
	}
	s.recordTelemetry(ctx, "dashboard.session.event", map[string]any{
		"session":  sessionID,
		"event":    string(event.Type),
		"phase":    string(nextSession.Phase),
		"revision": state.Revision(),
	})
	if state.Revision() == prevRevision {
		return nextSession, nil
	}
	switch event.Type {
	case EventConfirmAddWidget:
		return nextSession, s.notify(ctx, WidgetEvent{
			Category: before.TargetCategory,
			Widget:   before.DraftName,
			Reason:   "add",
			Revision: state.Revision(),
		})
	case EventRemoveWidget:
		return nextSession, s.notify(ctx, WidgetEvent{
			Category: event.Category,
			Widget:   event.Name,
			Reason:   "remove",
			Revision: state.Revision(),
		})
	}
	return nextSession, nil
}

// NotifyWidgetUpdated exposes refresh hook invocation for commands/transports.
func (s *Service) NotifyWidgetUpdated(ctx context.Context, event WidgetEvent) error {
	return s.notify(ctx, event)
}

func (s *Service) notify(ctx context.Context, event WidgetEvent) error {
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, event); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.widget.event", map[string]any{
		"category": string(event.Category),
		"widget":   event.Widget,
		"reason":   event.Reason,
		"revision": event.Revision,
	})
	return nil
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

func (s *Service) recordFailure(ctx context.Context, op string, err error) {
	payload := map[string]any{
		"op":    op,
		"error": err.Error(),
	}
	var unknown *UnknownCategoryError
	if errors.As(err, &unknown) {
		payload["category"] = string(unknown.Key)
		s.recordTelemetry(ctx, "dashboard.invariant_violation", payload)
		return
	}
	s.recordTelemetry(ctx, "dashboard.operation_error", payload)
}

func (s *Service) widgetStore() (WidgetStore, error) {
	if s.opts.Store == nil {
		return nil, errMissingWidgetStore
	}
	return s.opts.Store, nil
}

func (s *Service) definition(key CategoryKey) CategoryDefinition {
	if def, ok := s.opts.Registry.Category(key); ok {
		return def
	}
	return CategoryDefinition{Key: key, Label: string(key)}
}

// validatePayload checks a payload against its category schema when
// validation is enabled. Categories without a registered definition pass.
func (s *Service) validatePayload(key CategoryKey, payload WidgetEntry) error {
	if !s.opts.ValidatePayloads {
		return nil
	}
	def, ok := s.opts.Registry.Category(key)
	if !ok {
		return nil
	}
	return s.opts.Validator.Validate(def, payload)
}

// sessionLocks hands out one mutex per session id and forgets it once no
// dispatch holds or waits on it.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sessionLock)
	}
	entry, ok := l.locks[id]
	if !ok {
		entry = &sessionLock{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

type noopRefreshHook struct{}

func (noopRefreshHook) WidgetUpdated(context.Context, WidgetEvent) error {
	return nil
}
