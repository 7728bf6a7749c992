package dashboard

import (
	"fmt"
	"strings"
)

// SessionPhase is the add-widget drawer state.
type SessionPhase string

const (
	PhaseIdle      SessionPhase = "idle"
	PhaseComposing SessionPhase = "composing"
)

// Session is the serializable UI state for one viewer: drawer phase, the
// add-widget draft and the search box.
type Session struct {
	ID               string       `json:"id"`
	Phase            SessionPhase `json:"phase"`
	DefaultCategory  CategoryKey  `json:"default_category"`
	TargetCategory   CategoryKey  `json:"target_category"`
	DraftName        string       `json:"draft_name"`
	DraftDescription string       `json:"draft_description"`
	SearchTerm       string       `json:"search_term"`
}

// NewSession starts an idle session whose drawer targets defaultCategory.
func NewSession(id string, defaultCategory CategoryKey) Session {
	return Session{
		ID:              id,
		Phase:           PhaseIdle,
		DefaultCategory: defaultCategory,
		TargetCategory:  defaultCategory,
	}
}

// IsComposing reports whether the add-widget drawer is open.
func (s Session) IsComposing() bool {
	return s.Phase == PhaseComposing
}

// EventType names a user intent.
type EventType string

const (
	EventOpenAddWidget        EventType = "open_add_widget"
	EventCloseAddWidget       EventType = "close_add_widget"
	EventSelectTarget         EventType = "select_target_category"
	EventSetWidgetName        EventType = "set_widget_name"
	EventSetWidgetDescription EventType = "set_widget_description"
	EventConfirmAddWidget     EventType = "confirm_add_widget"
	EventRemoveWidget         EventType = "remove_widget"
	EventSetSearchTerm        EventType = "set_search_term"
)

// Event is a user intent delivered by the UI shell.
type Event struct {
	Type     EventType   `json:"type"`
	Category CategoryKey `json:"category,omitempty"`
	Name     string      `json:"name,omitempty"`
	Text     string      `json:"text,omitempty"`
}

// Transition applies event to the session and state and returns both. It is
// pure: inputs are never modified and on error the inputs are returned as is.
func Transition(session Session, state DashboardState, event Event) (Session, DashboardState, error) {
	switch event.Type {
	case EventOpenAddWidget:
		session.Phase = PhaseComposing
		return session, state, nil
	case EventCloseAddWidget:
		return session.closed(), state, nil
	case EventSetSearchTerm:
		session.SearchTerm = event.Text
		return session, state, nil
	case EventRemoveWidget:
		next, err := state.RemoveWidget(event.Category, event.Name)
		if err != nil {
			return session, state, err
		}
		return session, next, nil
	}

	if !session.IsComposing() {
		switch event.Type {
		case EventSelectTarget, EventSetWidgetName, EventSetWidgetDescription, EventConfirmAddWidget:
			return session, state, ErrNotComposing
		}
		return session, state, fmt.Errorf("%w: %q", ErrUnknownEvent, event.Type)
	}

	switch event.Type {
	case EventSelectTarget:
		if !state.HasCategory(event.Category) {
			return session, state, unknownCategory(event.Category)
		}
		session.TargetCategory = event.Category
		return session, state, nil
	case EventSetWidgetName:
		session.DraftName = event.Text
		return session, state, nil
	case EventSetWidgetDescription:
		session.DraftDescription = event.Text
		return session, state, nil
	case EventConfirmAddWidget:
		if strings.TrimSpace(session.DraftName) == "" {
			return session, state, ErrWidgetNameRequired
		}
		next, err := state.AddWidget(session.TargetCategory, session.DraftName, WidgetEntry{
			fieldDescription: session.DraftDescription,
		})
		if err != nil {
			return session, state, err
		}
		return session.closed(), next, nil
	}
	return session, state, fmt.Errorf("%w: %q", ErrUnknownEvent, event.Type)
}

func (s Session) closed() Session {
	s.Phase = PhaseIdle
	s.DraftName = ""
	s.DraftDescription = ""
	s.TargetCategory = s.DefaultCategory
	return s
}
