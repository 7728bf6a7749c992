package dashboard

import "context"

// CategoryKey identifies a dashboard category (e.g. "CSPMExclusiveDashboard").
type CategoryKey string

// Seeded category keys.
const (
	CategoryCSPM         CategoryKey = "CSPMExclusiveDashboard"
	CategoryCWPP         CategoryKey = "CWPPDashboard"
	CategoryRegistryScan CategoryKey = "RegistryScan"
	CategoryTicket       CategoryKey = "TicketDashboard"
)

// WidgetEntry is the opaque metric payload stored under a widget name. The
// store never inspects it; renderers decode it per category via DecodePayload.
type WidgetEntry map[string]any

// Clone returns a deep copy of nested maps and slices so snapshots never
// share mutable values with callers.
func (e WidgetEntry) Clone() WidgetEntry {
	out := make(WidgetEntry, len(e))
	for k, v := range e {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case WidgetEntry:
		return val.Clone()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// WidgetItem pairs a widget name with its payload.
type WidgetItem struct {
	Name  string      `json:"name" yaml:"name"`
	Entry WidgetEntry `json:"payload" yaml:"payload"`
}

// CategoryDefinition describes a category tab and the shape of its payloads.
type CategoryDefinition struct {
	Key    CategoryKey    `json:"key" yaml:"key"`
	Label  string         `json:"label" yaml:"label"`
	Tab    string         `json:"tab" yaml:"tab"`
	Title  string         `json:"title,omitempty" yaml:"title,omitempty"`
	Schema map[string]any `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// DisplayTitle returns the section heading for the category.
func (def CategoryDefinition) DisplayTitle() string {
	if def.Title != "" {
		return def.Title
	}
	return string(def.Key)
}

// WidgetStore holds the current DashboardState. Implementations swap the
// snapshot atomically per update so readers never observe partial states.
type WidgetStore interface {
	Snapshot(ctx context.Context) DashboardState
	Update(ctx context.Context, fn func(DashboardState) (DashboardState, error)) (DashboardState, error)
	Reset(ctx context.Context, state DashboardState)
}

// CategoryRegistry stores category definitions and card providers.
type CategoryRegistry interface {
	RegisterCategory(def CategoryDefinition) error
	RegisterProvider(key CategoryKey, provider CardProvider) error
	Category(key CategoryKey) (CategoryDefinition, bool)
	Provider(key CategoryKey) (CardProvider, bool)
	Categories() []CategoryDefinition
}

// SessionStore keeps UI sessions between requests.
type SessionStore interface {
	Load(ctx context.Context, id string) (Session, error)
	Save(ctx context.Context, session Session) error
	Delete(ctx context.Context, id string) error
}

// RefreshHook notifies transports (REST/WebSocket) about widget changes.
type RefreshHook interface {
	WidgetUpdated(ctx context.Context, event WidgetEvent) error
}

// WidgetEvent describes changes that transports might care about.
type WidgetEvent struct {
	Category CategoryKey `json:"category"`
	Widget   string      `json:"widget,omitempty"`
	Reason   string      `json:"reason"`
	Revision uint64      `json:"revision"`
}

// Layout is the renderer facing view of the whole dashboard.
type Layout struct {
	Title      string           `json:"title"`
	Breadcrumb []string         `json:"breadcrumb"`
	Range      string           `json:"range"`
	SearchTerm string           `json:"search_term"`
	Revision   uint64           `json:"revision"`
	Categories []CategoryLayout `json:"categories"`
}

// CategoryLayout is one category section with its rendered cards.
type CategoryLayout struct {
	Key         CategoryKey  `json:"key"`
	Title       string       `json:"title"`
	Label       string       `json:"label"`
	Tab         string       `json:"tab"`
	Widgets     []WidgetCard `json:"widgets"`
	ShowAddCard bool         `json:"show_add_card"`
}

// WidgetCard is a single rendered widget.
type WidgetCard struct {
	Category CategoryKey `json:"category"`
	Name     string      `json:"name"`
	Kind     PayloadKind `json:"kind"`
	Entry    WidgetEntry `json:"payload"`
	Data     CardData    `json:"data,omitempty"`
}
