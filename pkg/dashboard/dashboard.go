// Package dashboard is the public facade over the CNAPP dashboard state
// model for callers outside this module.
package dashboard

import (
	core "github.com/goliatone/go-cnapp-dashboard/components/dashboard"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// State model re-exports.
type (
	DashboardState = core.DashboardState
	CategoryKey    = core.CategoryKey
	WidgetEntry    = core.WidgetEntry
	WidgetItem     = core.WidgetItem
	Session        = core.Session
	Event          = core.Event
	EventType      = core.EventType
)

// Built-in category keys.
const (
	CategoryCSPM         = core.CategoryCSPM
	CategoryCWPP         = core.CategoryCWPP
	CategoryRegistryScan = core.CategoryRegistryScan
	CategoryTicket       = core.CategoryTicket
)

// Sentinel errors.
var (
	ErrUnknownCategory    = core.ErrUnknownCategory
	ErrWidgetNameRequired = core.ErrWidgetNameRequired
	ErrNotComposing       = core.ErrNotComposing
	ErrUnknownEvent       = core.ErrUnknownEvent
	ErrInvalidPayload     = core.ErrInvalidPayload
)

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// DefaultState returns the seeded dashboard at revision zero.
func DefaultState() DashboardState {
	return core.DefaultState()
}

// Transition applies a UI event to a session and state.
func Transition(session Session, state DashboardState, event Event) (Session, DashboardState, error) {
	return core.Transition(session, state, event)
}
