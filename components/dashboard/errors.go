package dashboard

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCategory marks operations that reference a category key absent
	// from the state. Callers only ever pass keys taken from the state itself,
	// so hitting it means the caller is miswired.
	ErrUnknownCategory = errors.New("dashboard: unknown category")
	// ErrWidgetNameRequired is returned when confirming a draft without a name.
	ErrWidgetNameRequired = errors.New("dashboard: widget name is required")
	// ErrNotComposing is returned for draft events outside the add-widget drawer.
	ErrNotComposing = errors.New("dashboard: add widget drawer is not open")
	// ErrSessionNotFound is returned by session stores for unknown ids.
	ErrSessionNotFound = errors.New("dashboard: session not found")
	// ErrUnknownEvent is returned by Transition for unsupported event types.
	ErrUnknownEvent = errors.New("dashboard: unknown session event")
	// ErrInvalidPayload wraps payloads rejected by their category schema.
	ErrInvalidPayload = errors.New("dashboard: invalid widget payload")

	errMissingWidgetStore = errors.New("dashboard: widget store not configured")
)

// UnknownCategoryError carries the offending key.
type UnknownCategoryError struct {
	Key CategoryKey
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("dashboard: unknown category %q", string(e.Key))
}

// Is lets errors.Is(err, ErrUnknownCategory) match.
func (e *UnknownCategoryError) Is(target error) bool {
	return target == ErrUnknownCategory
}

func unknownCategory(key CategoryKey) error {
	return &UnknownCategoryError{Key: key}
}
