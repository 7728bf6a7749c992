package dashboard

import (
	"context"
	"errors"
)

// RefreshHooks fans a widget event out to several hooks. Every hook is called
// even when an earlier one fails; the errors are joined.
type RefreshHooks []RefreshHook

// WidgetUpdated implements RefreshHook.
func (hooks RefreshHooks) WidgetUpdated(ctx context.Context, event WidgetEvent) error {
	var errs []error
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		if err := hook.WidgetUpdated(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RefreshHookFunc adapts a function into a RefreshHook.
type RefreshHookFunc func(ctx context.Context, event WidgetEvent) error

// WidgetUpdated implements RefreshHook.
func (fn RefreshHookFunc) WidgetUpdated(ctx context.Context, event WidgetEvent) error {
	return fn(ctx, event)
}
