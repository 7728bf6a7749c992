package dashboard

import "context"

// CardProvider turns a widget into the data its card template renders.
type CardProvider interface {
	Card(ctx context.Context, meta CardContext) (CardData, error)
}

// CardProviderFunc adapts a function into a CardProvider.
type CardProviderFunc func(ctx context.Context, meta CardContext) (CardData, error)

// Card implements CardProvider.
func (fn CardProviderFunc) Card(ctx context.Context, meta CardContext) (CardData, error) {
	return fn(ctx, meta)
}

// CardContext contains the metadata needed by providers.
type CardContext struct {
	Category CategoryDefinition
	Widget   WidgetItem
	Payload  Payload
	Revision uint64
}

// CardData is an opaque payload passed to templates.
type CardData map[string]any
