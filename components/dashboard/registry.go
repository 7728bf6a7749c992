package dashboard

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/ettle/strcase"
)

// CategoryHook lets packages register categories/providers during init().
type CategoryHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []CategoryHook
)

// RegisterCategoryHook registers a hook executed against new registries.
func RegisterCategoryHook(h CategoryHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// BindCardProvider returns a hook that assigns provider to every category
// that has none yet.
func BindCardProvider(provider CardProvider) CategoryHook {
	return func(reg *Registry) error {
		for _, def := range reg.Categories() {
			if _, ok := reg.Provider(def.Key); ok {
				continue
			}
			if err := reg.RegisterProvider(def.Key, provider); err != nil {
				return err
			}
		}
		return nil
	}
}

// Registry implements CategoryRegistry with hook + manifest support.
type Registry struct {
	mu          sync.RWMutex
	order       []CategoryKey
	definitions map[CategoryKey]CategoryDefinition
	providers   map[CategoryKey]CardProvider
}

var _ CategoryRegistry = (*Registry)(nil)

// NewRegistry builds a registry with the default categories and applies
// global hooks.
func NewRegistry() *Registry {
	reg := NewEmptyRegistry()
	reg.registerDefaults()
	_ = reg.ApplyHooks()
	return reg
}

// NewEmptyRegistry builds a registry without defaults, used when categories
// come from a seed manifest.
func NewEmptyRegistry() *Registry {
	return &Registry{
		definitions: map[CategoryKey]CategoryDefinition{},
		providers:   map[CategoryKey]CardProvider{},
	}
}

func (r *Registry) registerDefaults() {
	for _, def := range DefaultCategoryDefinitions() {
		_ = r.RegisterCategory(def)
	}
}

// ApplyHooks executes registered category hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// RegisterCategory stores category metadata. Re-registering a key replaces
// its definition but keeps its position.
func (r *Registry) RegisterCategory(def CategoryDefinition) error {
	if def.Key == "" {
		return fmt.Errorf("category key is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.definitions[def.Key]; !ok {
		r.order = append(r.order, def.Key)
	}
	if def.Label == "" {
		def.Label = string(def.Key)
	}
	if def.Tab == "" {
		def.Tab = fmt.Sprintf("%d", slices.Index(r.order, def.Key)+1)
	}
	r.definitions[def.Key] = def
	return nil
}

// RegisterProvider associates a card provider with a category.
func (r *Registry) RegisterProvider(key CategoryKey, provider CardProvider) error {
	if key == "" {
		return fmt.Errorf("category key is required to register provider")
	}
	if provider == nil {
		return fmt.Errorf("provider cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.definitions[key]; !ok {
		return fmt.Errorf("category %s not found", key)
	}
	r.providers[key] = provider
	return nil
}

// Category fetches a category definition by key.
func (r *Registry) Category(key CategoryKey) (CategoryDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[key]
	return def, ok
}

// Provider fetches a card provider by category key.
func (r *Registry) Provider(key CategoryKey) (CardProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.providers[key]
	return provider, ok
}

// Categories returns all definitions in registration order.
func (r *Registry) Categories() []CategoryDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]CategoryDefinition, 0, len(r.order))
	for _, key := range r.order {
		defs = append(defs, r.definitions[key])
	}
	return defs
}

// ResolveCategoryKey matches loosely typed input ("registry-scan", "cspm",
// "Image", "3") against registered keys, labels and tabs.
func ResolveCategoryKey(reg CategoryRegistry, input string) (CategoryKey, bool) {
	input = strings.TrimSpace(input)
	if input == "" || reg == nil {
		return "", false
	}
	if _, ok := reg.Category(CategoryKey(input)); ok {
		return CategoryKey(input), true
	}
	want := strcase.ToSnake(input)
	for _, def := range reg.Categories() {
		switch {
		case strcase.ToSnake(string(def.Key)) == want,
			strings.EqualFold(def.Label, input),
			def.Tab == input:
			return def.Key, true
		}
	}
	return "", false
}
