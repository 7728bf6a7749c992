package dashboard

import (
	"encoding/json"
	"reflect"
	"slices"
	"strings"
)

// DashboardState is an immutable snapshot of every category and its widgets.
// Mutations return a new value; untouched categories are shared between
// revisions and never modified in place.
type DashboardState struct {
	order      []CategoryKey
	categories map[CategoryKey]*categoryWidgets
	revision   uint64
}

type categoryWidgets struct {
	names   []string
	entries map[string]WidgetEntry
}

// CategorySeed lists the widgets a category starts with.
type CategorySeed struct {
	Key     CategoryKey
	Widgets []WidgetItem
}

// CategorySnapshot is the ordered, serializable view of one category.
type CategorySnapshot struct {
	Key     CategoryKey  `json:"key"`
	Widgets []WidgetItem `json:"widgets"`
}

// NewState builds revision zero of a dashboard from the given seeds. Category
// order follows the seed order; repeated keys merge into the first occurrence.
func NewState(seeds ...CategorySeed) DashboardState {
	state := DashboardState{
		categories: make(map[CategoryKey]*categoryWidgets, len(seeds)),
	}
	for _, seed := range seeds {
		cat, ok := state.categories[seed.Key]
		if !ok {
			cat = &categoryWidgets{entries: map[string]WidgetEntry{}}
			state.categories[seed.Key] = cat
			state.order = append(state.order, seed.Key)
		}
		for _, item := range seed.Widgets {
			cat.put(item.Name, item.Entry)
		}
	}
	return state
}

// Revision increases by one for every effective mutation.
func (s DashboardState) Revision() uint64 {
	return s.revision
}

// Categories returns the category keys in seed order.
func (s DashboardState) Categories() []CategoryKey {
	return slices.Clone(s.order)
}

// HasCategory reports whether key is part of the state.
func (s DashboardState) HasCategory(key CategoryKey) bool {
	_, ok := s.categories[key]
	return ok
}

// Widget returns a copy of a single entry.
func (s DashboardState) Widget(category CategoryKey, name string) (WidgetEntry, bool) {
	cat, ok := s.categories[category]
	if !ok {
		return nil, false
	}
	entry, ok := cat.entries[name]
	if !ok {
		return nil, false
	}
	return entry.Clone(), true
}

// AddWidget inserts or overwrites category.widgets[name]. An overwritten
// widget keeps its position.
func (s DashboardState) AddWidget(category CategoryKey, name string, payload WidgetEntry) (DashboardState, error) {
	cat, ok := s.categories[category]
	if !ok {
		return s, unknownCategory(category)
	}
	next := cat.clone()
	next.put(name, payload)
	return s.with(category, next), nil
}

// RemoveWidget deletes the named widget. Removing an absent widget returns
// the receiver unchanged.
func (s DashboardState) RemoveWidget(category CategoryKey, name string) (DashboardState, error) {
	cat, ok := s.categories[category]
	if !ok {
		return s, unknownCategory(category)
	}
	if _, exists := cat.entries[name]; !exists {
		return s, nil
	}
	next := cat.clone()
	delete(next.entries, name)
	next.names = slices.DeleteFunc(next.names, func(n string) bool { return n == name })
	return s.with(category, next), nil
}

// FilteredWidgets returns the widgets of category whose name contains term,
// compared case-insensitively, in insertion order. An empty term matches all.
func (s DashboardState) FilteredWidgets(category CategoryKey, term string) ([]WidgetItem, error) {
	cat, ok := s.categories[category]
	if !ok {
		return nil, unknownCategory(category)
	}
	needle := strings.ToLower(term)
	out := make([]WidgetItem, 0, len(cat.names))
	for _, name := range cat.names {
		if needle != "" && !strings.Contains(strings.ToLower(name), needle) {
			continue
		}
		out = append(out, WidgetItem{Name: name, Entry: cat.entries[name].Clone()})
	}
	return out, nil
}

// Snapshot returns every category with its widgets in order.
func (s DashboardState) Snapshot() []CategorySnapshot {
	out := make([]CategorySnapshot, 0, len(s.order))
	for _, key := range s.order {
		widgets, _ := s.FilteredWidgets(key, "")
		out = append(out, CategorySnapshot{Key: key, Widgets: widgets})
	}
	return out
}

// Equal compares category order, widget order and payloads. Revisions are
// ignored.
func (s DashboardState) Equal(other DashboardState) bool {
	if !slices.Equal(s.order, other.order) {
		return false
	}
	for _, key := range s.order {
		a, b := s.categories[key], other.categories[key]
		if a == b {
			continue
		}
		if !slices.Equal(a.names, b.names) {
			return false
		}
		for _, name := range a.names {
			if !reflect.DeepEqual(a.entries[name], b.entries[name]) {
				return false
			}
		}
	}
	return true
}

// MarshalJSON encodes the ordered snapshot.
func (s DashboardState) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Revision   uint64             `json:"revision"`
		Categories []CategorySnapshot `json:"categories"`
	}{
		Revision:   s.revision,
		Categories: s.Snapshot(),
	})
}

func (s DashboardState) with(key CategoryKey, cat *categoryWidgets) DashboardState {
	categories := make(map[CategoryKey]*categoryWidgets, len(s.categories))
	for k, v := range s.categories {
		categories[k] = v
	}
	categories[key] = cat
	return DashboardState{
		order:      s.order,
		categories: categories,
		revision:   s.revision + 1,
	}
}

func (c *categoryWidgets) clone() *categoryWidgets {
	entries := make(map[string]WidgetEntry, len(c.entries)+1)
	for k, v := range c.entries {
		entries[k] = v
	}
	return &categoryWidgets{
		names:   slices.Clone(c.names),
		entries: entries,
	}
}

func (c *categoryWidgets) put(name string, payload WidgetEntry) {
	if _, exists := c.entries[name]; !exists {
		c.names = append(c.names, name)
	}
	c.entries[name] = payload.Clone()
}
