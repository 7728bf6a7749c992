package dashboard

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBootstrapDefaults(t *testing.T) {
	boot, err := LoadBootstrap("")
	require.NoError(t, err)
	assert.True(t, boot.State.Equal(DefaultState()))
	assert.Len(t, boot.Registry.Categories(), 4)
	assert.Len(t, boot.Manifest.Categories, 4)
}

func TestLoadBootstrapFromManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	doc := &SeedManifest{
		Version: ManifestVersion,
		Categories: []ManifestCategory{
			{Key: "Custom", Label: "Custom", Widgets: []WidgetItem{{Name: "one", Entry: WidgetEntry{"description": "x"}}}},
		},
	}
	require.NoError(t, WriteManifest(path, doc))

	boot, err := LoadBootstrap(path)
	require.NoError(t, err)
	assert.Equal(t, []CategoryKey{"Custom"}, boot.State.Categories())
	_, ok := boot.Registry.Category("Custom")
	assert.True(t, ok)

	_, err = LoadBootstrap(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestSeedFromManifest(t *testing.T) {
	service := NewService(Options{Store: NewDefaultStore(), ValidatePayloads: true})
	doc := DefaultManifest()
	doc.Categories = append(doc.Categories, ManifestCategory{Key: "Extra"})

	require.NoError(t, SeedFromManifest(context.Background(), service, doc))
	state, err := service.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, state.Categories(), 5)
	_, ok := service.Registry().Category("Extra")
	assert.True(t, ok)
}

func TestSeedFromManifestRejectsInvalidPayloads(t *testing.T) {
	service := NewService(Options{Store: NewDefaultStore(), ValidatePayloads: true})
	doc := DefaultManifest()
	doc.Categories[0].Widgets = append(doc.Categories[0].Widgets, WidgetItem{
		Name:  "broken",
		Entry: WidgetEntry{"connected": "many"},
	})

	err := SeedFromManifest(context.Background(), service, doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CSPMExclusiveDashboard/broken")
	require.ErrorIs(t, err, ErrInvalidPayload)

	state, _ := service.Snapshot(context.Background())
	assert.True(t, state.Equal(DefaultState()), "state must be untouched")

	require.Error(t, SeedFromManifest(context.Background(), nil, doc))
	require.Error(t, SeedFromManifest(context.Background(), service, nil))
}

func TestSeedFromManifestSkipsValidationWhenDisabled(t *testing.T) {
	service := NewService(Options{Store: NewDefaultStore()})
	doc := DefaultManifest()
	doc.Categories[0].Widgets = append(doc.Categories[0].Widgets, WidgetItem{
		Name:  "loose",
		Entry: WidgetEntry{"connected": "many"},
	})

	require.NoError(t, SeedFromManifest(context.Background(), service, doc))
	state, err := service.Snapshot(context.Background())
	require.NoError(t, err)
	_, ok := state.Widget(CategoryCSPM, "loose")
	assert.True(t, ok)

	_, err = service.AddWidget(context.Background(), AddWidgetRequest{
		Category: CategoryCSPM,
		Name:     "also loose",
		Payload:  WidgetEntry{"connected": -4},
	})
	require.NoError(t, err)
}

func TestLoadBootstrapAppliesCategoryHooks(t *testing.T) {
	globalHookMu.Lock()
	saved := globalHooks
	globalHooks = nil
	globalHookMu.Unlock()
	t.Cleanup(func() {
		globalHookMu.Lock()
		globalHooks = saved
		globalHookMu.Unlock()
	})

	custom := CardProviderFunc(func(context.Context, CardContext) (CardData, error) {
		return CardData{"source": "hook"}, nil
	})
	ticket := CardProviderFunc(func(context.Context, CardContext) (CardData, error) {
		return CardData{"source": "ticket"}, nil
	})
	RegisterCategoryHook(func(reg *Registry) error {
		return reg.RegisterProvider(CategoryTicket, ticket)
	})
	RegisterCategoryHook(BindCardProvider(custom))

	boot, err := LoadBootstrap("")
	require.NoError(t, err)
	for _, def := range boot.Registry.Categories() {
		_, ok := boot.Registry.Provider(def.Key)
		assert.True(t, ok, def.Key)
	}

	service := NewService(Options{Store: NewStore(boot.State), Registry: boot.Registry})
	layout, err := service.ConfigureLayout(context.Background(), LayoutRequest{})
	require.NoError(t, err)
	for _, section := range layout.Categories {
		want := "hook"
		if section.Key == CategoryTicket {
			want = "ticket"
		}
		for _, card := range section.Widgets {
			assert.Equal(t, want, card.Data["source"], section.Key)
		}
	}
}
