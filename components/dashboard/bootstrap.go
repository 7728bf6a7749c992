package dashboard

import (
	"context"
	"errors"
	"fmt"
)

// Bootstrap bundles the registry and initial state a process starts with.
type Bootstrap struct {
	Registry *Registry
	State    DashboardState
	Manifest *SeedManifest
}

// LoadBootstrap returns the default categories and seed widgets, or the ones
// described by the manifest at seedPath when it is set.
func LoadBootstrap(seedPath string) (Bootstrap, error) {
	if seedPath == "" {
		return Bootstrap{
			Registry: NewRegistry(),
			State:    DefaultState(),
			Manifest: DefaultManifest(),
		}, nil
	}
	registry := NewEmptyRegistry()
	doc, err := registry.LoadManifestFile(seedPath)
	if err != nil {
		return Bootstrap{}, err
	}
	if err := registry.ApplyHooks(); err != nil {
		return Bootstrap{}, fmt.Errorf("dashboard: apply category hooks: %w", err)
	}
	return Bootstrap{
		Registry: registry,
		State:    doc.State(),
		Manifest: doc,
	}, nil
}

// SeedFromManifest replaces the service state with the manifest's widgets
// after validating every payload against its category schema.
func SeedFromManifest(ctx context.Context, service *Service, doc *SeedManifest) error {
	if service == nil {
		return errors.New("dashboard: service is required to seed the dashboard")
	}
	if doc == nil {
		return errors.New("dashboard: manifest document is nil")
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	registry := service.Registry()
	var seedErr error
	for _, category := range doc.Categories {
		if _, ok := registry.Category(category.Key); !ok {
			if err := registry.RegisterCategory(category.Definition()); err != nil {
				seedErr = errors.Join(seedErr, err)
				continue
			}
		}
		for _, widget := range category.Widgets {
			if err := service.validatePayload(category.Key, widget.Entry); err != nil {
				seedErr = errors.Join(seedErr, fmt.Errorf("%s/%s: %w", category.Key, widget.Name, err))
			}
		}
	}
	if seedErr != nil {
		return seedErr
	}
	return service.Seed(ctx, doc.State())
}
