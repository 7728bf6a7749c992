package dashboard

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// SeedManifest models a YAML document describing categories and the widgets
// they start with.
type SeedManifest struct {
	Version    string             `json:"version" yaml:"version"`
	Name       string             `json:"name,omitempty" yaml:"name,omitempty"`
	Categories []ManifestCategory `json:"categories" yaml:"categories"`
	Source     string             `json:"-" yaml:"-"`
}

// ManifestCategory describes a single category within a manifest.
type ManifestCategory struct {
	Key     CategoryKey    `json:"key" yaml:"key"`
	Label   string         `json:"label,omitempty" yaml:"label,omitempty"`
	Tab     string         `json:"tab,omitempty" yaml:"tab,omitempty"`
	Title   string         `json:"title,omitempty" yaml:"title,omitempty"`
	Schema  map[string]any `json:"schema,omitempty" yaml:"schema,omitempty"`
	Widgets []WidgetItem   `json:"widgets" yaml:"widgets"`
}

// Definition returns the category metadata.
func (c ManifestCategory) Definition() CategoryDefinition {
	return CategoryDefinition{
		Key:    c.Key,
		Label:  c.Label,
		Tab:    c.Tab,
		Title:  c.Title,
		Schema: c.Schema,
	}
}

// DefaultManifest describes the built-in categories and seed widgets.
func DefaultManifest() *SeedManifest {
	return NewManifest(DefaultState(), NewRegistry())
}

// NewManifest captures state (and the registry metadata for its categories)
// as a manifest, e.g. to write the CLI's working copy back to disk.
func NewManifest(state DashboardState, registry CategoryRegistry) *SeedManifest {
	doc := &SeedManifest{Version: manifestVersionV1}
	for _, snapshot := range state.Snapshot() {
		category := ManifestCategory{Key: snapshot.Key, Widgets: snapshot.Widgets}
		if registry != nil {
			if def, ok := registry.Category(snapshot.Key); ok {
				category.Label = def.Label
				category.Tab = def.Tab
				category.Title = def.Title
				category.Schema = def.Schema
			}
		}
		doc.Categories = append(doc.Categories, category)
	}
	return doc
}

// State builds revision zero of a dashboard from the manifest.
func (doc *SeedManifest) State() DashboardState {
	seeds := make([]CategorySeed, 0, len(doc.Categories))
	for _, category := range doc.Categories {
		seeds = append(seeds, CategorySeed{Key: category.Key, Widgets: category.Widgets})
	}
	return NewState(seeds...)
}

// LoadManifestFile reads a manifest from disk, registers its categories
// against the registry, and returns the document.
func (r *Registry) LoadManifestFile(path string) (*SeedManifest, error) {
	doc, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	if err := r.LoadManifestDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadManifestDocument registers category definitions from a decoded manifest.
func (r *Registry) LoadManifestDocument(doc *SeedManifest) error {
	if doc == nil {
		return fmt.Errorf("dashboard: manifest document is nil")
	}
	for _, category := range doc.Categories {
		if err := r.RegisterCategory(category.Definition()); err != nil {
			return fmt.Errorf("dashboard: register category %s from %s: %w", category.Key, doc.Source, err)
		}
	}
	return nil
}

// ReadManifest loads a manifest file from disk without registering it.
func ReadManifest(path string) (*SeedManifest, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("dashboard: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader.
func DecodeManifest(r io.Reader) (*SeedManifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc SeedManifest
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("dashboard: manifest is empty")
		}
		return nil, fmt.Errorf("dashboard: parse manifest: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// EncodeManifest writes the manifest as YAML.
func EncodeManifest(w io.Writer, doc *SeedManifest) error {
	if doc == nil {
		return fmt.Errorf("dashboard: manifest document is nil")
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("dashboard: encode manifest: %w", err)
	}
	return encoder.Close()
}

// WriteManifest replaces the manifest file at path.
func WriteManifest(path string, doc *SeedManifest) error {
	f, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("dashboard: create manifest %s: %w", path, err)
	}
	if err := EncodeManifest(f, doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Validate ensures the manifest satisfies required fields.
func (doc *SeedManifest) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("dashboard: unsupported manifest version %q", doc.Version)
	}
	if len(doc.Categories) == 0 {
		return fmt.Errorf("dashboard: manifest declares no categories")
	}
	seen := make(map[CategoryKey]struct{}, len(doc.Categories))
	for idx, category := range doc.Categories {
		if category.Key == "" {
			return fmt.Errorf("dashboard: manifest category at index %d is missing key", idx)
		}
		if _, exists := seen[category.Key]; exists {
			return fmt.Errorf("dashboard: manifest duplicates category %s", category.Key)
		}
		seen[category.Key] = struct{}{}
		names := make(map[string]struct{}, len(category.Widgets))
		for _, widget := range category.Widgets {
			if _, exists := names[widget.Name]; exists {
				return fmt.Errorf("dashboard: manifest category %s duplicates widget %q", category.Key, widget.Name)
			}
			names[widget.Name] = struct{}{}
		}
	}
	return nil
}

func (doc *SeedManifest) applyDefaults() {
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
}
