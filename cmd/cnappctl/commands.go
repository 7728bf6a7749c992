package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/goliatone/go-cnapp-dashboard/components/dashboard"
	"github.com/goliatone/go-cnapp-dashboard/components/dashboard/tui"
)

// Globals are shared by every subcommand.
type Globals struct {
	Manifest string    `short:"m" type:"path" default:"cnapp-dashboard.yaml" help:"Seed manifest to operate on."`
	Out      io.Writer `kong:"-"`
}

func (g *Globals) out() io.Writer {
	if g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// workspace is a manifest loaded into a registry and state.
type workspace struct {
	doc      *dashboard.SeedManifest
	registry *dashboard.Registry
	state    dashboard.DashboardState
}

func (g *Globals) load() (*workspace, error) {
	doc, err := dashboard.ReadManifest(g.Manifest)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	registry := dashboard.NewEmptyRegistry()
	if err := registry.LoadManifestDocument(doc); err != nil {
		return nil, err
	}
	return &workspace{doc: doc, registry: registry, state: doc.State()}, nil
}

func (g *Globals) save(ws *workspace) error {
	doc := dashboard.NewManifest(ws.state, ws.registry)
	doc.Name = ws.doc.Name
	return dashboard.WriteManifest(g.Manifest, doc)
}

func (ws *workspace) category(input string) (dashboard.CategoryKey, error) {
	key, ok := dashboard.ResolveCategoryKey(ws.registry, input)
	if !ok {
		return "", &dashboard.UnknownCategoryError{Key: dashboard.CategoryKey(input)}
	}
	return key, nil
}

type initCmd struct {
	Force bool `help:"Overwrite an existing manifest."`
}

func (cmd *initCmd) Run(g *Globals) error {
	if _, err := os.Stat(g.Manifest); err == nil && !cmd.Force {
		return fmt.Errorf("cnappctl: %s already exists (use --force to replace)", g.Manifest)
	}
	if err := dashboard.WriteManifest(g.Manifest, dashboard.DefaultManifest()); err != nil {
		return err
	}
	fmt.Fprintf(g.out(), "wrote %s\n", g.Manifest)
	return nil
}

type listCmd struct {
	Category string `arg:"" optional:"" help:"Category key, label or tab number."`
	Search   string `short:"s" help:"Case-insensitive widget name filter."`
}

func (cmd *listCmd) Run(g *Globals) error {
	ws, err := g.load()
	if err != nil {
		return err
	}
	keys := ws.state.Categories()
	if cmd.Category != "" {
		key, err := ws.category(cmd.Category)
		if err != nil {
			return err
		}
		keys = []dashboard.CategoryKey{key}
	}

	t := table.NewWriter()
	t.SetOutputMirror(g.out())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Tab", "Category", "Widget", "Kind", "Fields"})
	for _, key := range keys {
		items, err := ws.state.FilteredWidgets(key, cmd.Search)
		if err != nil {
			return err
		}
		def, _ := ws.registry.Category(key)
		for _, item := range items {
			kind := dashboard.DecodePayload(key, item.Entry).Kind()
			t.AppendRow(table.Row{def.Tab, def.Label, item.Name, kind, formatFields(item.Entry)})
		}
	}
	t.Render()
	return nil
}

type addCmd struct {
	Category    string            `arg:"" help:"Category key, label or tab number."`
	Name        string            `arg:"" help:"Widget name."`
	Description string            `short:"d" help:"Widget description."`
	Set         map[string]string `help:"Payload fields as key=value; numeric values are stored as numbers."`
}

func (cmd *addCmd) Run(g *Globals) error {
	ws, err := g.load()
	if err != nil {
		return err
	}
	key, err := ws.category(cmd.Category)
	if err != nil {
		return err
	}
	if strings.TrimSpace(cmd.Name) == "" {
		return dashboard.ErrWidgetNameRequired
	}
	entry := dashboard.WidgetEntry{}
	for field, raw := range cmd.Set {
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			entry[field] = n
			continue
		}
		entry[field] = raw
	}
	if cmd.Description != "" {
		entry["description"] = cmd.Description
	}
	if ws.state, err = ws.state.AddWidget(key, cmd.Name, entry); err != nil {
		return err
	}
	if err := g.save(ws); err != nil {
		return err
	}
	fmt.Fprintf(g.out(), "added %q to %s\n", cmd.Name, key)
	return nil
}

type removeCmd struct {
	Category string `arg:"" help:"Category key, label or tab number."`
	Name     string `arg:"" help:"Widget name."`
}

func (cmd *removeCmd) Run(g *Globals) error {
	ws, err := g.load()
	if err != nil {
		return err
	}
	key, err := ws.category(cmd.Category)
	if err != nil {
		return err
	}
	next, err := ws.state.RemoveWidget(key, cmd.Name)
	if err != nil {
		return err
	}
	if next.Revision() == ws.state.Revision() {
		fmt.Fprintf(g.out(), "%q not present in %s\n", cmd.Name, key)
		return nil
	}
	ws.state = next
	if err := g.save(ws); err != nil {
		return err
	}
	fmt.Fprintf(g.out(), "removed %q from %s\n", cmd.Name, key)
	return nil
}

type validateCmd struct{}

func (cmd *validateCmd) Run(g *Globals) error {
	ws, err := g.load()
	if err != nil {
		return err
	}
	service := dashboard.NewService(dashboard.Options{
		Store:            dashboard.NewStore(ws.state),
		Registry:         ws.registry,
		ValidatePayloads: true,
	})
	if err := dashboard.SeedFromManifest(context.Background(), service, ws.doc); err != nil {
		return err
	}
	widgets := 0
	for _, category := range ws.doc.Categories {
		widgets += len(category.Widgets)
	}
	fmt.Fprintf(g.out(), "%s: %d categories, %d widgets ok\n", g.Manifest, len(ws.doc.Categories), widgets)
	return nil
}

type tuiCmd struct {
	NoSave bool `help:"Discard changes on exit."`
}

func (cmd *tuiCmd) Run(g *Globals) error {
	ws, err := g.load()
	if errors.Is(err, os.ErrNotExist) {
		doc := dashboard.DefaultManifest()
		registry := dashboard.NewEmptyRegistry()
		if err := registry.LoadManifestDocument(doc); err != nil {
			return err
		}
		ws, err = &workspace{doc: doc, registry: registry, state: doc.State()}, nil
	}
	if err != nil {
		return err
	}
	service := dashboard.NewService(dashboard.Options{
		Store:    dashboard.NewStore(ws.state),
		Registry: ws.registry,
	})
	final, err := tui.Run(context.Background(), service)
	if err != nil {
		return err
	}
	if cmd.NoSave || final.Revision() == ws.state.Revision() {
		return nil
	}
	ws.state = final
	return g.save(ws)
}

func formatFields(entry dashboard.WidgetEntry) string {
	keys := make([]string, 0, len(entry))
	for key := range entry {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", key, entry[key]))
	}
	return strings.Join(parts, " ")
}
