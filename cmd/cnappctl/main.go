package main

import (
	"os"

	"github.com/alecthomas/kong"
)

type cli struct {
	Globals

	Init     initCmd     `cmd:"" help:"Write the built-in seed manifest."`
	List     listCmd     `cmd:"" help:"List widgets, optionally for one category."`
	Add      addCmd      `cmd:"" help:"Add or overwrite a widget."`
	Remove   removeCmd   `cmd:"" help:"Remove a widget."`
	Validate validateCmd `cmd:"" help:"Check a manifest against the category schemas."`
	TUI      tuiCmd      `cmd:"" name:"tui" help:"Edit the manifest interactively."`
}

func main() {
	var args cli
	ctx := kong.Parse(&args,
		kong.Name("cnappctl"),
		kong.Description("Manage CNAPP dashboard seed manifests."),
		kong.UsageOnError(),
	)
	args.Out = os.Stdout
	ctx.FatalIfErrorf(ctx.Run(&args.Globals))
}
