package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-cnapp-dashboard/components/dashboard"
	"github.com/goliatone/go-cnapp-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-cnapp-dashboard/components/dashboard/gorouter"
	"github.com/goliatone/go-cnapp-dashboard/components/dashboard/httpapi"
	"github.com/goliatone/go-cnapp-dashboard/internal/config"
)

const shutdownTimeout = 5 * time.Second

type cli struct {
	Config    string `short:"c" type:"path" help:"Path to a YAML config file."`
	Addr      string `help:"Listen address (overrides config)."`
	Seed      string `type:"path" help:"Seed manifest to load instead of the built-in widgets."`
	Templates string `type:"existingdir" help:"Directory with a dashboard.html overriding the embedded page."`
	Transport string `default:"fiber" enum:"fiber,http" help:"HTTP stack: fiber (go-router) or http (net/http mux)."`
}

func main() {
	var args cli
	kctx := kong.Parse(&args,
		kong.Name("cnappd"),
		kong.Description("Serves the CNAPP posture dashboard."),
		kong.UsageOnError(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kctx.FatalIfErrorf(run(ctx, args))
}

func run(ctx context.Context, args cli) error {
	cfg, err := config.Load(args.Config)
	if err != nil {
		return err
	}
	if args.Addr != "" {
		cfg.Addr = args.Addr
	}
	if args.Seed != "" {
		cfg.SeedPath = args.Seed
	}
	if args.Templates != "" {
		cfg.TemplatesDir = args.Templates
	}

	logger := cfg.Log.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("cnappd starting",
		"addr", cfg.Addr,
		"transport", args.Transport,
		"dashboard", cfg.BasePath+"/dashboard",
		"categories", len(app.service.Registry().Categories()),
	)

	if args.Transport == "http" {
		return app.serveHTTP(ctx, cfg)
	}
	return app.serveFiber(ctx, cfg)
}

type app struct {
	logger     *slog.Logger
	service    *dashboard.Service
	controller *dashboard.Controller
	executor   *httpapi.CommandExecutor
	broadcast  *dashboard.BroadcastHook
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	charts := dashboard.NewChartCache(cfg.Charts.CacheTTL)
	dashboard.RegisterCategoryHook(dashboard.BindCardProvider(dashboard.NewPostureCardProvider(
		dashboard.WithChartTheme(cfg.Charts.Theme),
		dashboard.WithChartAssetsHost(cfg.Charts.AssetsHost),
		dashboard.WithChartColors(cfg.Charts.Colors...),
		dashboard.WithChartCache(charts),
	)))

	boot, err := dashboard.LoadBootstrap(cfg.SeedPath)
	if err != nil {
		return nil, fmt.Errorf("cnappd: load seed: %w", err)
	}

	telemetry := dashboard.NewSlogTelemetry(logger.With("component", "dashboard"))
	broadcast := dashboard.NewBroadcastHook()

	service := dashboard.NewService(dashboard.Options{
		Store:            dashboard.NewStore(boot.State),
		Registry:         boot.Registry,
		ValidatePayloads: cfg.ValidatePayloads,
		RefreshHook:      dashboard.RefreshHooks{broadcast, charts.RefreshHook()},
		Telemetry:        telemetry,
	})

	seed := commands.NewSeedDashboardCommand(service, telemetry)
	if err := seed.Execute(ctx, commands.SeedDashboardInput{
		Path:     cfg.SeedPath,
		Manifest: boot.Manifest,
	}); err != nil {
		return nil, fmt.Errorf("cnappd: seed dashboard: %w", err)
	}

	renderer, err := newRenderer(cfg.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("cnappd: templates: %w", err)
	}

	return &app{
		logger:  logger,
		service: service,
		controller: dashboard.NewController(dashboard.ControllerOptions{
			Service:  service,
			Renderer: renderer,
		}),
		executor:  httpapi.NewCommandExecutor(service, telemetry),
		broadcast: broadcast,
	}, nil
}

func (a *app) serveFiber(ctx context.Context, cfg config.Config) error {
	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: a.controller,
		API:        a.executor,
		Broadcast:  a.broadcast,
		BasePath:   cfg.BasePath,
	}); err != nil {
		return fmt.Errorf("cnappd: register routes: %w", err)
	}

	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return server.Serve(cfg.Addr)
	})
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Debug("shutting down fiber server")
		return server.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}

func (a *app) serveHTTP(ctx context.Context, cfg config.Config) error {
	handlers := &httpapi.Handlers{Executor: a.executor, Broadcast: a.broadcast}
	mux := handlers.Mux(cfg.BasePath)
	mux.HandleFunc("GET "+cfg.BasePath+"/dashboard", a.handlePage)

	eg, egctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: mux,
		BaseContext: func(net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("cnappd: server error: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Debug("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}

func (a *app) handlePage(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	req := dashboard.LayoutRequest{SearchTerm: r.URL.Query().Get("q")}
	if err := a.controller.RenderTemplate(r.Context(), req, &buf); err != nil {
		a.logger.Error("render dashboard", "error", err)
		http.Error(w, err.Error(), httpapi.StatusFor(err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func newRenderer(dir string) (dashboard.Renderer, error) {
	if dir == "" {
		return dashboard.NewTemplateRenderer()
	}
	return dashboard.NewTemplateRendererFS(os.DirFS(dir), ".")
}
