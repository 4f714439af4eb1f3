package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/socketgrid/internal/config"
	"github.com/specialistvlad/socketgrid/internal/ctxlog"
	"github.com/specialistvlad/socketgrid/internal/plugin"
	"github.com/specialistvlad/socketgrid/internal/socketevent"
	"github.com/specialistvlad/socketgrid/internal/socketserver"
	"golang.org/x/sync/errgroup"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *config.Config
	registry   *socketevent.Registry
	plugins    *plugin.Container
	socket     *socketserver.Plugin
	httpServer *http.Server
}

// NewApp assembles the application: modules declare their socket events, the
// socket plugin builds the live server and mounts them. Any failure here is
// fatal; the returned App is ready to Run.
func NewApp(outW io.Writer, cfg *config.Config, modules ...socketevent.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := socketevent.NewRegistry()
	if len(modules) == 0 {
		modules = coreModules
	}
	if err := registerModules(ctx, reg, modules); err != nil {
		return nil, err
	}
	logger.Debug("All socket modules registered.", "modules", len(modules), "declarations", reg.Len())

	plugins := plugin.NewContainer()
	socketPlugin := socketserver.NewPlugin(reg, socketserver.Options{
		Path:         cfg.SocketPath,
		Transports:   cfg.Transports,
		PingInterval: cfg.PingIntervalDuration(),
		PingTimeout:  cfg.PingTimeoutDuration(),
		CorsOrigins:  cfg.CorsOrigins,
	})
	if err := plugins.Install(socketPlugin); err != nil {
		return nil, err
	}
	if err := plugins.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize plugins: %w", err)
	}
	if _, err := plugin.SocketAPI(plugins); err != nil {
		return nil, err
	}

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		plugins:  plugins,
		socket:   socketPlugin,
	}, nil
}

// registerModules lets every module declare its events. Modules run in
// parallel; a module that panics is reported as an error.
func registerModules(ctx context.Context, reg *socketevent.Registry, modules []socketevent.Module) error {
	logger := ctxlog.FromContext(ctx)
	var g errgroup.Group
	for _, mod := range modules {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("module %T panicked during registration: %v", mod, r)
				}
			}()
			logger.Debug("Registering socket module.", "module", fmt.Sprintf("%T", mod))
			mod.Register(reg)
			return nil
		})
	}
	return g.Wait()
}

// Registry returns the application's event registry. This is primarily for testing.
func (a *App) Registry() *socketevent.Registry {
	return a.registry
}

// Plugins returns the application's plugin container.
func (a *App) Plugins() *plugin.Container {
	return a.plugins
}

// SocketServer returns the live socket server, or nil once the app has shut
// down.
func (a *App) SocketServer() *socketserver.Server {
	return a.socket.Server()
}
