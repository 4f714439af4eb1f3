package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/specialistvlad/socketgrid/internal/ctxlog"
	"github.com/specialistvlad/socketgrid/internal/plugin"
	"github.com/specialistvlad/socketgrid/internal/socketserver"
)

// ShutdownEvent is emitted to every connected client, in every namespace,
// before the server stops.
const ShutdownEvent = "server_shutdown"

const (
	defaultShutdownTimeout = 5 * time.Second
	// shutdownNoticeGrace bounds how long connections stay open for the
	// shutdown notice to be flushed.
	shutdownNoticeGrace = 250 * time.Millisecond
)

// Run serves HTTP on the configured address until ctx is cancelled or the
// server fails, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	ln, err := net.Listen("tcp", a.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.config.ListenAddr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.httpServer = &http.Server{Handler: a.Router()}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.httpServer.Serve(ln)
	}()
	a.logger.Info("🚀 Socket server listening", "address", ln.Addr().String(), "socket_path", a.config.SocketPath, "handlers", a.SocketServer().Handlers())

	var serveErr error
	select {
	case <-ctx.Done():
		a.logger.Debug("Context cancelled, shutting down.")
	case err := <-errCh:
		// Serve always returns a non-nil error; ErrServerClosed is the clean case.
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("http server failed: %w", err)
		}
	}

	if err := a.shutdown(context.WithoutCancel(ctx)); err != nil {
		return errors.Join(serveErr, err)
	}
	a.logger.Info("🏁 Socket server stopped.")
	return serveErr
}

// shutdown notifies clients, closes plugins and then stops the HTTP server.
// Plugins close first so long-polling clients are released.
func (a *App) shutdown(ctx context.Context) error {
	timeout := a.config.ShutdownTimeoutDuration()
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	a.notifyShutdown(shutdownCtx)

	var errs []error
	if err := a.plugins.Close(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("Shutting down http server...")
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown failed", "error", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// notifyShutdown emits ShutdownEvent in every namespace and waits briefly so
// the packets leave before the connections are closed.
func (a *App) notifyShutdown(ctx context.Context) {
	io, err := plugin.SocketAPI(a.plugins)
	if err != nil {
		a.logger.Warn("Skipping shutdown notice.", "error", err)
		return
	}
	server := a.SocketServer()

	namespaces := server.Namespaces()
	if !slices.Contains(namespaces, socketserver.DefaultNamespace) {
		namespaces = append(namespaces, socketserver.DefaultNamespace)
	}
	for _, ns := range namespaces {
		io.Of(ns, nil).Emit(ShutdownEvent)
	}

	clients := server.Clients()
	a.logger.Debug("Shutdown notice sent.", "namespaces", namespaces, "clients", clients)
	if clients == 0 {
		return
	}

	timer := time.NewTimer(shutdownNoticeGrace)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
