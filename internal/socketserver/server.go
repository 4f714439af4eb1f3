// Package socketserver binds declared socket events onto a live Socket.IO
// server and exposes that server as a plugin.
package socketserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/socketgrid/internal/ctxlog"
	"github.com/specialistvlad/socketgrid/internal/socketevent"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
)

// DefaultNamespace is used for declarations that do not name a namespace.
const DefaultNamespace = "/"

// ErrAlreadyMounted is returned when Mount is called a second time.
var ErrAlreadyMounted = errors.New("socket events already mounted")

// Options configures the underlying Socket.IO server.
type Options struct {
	Path         string
	Transports   []string
	PingInterval time.Duration
	PingTimeout  time.Duration
	CorsOrigins  []string
}

type binding struct {
	event   string
	handler socketevent.Handler
}

// Server wraps a live *socket.Server with a per-namespace table of event
// handlers. Each namespace gets a single connection listener that attaches the
// namespace's handlers, in declaration order, to every new client socket.
type Server struct {
	io     *socket.Server
	opts   *socket.ServerOptions
	logger *slog.Logger

	mu       sync.Mutex
	bindings map[string][]binding

	mounted     atomic.Bool
	clients     atomic.Int64
	handlerOnce sync.Once
	handler     http.Handler
}

// New creates the live Socket.IO server. No listener is started; serve the
// result of Handler from an HTTP server.
func New(ctx context.Context, o Options) *Server {
	opts := socket.DefaultServerOptions()
	if o.Path != "" {
		opts.SetPath(o.Path)
	}
	if len(o.Transports) > 0 {
		opts.SetTransports(types.NewSet(o.Transports...))
	}
	if o.PingInterval > 0 {
		opts.SetPingInterval(o.PingInterval)
	}
	if o.PingTimeout > 0 {
		opts.SetPingTimeout(o.PingTimeout)
	}
	if len(o.CorsOrigins) > 0 {
		origins := make([]any, 0, len(o.CorsOrigins))
		for _, origin := range o.CorsOrigins {
			origins = append(origins, origin)
		}
		opts.SetCors(&types.Cors{Origin: origins, Credentials: true})
	}

	return &Server{
		io:       socket.NewServer(nil, opts),
		opts:     opts,
		logger:   ctxlog.FromContext(ctx).With("component", "socketserver"),
		bindings: make(map[string][]binding),
	}
}

// IO returns the wrapped Socket.IO server.
func (s *Server) IO() *socket.Server {
	return s.io
}

// Handler returns the http.Handler serving the Socket.IO endpoint.
func (s *Server) Handler() http.Handler {
	s.handlerOnce.Do(func() {
		s.handler = s.io.ServeHandler(s.opts)
	})
	return s.handler
}

// Register binds handler to event in namespace. An empty namespace means the
// default one. Registering the same event twice keeps both handlers; the
// library calls every listener of an event.
func (s *Server) Register(event string, handler socketevent.Handler, namespace string) error {
	if event == "" {
		return fmt.Errorf("socket event in namespace '%s' has an empty name", namespaceOrDefault(namespace))
	}
	if handler == nil {
		return fmt.Errorf("socket event '%s' has no handler", event)
	}

	ns := namespaceOrDefault(namespace)
	s.mu.Lock()
	_, attached := s.bindings[ns]
	s.bindings[ns] = append(s.bindings[ns], binding{event: event, handler: handler})
	s.mu.Unlock()

	if !attached {
		s.logger.Debug("Attaching connection listener.", "namespace", ns)
		s.io.Of(ns, nil).On("connection", s.onConnection(ns))
	}
	s.logger.Debug("Socket event bound.", "event", event, "namespace", ns)
	return nil
}

// Mount drains reg and binds every declaration. It must run once, after the
// server is built and before it accepts connections. Declarations the server
// rejects are reported together; the rest are still bound.
func (s *Server) Mount(ctx context.Context, reg *socketevent.Registry) (int, error) {
	logger := ctxlog.FromContext(ctx)
	if !s.mounted.CompareAndSwap(false, true) {
		return 0, ErrAlreadyMounted
	}

	decls := reg.Drain()
	logger.Debug("Mounting socket events.", "declarations", len(decls))

	var errs []error
	bound := 0
	for _, d := range decls {
		if err := s.Register(d.Event, d.Handler, d.Namespace); err != nil {
			logger.Error("Rejected socket event declaration.", "event", d.Event, "namespace", d.Namespace, "error", err)
			errs = append(errs, err)
			continue
		}
		bound++
	}

	if len(errs) > 0 {
		return bound, fmt.Errorf("failed to mount %d socket event(s): %w", len(errs), errors.Join(errs...))
	}
	logger.Info("Socket events mounted.", "count", bound)
	return bound, nil
}

// Mounted reports whether Mount has run.
func (s *Server) Mounted() bool {
	return s.mounted.Load()
}

// Handlers returns the number of bound handlers across all namespaces.
func (s *Server) Handlers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, bs := range s.bindings {
		n += len(bs)
	}
	return n
}

// Namespaces returns the namespaces that have at least one handler.
func (s *Server) Namespaces() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.bindings))
	for ns := range s.bindings {
		out = append(out, ns)
	}
	slices.Sort(out)
	return out
}

// Clients returns the number of connected client sockets across namespaces.
func (s *Server) Clients() int {
	return int(s.clients.Load())
}

// Close disconnects every client and closes the underlying server.
func (s *Server) Close() {
	s.logger.Debug("Closing socket.io server.")
	s.io.Close(nil)
}

func (s *Server) onConnection(ns string) func(...any) {
	return func(clients ...any) {
		if len(clients) == 0 {
			return
		}
		client, ok := clients[0].(*socket.Socket)
		if !ok {
			s.logger.Error("Unexpected connection argument.", "namespace", ns, "type", fmt.Sprintf("%T", clients[0]))
			return
		}

		c := &conn{client: client, namespace: ns}
		s.mu.Lock()
		bs := slices.Clone(s.bindings[ns])
		s.mu.Unlock()

		for _, b := range bs {
			h := b.handler
			client.On(b.event, func(args ...any) {
				h(c, args...)
			})
		}
		s.clients.Add(1)
		client.On("disconnect", func(reason ...any) {
			s.clients.Add(-1)
			s.logger.Debug("Client disconnected.", "sid", c.ID(), "namespace", ns, "reason", reason)
		})
		s.logger.Debug("Client connected.", "sid", c.ID(), "namespace", ns, "handlers", len(bs))
	}
}

func namespaceOrDefault(ns string) string {
	if ns == "" {
		return DefaultNamespace
	}
	return ns
}
