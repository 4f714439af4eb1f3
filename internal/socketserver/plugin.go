package socketserver

import (
	"context"
	"fmt"

	"github.com/specialistvlad/socketgrid/internal/ctxlog"
	"github.com/specialistvlad/socketgrid/internal/plugin"
	"github.com/specialistvlad/socketgrid/internal/socketevent"
)

// Plugin builds the live Socket.IO server, publishes it in the plugin
// container and mounts the declared events.
type Plugin struct {
	registry  *socketevent.Registry
	opts      Options
	server    *Server
	container *plugin.Container
}

var _ plugin.Plugin = (*Plugin)(nil)

// NewPlugin creates the socket plugin for the declarations held by reg.
func NewPlugin(reg *socketevent.Registry, opts Options) *Plugin {
	return &Plugin{registry: reg, opts: opts}
}

// Name implements plugin.Plugin.
func (p *Plugin) Name() string {
	return plugin.SocketPluginName
}

// Init implements plugin.Plugin. On failure the server is closed and the
// container slot is left empty.
func (p *Plugin) Init(ctx context.Context, c *plugin.Container) error {
	if p.server != nil {
		return fmt.Errorf("socket plugin already initialized")
	}
	ctx = ctxlog.With(ctx, "plugin", p.Name())
	p.server = New(ctx, p.opts)
	p.container = c
	c.SetSocket(p.server.IO())

	if _, err := p.server.Mount(ctx, p.registry); err != nil {
		p.release()
		return err
	}
	ctxlog.FromContext(ctx).Debug("Socket plugin ready.", "namespaces", p.server.Namespaces(), "handlers", p.server.Handlers())
	return nil
}

// Close implements plugin.Plugin. It empties the container slot filled by
// Init and closes the server.
func (p *Plugin) Close(ctx context.Context) error {
	if p.server == nil {
		return nil
	}
	ctxlog.FromContext(ctx).Debug("Closing socket plugin.")
	p.release()
	return nil
}

func (p *Plugin) release() {
	if p.container != nil {
		p.container.SetSocket(nil)
		p.container = nil
	}
	p.server.Close()
	p.server = nil
}

// Server returns the live server, or nil outside Init and Close.
func (p *Plugin) Server() *Server {
	return p.server
}
