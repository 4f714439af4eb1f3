package plugin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/specialistvlad/socketgrid/internal/ctxlog"
	"github.com/zishang520/socket.io/v2/socket"
)

// Plugin is a framework extension with a two-step lifecycle. Init runs once
// the host application is assembled; Close runs on shutdown.
type Plugin interface {
	Name() string
	Init(ctx context.Context, c *Container) error
	Close(ctx context.Context) error
}

// Container owns the installed plugins and the values they publish.
type Container struct {
	mu          sync.RWMutex
	installed   []Plugin
	initialized int
	socket      *socket.Server
}

// NewContainer creates an empty Container.
func NewContainer() *Container {
	return &Container{}
}

// Install adds p to the container. Plugins are initialized in install order.
func (c *Container) Install(p Plugin) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.installed {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin '%s' already installed", p.Name())
		}
	}
	c.installed = append(c.installed, p)
	return nil
}

// Init initializes every installed plugin that has not been initialized yet.
// It stops at the first failure.
func (c *Container) Init(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	c.mu.RLock()
	pending := c.installed[c.initialized:]
	c.mu.RUnlock()

	for _, p := range pending {
		logger.Debug("Initializing plugin.", "plugin", p.Name())
		if err := p.Init(ctx, c); err != nil {
			return fmt.Errorf("failed to initialize plugin '%s': %w", p.Name(), err)
		}
		c.mu.Lock()
		c.initialized++
		c.mu.Unlock()
		logger.Info("Plugin initialized.", "plugin", p.Name())
	}
	return nil
}

// Close shuts down initialized plugins in reverse order and reports every
// failure.
func (c *Container) Close(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	c.mu.Lock()
	closing := c.installed[:c.initialized]
	c.initialized = 0
	c.mu.Unlock()

	var errs []error
	for i := len(closing) - 1; i >= 0; i-- {
		p := closing[i]
		logger.Debug("Closing plugin.", "plugin", p.Name())
		if err := p.Close(ctx); err != nil {
			logger.Error("Plugin close failed.", "plugin", p.Name(), "error", err)
			errs = append(errs, fmt.Errorf("plugin '%s': %w", p.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// SetSocket publishes the live Socket.IO server. Passing nil clears the slot.
func (c *Container) SetSocket(s *socket.Server) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.socket = s
}

// Socket returns the live Socket.IO server and whether the slot is set.
func (c *Container) Socket() (*socket.Server, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.socket, c.socket != nil
}
