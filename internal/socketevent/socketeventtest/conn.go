// Package socketeventtest provides a recording socketevent.Conn for handler
// tests.
package socketeventtest

import (
	"slices"
	"sync"

	"github.com/specialistvlad/socketgrid/internal/socketevent"
)

// Emitted is one event sent through a Conn.
type Emitted struct {
	Room  string // empty for events sent to the connection itself
	Event string
	Args  []any
}

// Conn records emits, broadcasts and room membership.
type Conn struct {
	SID string
	NS  string

	mu      sync.Mutex
	emitted []Emitted
	rooms   []string
}

var _ socketevent.Conn = (*Conn)(nil)

// NewConn creates a recording connection.
func NewConn(sid, namespace string) *Conn {
	return &Conn{SID: sid, NS: namespace}
}

func (c *Conn) ID() string        { return c.SID }
func (c *Conn) Namespace() string { return c.NS }

func (c *Conn) Emit(event string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emitted = append(c.emitted, Emitted{Event: event, Args: args})
}

func (c *Conn) Join(room string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !slices.Contains(c.rooms, room) {
		c.rooms = append(c.rooms, room)
	}
}

func (c *Conn) Leave(room string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms = slices.DeleteFunc(c.rooms, func(r string) bool { return r == room })
}

func (c *Conn) BroadcastTo(room, event string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emitted = append(c.emitted, Emitted{Room: room, Event: event, Args: args})
}

// Emitted returns everything sent so far, in order.
func (c *Conn) Emitted() []Emitted {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.emitted)
}

// Rooms returns the rooms the connection is in.
func (c *Conn) Rooms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.rooms)
}
