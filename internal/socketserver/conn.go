package socketserver

import (
	"github.com/specialistvlad/socketgrid/internal/socketevent"
	"github.com/zishang520/socket.io/v2/socket"
)

// conn adapts a server-side client socket to socketevent.Conn.
type conn struct {
	client    *socket.Socket
	namespace string
}

var _ socketevent.Conn = (*conn)(nil)

func (c *conn) ID() string {
	return string(c.client.Id())
}

func (c *conn) Namespace() string {
	return c.namespace
}

func (c *conn) Emit(event string, args ...any) {
	c.client.Emit(event, args...)
}

func (c *conn) Join(room string) {
	c.client.Join(socket.Room(room))
}

func (c *conn) Leave(room string) {
	c.client.Leave(socket.Room(room))
}

// BroadcastTo emits to every socket in room except this one.
func (c *conn) BroadcastTo(room, event string, args ...any) {
	c.client.To(socket.Room(room)).Emit(event, args...)
}
