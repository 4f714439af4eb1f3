package echo

import "github.com/specialistvlad/socketgrid/internal/socketevent"

// Module implements the socketevent.Module interface for this package.
type Module struct{}

// OnPing replies with "pong" and the same arguments.
func OnPing(conn socketevent.Conn, args ...any) {
	conn.Emit("pong", socketevent.Payload(args)...)
}

// Register declares the echo handlers in the default namespace.
func (m *Module) Register(r *socketevent.Registry) {
	r.SocketEvent("ping")(OnPing)
}
