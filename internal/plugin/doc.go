// Package plugin provides the container that holds initialized framework
// extensions, together with accessors that resolve them for callers.
//
// The only slot consumed today is the live Socket.IO server, filled by the
// socket plugin during Init. SocketAPI is the lookup application code uses to
// reach it, for example to emit a message outside of an event handler.
package plugin
