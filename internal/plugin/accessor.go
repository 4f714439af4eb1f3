package plugin

import "github.com/zishang520/socket.io/v2/socket"

// SocketAPI returns the live Socket.IO server held by c. The server is shared
// by the whole process.
func SocketAPI(c *Container) (*socket.Server, error) {
	if c == nil {
		return nil, &UnavailableError{Plugin: SocketPluginName, Cause: ErrNotInitialized}
	}
	s, ok := c.Socket()
	if !ok {
		return nil, &UnavailableError{Plugin: SocketPluginName, Cause: ErrNotInitialized}
	}
	return s, nil
}
