// Package socketevent holds socket event handlers that are declared before the
// live Socket.IO server exists.
//
// Modules declare handlers against a Registry while the application is being
// assembled. Once the socket plugin has built the server, the mounting step
// drains the Registry exactly once and binds every Declaration onto the server.
// After the drain the Registry is empty and further drains return nothing.
package socketevent
