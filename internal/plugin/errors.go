package plugin

import (
	"errors"
	"fmt"
)

// SocketPluginName identifies the Socket.IO plugin in errors and logs.
const SocketPluginName = "SocketPlugin"

// ErrNotInitialized is the cause reported when a plugin slot has not been
// filled, either because the plugin is not installed or because it has not
// been initialized yet.
var ErrNotInitialized = errors.New("plugin not enabled or not initialized")

// UnavailableError reports that a plugin the caller depends on is missing.
type UnavailableError struct {
	Plugin string
	Cause  error
}

// Error implements the error interface for UnavailableError.
func (e *UnavailableError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("plugin %s unavailable", e.Plugin)
	}
	return fmt.Sprintf("plugin %s unavailable: %v", e.Plugin, e.Cause)
}

// Unwrap returns the underlying lookup failure.
func (e *UnavailableError) Unwrap() error {
	return e.Cause
}
