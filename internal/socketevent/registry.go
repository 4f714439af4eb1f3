package socketevent

import (
	"log/slog"
	"sync"
)

// Conn is the client connection an event handler is invoked for.
type Conn interface {
	ID() string
	Namespace() string
	Emit(event string, args ...any)
	Join(room string)
	Leave(room string)
	BroadcastTo(room, event string, args ...any)
}

// Handler is invoked with the arguments the client sent along with the event.
// A trailing acknowledgement callback, when the client asked for one, is
// passed through untouched as the last argument.
type Handler func(conn Conn, args ...any)

// Declaration is a pending event handler waiting to be mounted.
// An empty Namespace means the default namespace.
type Declaration struct {
	Event     string
	Handler   Handler
	Namespace string
}

// Registry accumulates declarations in the order they were made.
type Registry struct {
	mu      sync.Mutex
	pending []Declaration
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a declaration. Nothing is validated here; a malformed
// declaration surfaces when it is mounted.
func (r *Registry) Register(event string, handler Handler, namespace string) {
	r.mu.Lock()
	r.pending = append(r.pending, Declaration{
		Event:     event,
		Handler:   handler,
		Namespace: namespace,
	})
	r.mu.Unlock()
	slog.Debug("Socket event declared.", "event", event, "namespace", namespace)
}

// Drain returns every pending declaration in insertion order and empties the
// registry. It returns an empty slice when nothing is pending.
func (r *Registry) Drain() []Declaration {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.pending
	if out == nil {
		out = []Declaration{}
	}
	r.pending = nil
	return out
}

// Len reports how many declarations are pending.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
