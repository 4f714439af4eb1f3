package socketevent

// DeclareOption adjusts a declaration made through SocketEvent.
type DeclareOption func(*Declaration)

// InNamespace scopes the declared event to a namespace such as "/chat".
func InNamespace(namespace string) DeclareOption {
	return func(d *Declaration) {
		d.Namespace = namespace
	}
}

// SocketEvent returns a marker that declares its handler for event and hands
// the handler back unchanged. It never touches the live server, so it is safe
// to use before one exists.
//
//	onMessage := reg.SocketEvent("message", socketevent.InNamespace("/chat"))(handleMessage)
func (r *Registry) SocketEvent(event string, opts ...DeclareOption) func(Handler) Handler {
	d := Declaration{Event: event}
	for _, opt := range opts {
		opt(&d)
	}
	return func(h Handler) Handler {
		r.Register(d.Event, h, d.Namespace)
		return h
	}
}
