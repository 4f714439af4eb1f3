package socketevent

import "reflect"

// Module is implemented by every package that declares socket events.
type Module interface {
	Register(r *Registry)
}

// Payload returns args without a trailing acknowledgement callback.
func Payload(args []any) []any {
	if n := len(args); n > 0 && args[n-1] != nil && reflect.TypeOf(args[n-1]).Kind() == reflect.Func {
		return args[:n-1]
	}
	return args
}
