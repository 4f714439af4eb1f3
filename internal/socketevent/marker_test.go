package socketevent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocketEvent_RegistersOnce(t *testing.T) {
	r := NewRegistry()
	h := func(Conn, ...any) {}

	r.SocketEvent("join_room")(h)

	got := r.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, "join_room", got[0].Event)
	assert.Equal(t, "", got[0].Namespace)
	sameHandler(t, h, got[0].Handler)
}

func TestSocketEvent_InNamespace(t *testing.T) {
	r := NewRegistry()

	r.SocketEvent("message", InNamespace("/chat"))(func(Conn, ...any) {})

	got := r.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, "/chat", got[0].Namespace)
}

func TestSocketEvent_ReturnsHandlerUnchanged(t *testing.T) {
	// --- Arrange ---
	r := NewRegistry()
	var calls [][]any
	h := func(c Conn, args ...any) {
		calls = append(calls, args)
		c.Emit("reply", args...)
	}

	// --- Act ---
	decorated := r.SocketEvent("ping")(h)
	plain := &fakeConn{id: "plain"}
	marked := &fakeConn{id: "marked"}
	h(plain, "a", 1)
	decorated(marked, "a", 1)

	// --- Assert ---
	sameHandler(t, h, decorated)
	require.Len(t, calls, 2)
	assert.Equal(t, calls[0], calls[1])
	assert.Equal(t, plain.emitted, marked.emitted)
}

func TestSocketEvent_MarkerIsReusable(t *testing.T) {
	r := NewRegistry()
	mark := r.SocketEvent("message", InNamespace("/chat"))

	mark(func(Conn, ...any) {})
	mark(func(Conn, ...any) {})

	got := r.Drain()
	require.Len(t, got, 2)
	for _, d := range got {
		assert.Equal(t, "message", d.Event)
		assert.Equal(t, "/chat", d.Namespace)
	}
}
