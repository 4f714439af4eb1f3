package chat

import (
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/socketgrid/internal/socketevent"
)

// Namespace is the Socket.IO namespace the chat events live in.
const Namespace = "/chat"

// Module implements the socketevent.Module interface for this package.
type Module struct {
	// now is swapped in tests.
	now func() time.Time
}

// Message is broadcast to a room for every accepted "message" event.
type Message struct {
	ID     string `json:"id"`
	Room   string `json:"room"`
	From   string `json:"from"`
	Text   string `json:"text"`
	SentAt string `json:"sent_at"`
}

// Failure is emitted back to the sender when an event is rejected.
type Failure struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}

// OnJoinRoom adds the connection to a room. The payload is either the room
// name or an object with a "room" key.
func (m *Module) OnJoinRoom(conn socketevent.Conn, args ...any) {
	room := roomFrom(socketevent.Payload(args))
	if room == "" {
		conn.Emit("error", Failure{Event: "join_room", Message: "room is required"})
		return
	}
	conn.Join(room)
	conn.Emit("joined", map[string]any{"room": room})
	conn.BroadcastTo(room, "user_joined", map[string]any{"room": room, "sid": conn.ID()})
}

// OnLeaveRoom removes the connection from a room.
func (m *Module) OnLeaveRoom(conn socketevent.Conn, args ...any) {
	room := roomFrom(socketevent.Payload(args))
	if room == "" {
		conn.Emit("error", Failure{Event: "leave_room", Message: "room is required"})
		return
	}
	conn.Leave(room)
	conn.Emit("left", map[string]any{"room": room})
	conn.BroadcastTo(room, "user_left", map[string]any{"room": room, "sid": conn.ID()})
}

// OnMessage relays {room, text} to the other members of room and echoes the
// stored message back to the sender.
func (m *Module) OnMessage(conn socketevent.Conn, args ...any) {
	payload := socketevent.Payload(args)
	room := roomFrom(payload)
	text := fieldFrom(payload, "text")
	if room == "" || text == "" {
		conn.Emit("error", Failure{Event: "message", Message: "room and text are required"})
		return
	}

	now := time.Now
	if m.now != nil {
		now = m.now
	}
	msg := Message{
		ID:     uuid.NewString(),
		Room:   room,
		From:   conn.ID(),
		Text:   text,
		SentAt: now().UTC().Format(time.RFC3339),
	}
	conn.BroadcastTo(room, "message", msg)
	conn.Emit("message_ack", msg)
}

// Register declares the chat handlers.
func (m *Module) Register(r *socketevent.Registry) {
	in := socketevent.InNamespace(Namespace)
	r.SocketEvent("join_room", in)(m.OnJoinRoom)
	r.SocketEvent("leave_room", in)(m.OnLeaveRoom)
	r.SocketEvent("message", in)(m.OnMessage)
}

func roomFrom(payload []any) string {
	if len(payload) == 0 {
		return ""
	}
	if s, ok := payload[0].(string); ok {
		return s
	}
	return fieldFrom(payload, "room")
}

func fieldFrom(payload []any, key string) string {
	if len(payload) == 0 {
		return ""
	}
	obj, ok := payload[0].(map[string]any)
	if !ok {
		return ""
	}
	s, _ := obj[key].(string)
	return s
}
