package socketevent

import (
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn records what handlers did with the connection.
type fakeConn struct {
	mu      sync.Mutex
	id      string
	emitted []string
	rooms   []string
}

func (c *fakeConn) ID() string        { return c.id }
func (c *fakeConn) Namespace() string { return "/" }
func (c *fakeConn) Emit(event string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emitted = append(c.emitted, fmt.Sprint(append([]any{event}, args...)...))
}
func (c *fakeConn) Join(room string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms = append(c.rooms, room)
}
func (c *fakeConn) Leave(string)                      {}
func (c *fakeConn) BroadcastTo(string, string, ...any) {}

func sameHandler(t *testing.T, want, got Handler) {
	t.Helper()
	assert.Equal(t, reflect.ValueOf(want).Pointer(), reflect.ValueOf(got).Pointer(), "handler should be the same function")
}

func TestRegistry_DrainReturnsDeclarationsInOrder(t *testing.T) {
	// --- Arrange ---
	r := NewRegistry()
	h1 := func(Conn, ...any) {}
	h2 := func(Conn, ...any) {}

	// --- Act ---
	r.Register("join_room", h1, "")
	r.Register("message", h2, "/chat")
	got := r.Drain()

	// --- Assert ---
	require.Len(t, got, 2)
	assert.Equal(t, "join_room", got[0].Event)
	assert.Equal(t, "", got[0].Namespace)
	sameHandler(t, h1, got[0].Handler)
	assert.Equal(t, "message", got[1].Event)
	assert.Equal(t, "/chat", got[1].Namespace)
	sameHandler(t, h2, got[1].Handler)
	assert.Zero(t, r.Len(), "registry should be empty after drain")
}

func TestRegistry_DrainEmpty(t *testing.T) {
	r := NewRegistry()

	first := r.Drain()
	second := r.Drain()

	require.NotNil(t, first)
	assert.Empty(t, first)
	require.NotNil(t, second)
	assert.Empty(t, second)
}

func TestRegistry_SecondDrainIsEmpty(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 5; i++ {
		r.Register(fmt.Sprintf("event_%d", i), func(Conn, ...any) {}, "")
	}

	got := r.Drain()
	require.Len(t, got, 5)
	for i, d := range got {
		assert.Equal(t, fmt.Sprintf("event_%d", i), d.Event)
	}

	assert.Empty(t, r.Drain())
}

func TestRegistry_DuplicatesAreKept(t *testing.T) {
	r := NewRegistry()
	h := func(Conn, ...any) {}

	r.Register("message", h, "/chat")
	r.Register("message", h, "/chat")

	assert.Len(t, r.Drain(), 2)
}

func TestRegistry_NoValidation(t *testing.T) {
	r := NewRegistry()

	r.Register("", nil, "")

	got := r.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, "", got[0].Event)
	assert.Nil(t, got[0].Handler)
}

// TestRegistry_ConcurrentRegister verifies that registrations from many
// goroutines all show up exactly once in the following drain.
func TestRegistry_ConcurrentRegister(t *testing.T) {
	r := NewRegistry()
	const workers = 16
	const perWorker = 50
	var wg sync.WaitGroup

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				r.Register(fmt.Sprintf("w%d_e%d", w, i), func(Conn, ...any) {}, "")
			}
		}(w)
	}
	wg.Wait()

	got := r.Drain()
	require.Len(t, got, workers*perWorker)

	seen := make(map[string]int, len(got))
	for _, d := range got {
		seen[d.Event]++
	}
	for w := 0; w < workers; w++ {
		for i := 0; i < perWorker; i++ {
			assert.Equal(t, 1, seen[fmt.Sprintf("w%d_e%d", w, i)])
		}
	}
}

// TestRegistry_ConcurrentDrain checks that racing drains split the pending set
// without losing or duplicating anything.
func TestRegistry_ConcurrentDrain(t *testing.T) {
	r := NewRegistry()
	const total = 1000
	for i := 0; i < total; i++ {
		r.Register(fmt.Sprintf("e%d", i), func(Conn, ...any) {}, "")
	}

	const drainers = 8
	results := make([][]Declaration, drainers)
	var wg sync.WaitGroup
	wg.Add(drainers)
	for i := 0; i < drainers; i++ {
		go func(i int) {
			defer wg.Done()
			results[i] = r.Drain()
		}(i)
	}
	wg.Wait()

	nonEmpty := 0
	count := 0
	for _, res := range results {
		if len(res) > 0 {
			nonEmpty++
		}
		count += len(res)
	}
	assert.Equal(t, 1, nonEmpty, "exactly one drain should observe the pending set")
	assert.Equal(t, total, count)
}
