package app

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/specialistvlad/socketgrid/internal/config"
	"github.com/specialistvlad/socketgrid/internal/socketevent"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SetupAppTest creates a new app instance for system testing. A nil cfg
// means the defaults with debug logging.
func SetupAppTest(t *testing.T, cfg *config.Config, modules ...socketevent.Module) (*App, *SafeBuffer) {
	t.Helper()

	if cfg == nil {
		cfg = config.Defaults()
	}
	logBuffer := &SafeBuffer{}
	cfg.LogLevel = "debug"
	testApp, err := NewApp(logBuffer, cfg, modules...)
	if err != nil {
		t.Fatalf("failed to create app: %v\n%s", err, logBuffer.String())
	}

	t.Cleanup(func() {
		if os.Getenv("SOCKETGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
