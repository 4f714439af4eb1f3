package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestWith_AddsAttributes(t *testing.T) {
	// --- Arrange ---
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := WithLogger(context.Background(), base)

	// --- Act ---
	FromContext(With(ctx, "plugin", "SocketPlugin")).Info("ready")

	// --- Assert ---
	assert.Contains(t, buf.String(), "plugin=SocketPlugin")
	assert.Contains(t, buf.String(), "msg=ready")
}
