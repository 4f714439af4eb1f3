package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func requireExitCode(t *testing.T, err error, code int) *ExitError {
	t.Helper()
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "expected an *ExitError, got %v", err)
	require.Equal(t, code, exitErr.Code)
	return exitErr
}

func TestParse_ServeDefaults(t *testing.T) {
	// --- Act ---
	cmd, shouldExit, err := Parse(context.Background(), nil, &bytes.Buffer{})

	// --- Assert ---
	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, "serve", cmd.Name)
	assert.Equal(t, ":3000", cmd.Config.ListenAddr)
	assert.Equal(t, "/socket.io/", cmd.Config.SocketPath)
	assert.True(t, cmd.Config.Healthcheck)
	assert.Nil(t, cmd.Probe)
}

func TestParse_ServeFlagsOverrideFile(t *testing.T) {
	// --- Arrange ---
	path := filepath.Join(t.TempDir(), "socketgrid.hcl")
	hcl := `
		listen_addr = ":4000"
		log_level   = "warn"
		healthcheck = true
	`
	require.NoError(t, os.WriteFile(path, []byte(hcl), 0600))
	args := []string{"serve", "-c", path, "-listen", ":5000", "-healthcheck=false", "-cors-origins", "https://a.example, https://b.example", "-log-format", "TEXT"}

	// --- Act ---
	cmd, _, err := Parse(context.Background(), args, &bytes.Buffer{})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, ":5000", cmd.Config.ListenAddr, "flag should win over file")
	assert.Equal(t, "warn", cmd.Config.LogLevel, "file value should survive when no flag is given")
	assert.False(t, cmd.Config.Healthcheck)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cmd.Config.CorsOrigins)
	assert.Equal(t, "text", cmd.Config.LogFormat)
}

func TestParse_Help(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{name: "serve", args: []string{"-h"}},
		{name: "probe", args: []string{"probe", "-h"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := &bytes.Buffer{}

			cmd, shouldExit, err := Parse(context.Background(), tc.args, out)

			require.NoError(t, err)
			assert.True(t, shouldExit)
			assert.Nil(t, cmd)
			assert.Contains(t, out.String(), "Usage:")
		})
	}
}

func TestParse_UsageErrors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "unknown flag", args: []string{"-nope"}, wantMsg: "flag provided but not defined"},
		{name: "stray argument", args: []string{"grid.hcl"}, wantMsg: "unexpected argument 'grid.hcl'"},
		{name: "invalid log level", args: []string{"-log-level", "loud"}, wantMsg: "log_level"},
		{name: "relative socket path", args: []string{"-socket-path", "socket.io"}, wantMsg: "socket_path"},
		{name: "missing config file", args: []string{"-config", "/does/not/exist.hcl"}, wantMsg: "exist.hcl"},
		{name: "probe without -on", args: []string{"probe", "-emit", "ping"}, wantMsg: "-on is required"},
		{name: "probe bad argument", args: []string{"probe", "-on", "pong", "-arg", "{"}, wantMsg: "probe:"},
		{name: "probe bad expect", args: []string{"probe", "-on", "pong", "-expect", "unknown_var"}, wantMsg: "probe:"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, shouldExit, err := Parse(context.Background(), tc.args, &bytes.Buffer{})

			assert.False(t, shouldExit)
			exitErr := requireExitCode(t, err, 2)
			assert.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}

func TestParse_Probe(t *testing.T) {
	// --- Arrange ---
	args := []string{
		"probe",
		"-url", "http://localhost:4000",
		"-namespace", "/chat",
		"-emit", "join_room",
		"-arg", `{ room = "lobby" }`,
		"-arg", `3`,
		"-on", "joined",
		"-expect", `{ room = "lobby" }`,
		"-timeout", "2s",
		"-insecure",
	}

	// --- Act ---
	cmd, shouldExit, err := Parse(context.Background(), args, &bytes.Buffer{})

	// --- Assert ---
	require.NoError(t, err)
	require.False(t, shouldExit)
	require.Equal(t, "probe", cmd.Name)
	require.NotNil(t, cmd.Probe)

	req := cmd.Probe.Request
	assert.Equal(t, "http://localhost:4000", req.URL)
	assert.Equal(t, "/chat", req.Namespace)
	assert.Equal(t, "join_room", req.EmitEvent)
	assert.Equal(t, "joined", req.OnEvent)
	assert.Equal(t, 2*time.Second, req.Timeout)
	assert.True(t, req.InsecureSkipVerify)
	require.Len(t, req.EmitData, 2)
	assert.Equal(t, map[string]any{"room": "lobby"}, req.EmitData[0])

	require.NotNil(t, cmd.Probe.Expect)
	assert.True(t, cmd.Probe.Expect.Type().IsObjectType())
	assert.Equal(t, cty.StringVal("lobby"), cmd.Probe.Expect.GetAttr("room"))
}

func TestParse_ProbeWithoutExpect(t *testing.T) {
	cmd, _, err := Parse(context.Background(), []string{"probe", "-on", "pong"}, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Nil(t, cmd.Probe.Expect)
	assert.Empty(t, cmd.Probe.Request.EmitData)
	assert.Equal(t, 10*time.Second, cmd.Probe.Request.Timeout)
}
