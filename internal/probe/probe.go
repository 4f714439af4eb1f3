// Package probe is a small Socket.IO client used to smoke-test a running
// server: it connects, emits one event and waits for a reply event.
package probe

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/socketgrid/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const defaultPath = "/socket.io/"

// Request describes a single probe.
type Request struct {
	URL                string
	Namespace          string
	EmitEvent          string
	EmitData           []any
	OnEvent            string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// Result holds what the server sent back.
type Result struct {
	SID  string
	Args []any
}

// JSON renders the reply arguments as a JSON array.
func (r *Result) JSON() (string, error) {
	b, err := json.Marshal(r.Args)
	if err != nil {
		return "", fmt.Errorf("failed to encode reply: %w", err)
	}
	return string(b), nil
}

// opResult is a private struct to safely pass results through the done channel.
type opResult struct {
	value *Result
	err   error
}

// Run connects to req.URL, emits req.EmitEvent once connected and waits for
// req.OnEvent until req.Timeout elapses or ctx is cancelled.
func Run(ctx context.Context, req Request) (*Result, error) {
	logger := ctxlog.FromContext(ctx).With("probe", req.URL, "namespace", req.Namespace, "emitEvent", req.EmitEvent, "onEvent", req.OnEvent)
	logger.Debug("Probe started")
	defer logger.Debug("Probe finished")

	if req.OnEvent == "" {
		return nil, errors.New("probe needs an event to wait for")
	}

	var isConnected atomic.Bool

	timeout := req.Timeout
	if timeout <= 0 {
		logger.Warn("No probe timeout set, using default 10s")
		timeout = 10 * time.Second
	}

	done := make(chan opResult, 1)
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	parsedURL, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("URL '%s' must include a scheme and host", req.URL)
	}

	path := parsedURL.Path
	if path == "" || path == "/" {
		path = defaultPath
	}
	namespace := req.Namespace
	if namespace == "" {
		namespace = "/"
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	opts.SetPath(path)

	if req.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.Polling, transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)
	defer func() {
		logger.Debug("Disconnecting probe client")
		io.Disconnect()
	}()

	send := func(r opResult) {
		select {
		case done <- r:
		default:
		}
	}

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Info("Probe connected", "sid", io.Id())
		if req.EmitEvent != "" {
			logger.Info("Emitting event", "event", req.EmitEvent, "args", len(req.EmitData))
			io.Emit(req.EmitEvent, req.EmitData...)
		}
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		if len(errs) > 0 {
			if err, ok := errs[0].(error); ok {
				send(opResult{err: fmt.Errorf("socket.io connection failed: %w", err)})
				return
			}
		}
		send(opResult{err: errors.New("socket.io connection failed")})
	})

	io.On(types.EventName(req.OnEvent), func(data ...any) {
		send(opResult{value: &Result{SID: io.Id(), Args: data}})
	})

	io.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			return nil, fmt.Errorf("timed out after connecting while waiting for event '%s'", req.OnEvent)
		}
		return nil, errors.New("timed out while waiting for initial connection")
	case res := <-done:
		return res.value, res.err
	}
}
