package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/specialistvlad/socketgrid/internal/config"
	"github.com/specialistvlad/socketgrid/internal/probe"
	"github.com/zclconf/go-cty/cty"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Command is the parsed invocation.
type Command struct {
	// Name is "serve" or "probe".
	Name   string
	Config *config.Config
	Probe  *ProbeCommand
}

// ProbeCommand holds the parsed arguments of the probe subcommand.
type ProbeCommand struct {
	Request probe.Request
	// Expect is the expected first reply argument; nil when unset.
	Expect *cty.Value
}

const usage = `
socketgrid - a Socket.IO server whose handlers are declared ahead of time.

Usage:
  socketgrid [serve] [options]
  socketgrid probe [options]

Commands:
  serve   Run the server (default).
  probe   Connect to a server, emit one event and wait for a reply.

Options:
`

// Parse processes command-line arguments. It returns the parsed Command, a
// boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(ctx context.Context, args []string, output io.Writer) (*Command, bool, error) {
	slog.Debug("CLI parser started.")
	if len(args) > 0 {
		switch args[0] {
		case "probe":
			return parseProbe(args[1:], output)
		case "serve":
			args = args[1:]
		}
	}
	return parseServe(ctx, args, output)
}

func parseServe(ctx context.Context, args []string, output io.Writer) (*Command, bool, error) {
	flagSet := flag.NewFlagSet("socketgrid", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, usage)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to an HCL configuration file or a directory of them.")
	cFlag := flagSet.String("c", "", "Shorthand for -config.")
	listenFlag := flagSet.String("listen", "", "Address to listen on, e.g. ':3000'.")
	socketPathFlag := flagSet.String("socket-path", "", "HTTP path of the Socket.IO endpoint.")
	corsFlag := flagSet.String("cors-origins", "", "Comma-separated list of allowed CORS origins.")
	healthFlag := flagSet.Bool("healthcheck", true, "Serve GET /health.")
	logFormatFlag := flagSet.String("log-format", "", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if flagSet.NArg() > 0 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected argument '%s'", flagSet.Arg(0))}
	}
	slog.Debug("Arguments parsed successfully.")

	path := *configFlag
	if path == "" {
		path = *cFlag
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	// Flags override file and environment only when given explicitly.
	flagSet.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen":
			cfg.ListenAddr = *listenFlag
		case "socket-path":
			cfg.SocketPath = *socketPathFlag
		case "cors-origins":
			cfg.CorsOrigins = splitList(*corsFlag)
		case "healthcheck":
			cfg.Healthcheck = *healthFlag
		case "log-format":
			cfg.LogFormat = strings.ToLower(*logFormatFlag)
		case "log-level":
			cfg.LogLevel = strings.ToLower(*logLevelFlag)
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return &Command{Name: "serve", Config: cfg}, false, nil
}

func parseProbe(args []string, output io.Writer) (*Command, bool, error) {
	flagSet := flag.NewFlagSet("socketgrid probe", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, usage)
		flagSet.PrintDefaults()
	}

	var rawArgs []string
	urlFlag := flagSet.String("url", "http://localhost:3000", "Server URL. A path, if any, is the Socket.IO endpoint.")
	namespaceFlag := flagSet.String("namespace", "/", "Namespace to connect to.")
	emitFlag := flagSet.String("emit", "", "Event to emit once connected.")
	flagSet.Func("arg", "HCL expression emitted as an event argument. Repeatable.", func(s string) error {
		rawArgs = append(rawArgs, s)
		return nil
	})
	onFlag := flagSet.String("on", "", "Event to wait for.")
	expectFlag := flagSet.String("expect", "", "HCL expression the first reply argument must equal.")
	timeoutFlag := flagSet.Duration("timeout", 10*time.Second, "How long to wait for the reply.")
	insecureFlag := flagSet.Bool("insecure", false, "Skip TLS certificate verification.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if *onFlag == "" {
		return nil, false, &ExitError{Code: 2, Message: "probe: -on is required"}
	}

	emitData, err := probe.ParseArgs(rawArgs)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("probe: %v", err)}
	}

	cmd := &ProbeCommand{
		Request: probe.Request{
			URL:                *urlFlag,
			Namespace:          *namespaceFlag,
			EmitEvent:          *emitFlag,
			EmitData:           emitData,
			OnEvent:            *onFlag,
			Timeout:            *timeoutFlag,
			InsecureSkipVerify: *insecureFlag,
		},
	}
	if *expectFlag != "" {
		want, err := probe.ParseExpect(*expectFlag)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("probe: %v", err)}
		}
		cmd.Expect = &want
	}

	return &Command{Name: "probe", Probe: cmd}, false, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
