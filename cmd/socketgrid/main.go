package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/specialistvlad/socketgrid/internal/app"
	"github.com/specialistvlad/socketgrid/internal/cli"
	"github.com/specialistvlad/socketgrid/internal/ctxlog"
	"github.com/specialistvlad/socketgrid/internal/probe"
)

// main is the entrypoint for the socketgrid application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The real main function handles errors and exit codes.
	if err := run(ctx, os.Stdout, os.Args[1:]); err != nil {
		stop()
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW io.Writer, args []string) error {
	cmd, shouldExit, err := cli.Parse(ctx, args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	switch cmd.Name {
	case "probe":
		return runProbe(ctx, outW, cmd.Probe)
	default:
		socketApp, err := app.NewApp(outW, cmd.Config)
		if err != nil {
			return fmt.Errorf("application startup failed: %w", err)
		}
		return socketApp.Run(ctx)
	}
}

// runProbe prints the reply as JSON and fails when it does not match -expect.
func runProbe(ctx context.Context, outW io.Writer, cmd *cli.ProbeCommand) error {
	ctx = ctxlog.WithLogger(ctx, slog.Default())
	res, err := probe.Run(ctx, cmd.Request)
	if err != nil {
		return err
	}

	out, err := res.JSON()
	if err != nil {
		return err
	}
	fmt.Fprintln(outW, out)

	if cmd.Expect != nil {
		ok, err := res.Matches(*cmd.Expect)
		if err != nil {
			return err
		}
		if !ok {
			return &cli.ExitError{Code: 1, Message: "probe: reply did not match -expect"}
		}
	}
	return nil
}
