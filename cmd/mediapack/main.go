package main

import (
	"errors"
	"log/slog"
	"os"

	"mediapack/internal"
	"mediapack/internal/cli"
)

// The entry point for the mediapack CLI.
//
// Initializes logging, displays startup information, and executes the root
// command. A nonzero application exit status from the run subcommand is
// propagated as the process exit code.
func main() {
	slog.SetDefault(logger())

	slog.Debug("build", "version", internal.VersionString())

	slog.Debug("mediapack is running",
		"pid", os.Getpid(),
		"cwd", cwd(),
		"args", os.Args,
	)

	if err := cli.Execute(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// Creates the process-wide logger seeded from build-time linker flags.
//
// The level is shared with the cli package, which adjusts it and rebuilds
// the logger after flag parsing.
func logger() *slog.Logger {
	handler := internal.NewLogHandler(os.Stderr, !internal.IsTerminal(os.Stderr))
	return slog.New(handler).WithGroup(internal.Name)
}

// Returns the current working directory or "(unknown)".
func cwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "(unknown)"
	}
	return cwd
}
