package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"mediapack/internal"
)

// Represents the root command for the mediapack CLI.
var RootCmd struct {
	Quiet   bool   `short:"q" help:"Suppress informational output."`
	Verbose bool   `short:"v" help:"Enable verbose output."`
	Debug   bool   `short:"d" help:"Enable debug output."`
	Config  string `short:"c" help:"Override the default config file path." placeholder:"PATH"`

	Build   BuildCmd   `cmd:"" help:"Build an application image from a source checkout."`
	Run     RunCmd     `cmd:"" help:"Run a built image against a media directory."`
	Scan    ScanCmd    `cmd:"" help:"Scan a media directory and report its contents."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Process exit status carried out of a subcommand.
//
// Used by the run command to propagate the application's exit code without
// treating a nonzero status as a tool failure.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Packages media tooling into minimal container images.\n\nBuilds freeze an application and its dependency closure into an OCI image with a fixed invocation contract."),
		kong.UsageOnError(),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	return kongCtx.Run()
}

// Adjusts the shared log level based on CLI flags.
//
// Flags combine with build-time defaults set via linker flags; either source
// can raise the level. Enabling verbose mode rebuilds the default logger so
// the handler picks up source annotations.
func configureLogger() {
	debug := RootCmd.Debug || internal.IsDebug()
	quiet := RootCmd.Quiet || internal.IsQuiet()

	switch {
	case debug:
		internal.LogLevel.Set(slog.LevelDebug)
	case quiet:
		internal.LogLevel.Set(slog.LevelWarn)
	default:
		internal.LogLevel.Set(slog.LevelInfo)
	}

	if RootCmd.Verbose && !internal.IsVerbose() {
		internal.SetVerbose(true)
		handler := internal.NewLogHandler(os.Stderr, !internal.IsTerminal(os.Stderr))
		slog.SetDefault(slog.New(handler).WithGroup(internal.Name))
	}
}
