package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"mediapack/internal"
	"mediapack/internal/manifest"
	"mediapack/internal/runtime"
	"mediapack/internal/scan"
)

// Represents the 'mediapack run' command.
type RunCmd struct {
	Image      string   `arg:"" help:"Image archive path or registry reference."`
	Input      string   `short:"i" required:"" help:"Host directory mounted at the image's media path." type:"existingdir"`
	Entrypoint []string `help:"Override the image entrypoint."`
	Args       []string `arg:"" optional:"" passthrough:"" help:"Arguments replacing the image's default arguments."`
}

// Executes the run command.
//
// Creates a container from the image with the input directory bind-mounted
// at the contract's media path and streams the application's output. The
// application's exit code is propagated as the process exit status.
func (c *RunCmd) Run(ctx context.Context) error {
	cfg, err := internal.LoadConfig(RootCmd.Config)
	if err != nil {
		return err
	}

	mountPath := cfg.App.MountPath
	if mountPath == "" {
		mountPath = manifest.DefaultMountPath
	}

	input, err := filepath.Abs(c.Input)
	if err != nil {
		return err
	}

	c.preflight(cfg, input)

	rt, err := runtime.New(cfg.Containerd.Address, cfg.Containerd.Namespace)
	if err != nil {
		return err
	}
	defer rt.Close()

	code, err := rt.RunApp(ctx, runtime.RunOptions{
		Image:      c.Image,
		InputDir:   input,
		MountPath:  mountPath,
		Args:       c.Args,
		Entrypoint: c.Entrypoint,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	})
	if err != nil {
		return err
	}

	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// Logs a summary of the input directory before the container starts.
//
// Gives the operator early visibility into what the application will see
// at the mount path. Scan problems are logged, never fatal.
func (c *RunCmd) preflight(cfg *internal.Config, input string) {
	report, err := scan.Run(scan.Options{
		Root:               input,
		VideoExtensions:    cfg.Scanner.VideoExtensions,
		SubtitleExtensions: cfg.Scanner.SubtitleExtensions,
		IgnoredFolders:     cfg.Scanner.IgnoredFolders,
	})
	if err != nil {
		slog.Warn("input directory scan failed", "error", err)
		return
	}

	slog.Info("input directory",
		"path", input,
		"videos", report.Videos,
		"subtitles", report.Subtitles,
		"size", humanize.Bytes(uint64(report.TotalSize)),
	)
}
