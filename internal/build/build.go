package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"mediapack/internal/manifest"
	"mediapack/internal/paths"
	"mediapack/internal/runtime"
)

// Controls recipe execution.
type Options struct {
	Recipe   *manifest.Recipe    // Recipe to execute.
	Name     string              // Build name, used as a prefix for container IDs.
	Output   string              // Directory for the exported image archive.
	Context  string              // Source checkout root, for resolving copy sources.
	Image    runtime.ImageConfig // Invocation contract stamped onto the exported image.
	Platform string              // Target platform (e.g., "linux/amd64"). Defaults to host.
}

// Returned after successful recipe execution.
type Result struct {
	Output string // Directory containing the exported image archive.
}

// Executes a recipe against the container runtime.
//
// Stages are built in declaration order. Each stage starts a container from
// its base image and executes the stage's steps; the non-transient stage is
// exported as the final image to the output directory. Any step failure
// aborts the build: no partial image is produced and the underlying tool's
// diagnostics are surfaced in the returned error.
func Run(ctx context.Context, rt *runtime.Runtime, opts Options) (*Result, error) {
	if opts.Platform == "" {
		opts.Platform = runtime.DefaultPlatform()
	}

	exported, ok := opts.Recipe.ExportStage()
	if !ok {
		return nil, fmt.Errorf("%w: recipe has no exported stage", ErrBuild)
	}

	slog.Info("executing recipe",
		"name", opts.Name,
		"output", opts.Output,
		"stages", len(opts.Recipe.Stages),
		"exported", exported.Name,
		"platform", opts.Platform,
	)

	if err := os.MkdirAll(opts.Output, paths.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	return newPipeline(rt, opts).run(ctx)
}
