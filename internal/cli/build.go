package cli

import (
	"context"
	"log/slog"
	"path/filepath"

	"mediapack/internal"
	"mediapack/internal/build"
	"mediapack/internal/manifest"
	"mediapack/internal/notify"
	"mediapack/internal/paths"
	"mediapack/internal/runtime"
	"mediapack/internal/vcs"
)

// Represents the 'mediapack build' command.
type BuildCmd struct {
	Source   string `arg:"" default:"." help:"Source checkout to package." type:"path"`
	Recipe   string `short:"r" help:"Build from a recipe file instead of the default two-stage layout." placeholder:"PATH"`
	Output   string `short:"o" help:"Directory for the exported image archive. Defaults to the user data directory."`
	Name     string `short:"n" help:"Image name. Defaults to the configured application binary."`
	Platform string `short:"p" help:"Target platform (e.g. linux/amd64). Defaults to the host platform."`
	Version  string `help:"Override the version derived from the source checkout's history."`

	Entrypoint []string `help:"Override the entrypoint stamped onto the exported image."`
}

// Executes the build command.
//
// Resolves the application version from the checkout's git history, prepares
// the two-stage recipe (or loads one from a file), and runs the pipeline
// against the container runtime. The exported image carries the fixed
// invocation contract in its config.
func (c *BuildCmd) Run(ctx context.Context) error {
	cfg, err := internal.LoadConfig(RootCmd.Config)
	if err != nil {
		return err
	}

	version := c.resolveVersion()
	contract := cfg.Contract(version)
	if len(c.Entrypoint) > 0 {
		contract.Entrypoint = c.Entrypoint
	}

	recipe, err := c.loadRecipe(contract)
	if err != nil {
		return err
	}

	name := c.Name
	if name == "" {
		name = cfg.App.Binary
	}

	output := c.Output
	if output == "" {
		output = filepath.Join(paths.Images(), name)
	}

	rt, err := runtime.New(cfg.Containerd.Address, cfg.Containerd.Namespace)
	if err != nil {
		return err
	}
	defer rt.Close()

	notifier, err := notify.New(notify.Settings{
		Enabled: cfg.Telegram.Enabled,
		Token:   cfg.Telegram.Token,
		ChatID:  cfg.Telegram.ChatID,
		Proxy:   cfg.Telegram.Proxy,
	})
	if err != nil {
		return err
	}

	result, err := build.Run(ctx, rt, build.Options{
		Recipe:  recipe,
		Name:    name,
		Output:  output,
		Context: c.Source,
		Image: runtime.ImageConfig{
			Entrypoint: contract.EntrypointArgs(),
			Cmd:        contract.DefaultArgs(),
			WorkingDir: contract.AppDir,
		},
		Platform: c.Platform,
	})
	if err != nil {
		if nerr := notifier.BuildFailed(ctx, name, err); nerr != nil {
			slog.Warn("build failure notification not delivered", "error", nerr)
		}
		return err
	}

	slog.Info("image built", "name", name, "version", version, "output", result.Output)

	if nerr := notifier.BuildSucceeded(ctx, name, version, result.Output); nerr != nil {
		slog.Warn("build success notification not delivered", "error", nerr)
	}

	return nil
}

// Determines the version frozen into the built image.
//
// An explicit --version flag wins. Otherwise the version is derived from the
// source checkout's git history; a checkout without version-control metadata
// builds without a version and the packaging tooling inside the image falls
// back to its own default.
func (c *BuildCmd) resolveVersion() string {
	if c.Version != "" {
		return c.Version
	}

	if !vcs.HasMetadata(c.Source) {
		slog.Warn("source checkout has no git metadata, building without a derived version")
		return ""
	}

	info, err := vcs.Describe(c.Source)
	if err != nil {
		slog.Warn("version derivation failed", "error", err)
		return ""
	}

	slog.Debug("derived version", "version", info.Version, "commit", info.Commit, "tagged", info.Tagged)
	return info.Version
}

// Loads the recipe from a file when --recipe is given, or builds the default
// two-stage recipe from the packaging contract.
func (c *BuildCmd) loadRecipe(contract manifest.Contract) (*manifest.Recipe, error) {
	if c.Recipe != "" {
		return manifest.Load(c.Recipe)
	}

	recipe := manifest.Default(contract)
	if err := recipe.Validate(); err != nil {
		return nil, err
	}
	return recipe, nil
}
