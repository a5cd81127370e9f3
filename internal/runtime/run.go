package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/containerd/v2/pkg/cio"
	"github.com/containerd/containerd/v2/pkg/oci"
	"github.com/google/uuid"
	specs "github.com/opencontainers/runtime-spec/specs-go"
)

// Controls a single application invocation.
type RunOptions struct {
	Image      string    // Exported OCI archive path or registry reference.
	InputDir   string    // Host directory bound at MountPath. Empty skips the bind.
	MountPath  string    // Absolute path inside the instance where InputDir is bound.
	Args       []string  // Arguments for the entrypoint. Empty applies the image's default arguments.
	Entrypoint []string  // Entrypoint override. Empty uses the image's declared entrypoint.
	Stdout     io.Writer // Destination for the process stdout. Nil discards.
	Stderr     io.Writer // Destination for the process stderr. Nil discards.
}

// Runs the packaged application once and returns its exit code.
//
// The image is made available and a fresh container is created whose process is
// the image's entrypoint: with no caller arguments the image's default
// arguments apply, otherwise the caller's arguments replace them, matching
// standard container invocation semantics. The caller's input directory is
// bind-mounted read-write at the conventional mount path. The process
// stdio is streamed to the given writers and the exit code is returned
// unmodified; this layer neither intercepts nor translates application
// failures. The container and its snapshot are removed when the process
// exits.
func (rt *Runtime) RunApp(ctx context.Context, opts RunOptions) (int, error) {
	platform := DefaultPlatform()

	tag, err := rt.EnsureImage(ctx, opts.Image, platform)
	if err != nil {
		return 0, err
	}

	image, err := rt.resolveImage(ctx, tag, platform)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	c := &Container{
		client:   rt.client,
		id:       "run-" + uuid.NewString()[:8],
		platform: platform,
	}
	defer c.Destroy(ctx)

	ctr, err := c.createAppContainer(ctx, image, opts)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	slog.Debug("starting application", "id", c.id, "args", opts.Args)

	return c.runTask(ctx, ctr, opts.Stdout, opts.Stderr)
}

// Resolves the argv for an application container, applying standard
// container invocation semantics.
//
// The image's declared entrypoint and default arguments form the base.
// Caller arguments replace the defaults; an entrypoint override replaces
// the entrypoint and clears the image's defaults, so only explicitly
// supplied arguments follow an overridden entrypoint.
func resolveInvocation(imageEntrypoint, imageCmd, entrypoint, args []string) []string {
	entry := imageEntrypoint
	cmd := imageCmd

	if len(entrypoint) > 0 {
		entry = entrypoint
		cmd = nil
	}
	if len(args) > 0 {
		cmd = args
	}

	argv := make([]string, 0, len(entry)+len(cmd))
	argv = append(argv, entry...)
	return append(argv, cmd...)
}

// Creates the application container with the invocation contract applied.
//
// The image config supplies the process environment and working directory;
// the argv is resolved separately so entrypoint and argument overrides
// follow [resolveInvocation] semantics.
func (c *Container) createAppContainer(ctx context.Context, image containerd.Image, opts RunOptions) (containerd.Container, error) {
	desc, err := image.Config(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := c.readConfig(ctx, desc)
	if err != nil {
		return nil, err
	}

	argv := resolveInvocation(cfg.Config.Entrypoint, cfg.Config.Cmd, opts.Entrypoint, opts.Args)

	specOpts := []oci.SpecOpts{
		oci.WithDefaultSpecForPlatform(c.platform),
		oci.WithImageConfig(image),
		oci.WithProcessArgs(argv...),
		oci.WithHostNamespace(specs.NetworkNamespace),
		oci.WithHostResolvconf,
	}

	if opts.InputDir != "" {
		specOpts = append(specOpts, oci.WithMounts([]specs.Mount{{
			Destination: opts.MountPath,
			Type:        "bind",
			Source:      opts.InputDir,
			Options:     []string{"rbind", "rw"},
		}}))
	}

	return c.client.NewContainer(ctx, c.id,
		containerd.WithImage(image),
		containerd.WithSnapshotter(snapshotter),
		containerd.WithNewSnapshot(c.id, image),
		containerd.WithRuntime(ociRuntime, nil),
		containerd.WithNewSpec(specOpts...),
	)
}

// Starts the container's primary task, streams its output, and waits for it
// to exit.
func (c *Container) runTask(ctx context.Context, ctr containerd.Container, stdout, stderr io.Writer) (int, error) {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	task, err := ctr.NewTask(ctx, cio.NewCreator(cio.WithStreams(nil, stdout, stderr)))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
	}
	defer task.Delete(context.WithoutCancel(ctx))

	statusC, err := task.Wait(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	if err := task.Start(ctx); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	exitStatus := <-statusC
	code, _, err := exitStatus.Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	return int(code), nil
}
