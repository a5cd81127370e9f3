// Package runtime manages containers backed by containerd.
//
// A [Runtime] connects to a containerd daemon and provides image and
// container operations for the build pipeline. Base images are pulled from
// a registry or imported from OCI archives, unpacked for the target
// platform, and used to create build containers with overlayfs snapshots.
//
// Each [Container] wraps a containerd task. Build containers run an idle
// primary process so that recipe steps can be attached as execs, files can
// be copied in and out as tar streams, and the final filesystem state can
// be committed and exported as a new OCI archive carrying the invocation
// contract (entrypoint, default arguments, working directory).
//
// [Runtime.RunApp] covers the other half of the contract: it instantiates
// an exported image as a one-shot container, binds the caller's input
// directory at the conventional mount path, and propagates the
// application's exit code.
//
// Example usage:
//
//	rt, err := runtime.New("/run/containerd/containerd.sock", "mediapack")
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	ctr, err := rt.StartBuildContainer(ctx, "docker.io/library/python:3.11-slim", "build-1", runtime.DefaultPlatform())
//	if err != nil {
//	    return err
//	}
//	defer ctr.Destroy(ctx)
//
//	if _, err := ctr.Exec(ctx, "/bin/sh", "poetry install", nil, "/app"); err != nil {
//	    return err
//	}
//
//	err = ctr.Export(ctx, "dist", runtime.ImageConfig{
//	    Entrypoint: []string{"/app/.venv/bin/javsp"},
//	    Cmd:        []string{"-i", "/video"},
//	})
package runtime
