// Package build orchestrates recipe execution against the container
// runtime.
//
// A recipe is an ordered sequence of stages, each backed by a container
// created from a base image. The pipeline starts a container per stage,
// dispatches its steps (shell commands, host copies, and cross-stage
// transfers), and exports the non-transient stage as an OCI image archive
// with the invocation contract stamped onto its config.
//
// Container operations are delegated to the runtime package. Step state
// (environment, working directory, shell) accumulates across steps within
// a stage and resets between stages.
//
// Example usage:
//
//	result, err := build.Run(ctx, rt, build.Options{
//	    Recipe:  recipe,
//	    Name:    "javsp",
//	    Output:  "dist",
//	    Context: ".",
//	    Image: runtime.ImageConfig{
//	        Entrypoint: []string{"/app/.venv/bin/javsp"},
//	        Cmd:        []string{"-i", "/video"},
//	        WorkingDir: "/app",
//	    },
//	})
//	if err != nil {
//	    return err
//	}
package build
