package build

import (
	"context"
	"fmt"
	"log/slog"

	"mediapack/internal/manifest"
	"mediapack/internal/runtime"
)

// Holds shared state while the stages of a recipe execute.
type pipeline struct {
	rt         *runtime.Runtime              // Container runtime for image and container operations.
	opts       Options                       // Build options, validated by Run.
	stages     map[string]*runtime.Container // Named stage containers for cross-stage copy lookups.
	containers []*runtime.Container          // All stage containers, destroyed after the build completes.
}

// Creates a new [pipeline] from the given options.
func newPipeline(rt *runtime.Runtime, opts Options) *pipeline {
	return &pipeline{
		rt:     rt,
		opts:   opts,
		stages: make(map[string]*runtime.Container),
	}
}

// Runs the recipe end-to-end against the container runtime.
//
// Stages execute strictly sequentially, each to completion before the next
// begins. All stage containers are destroyed when the build completes,
// whether it succeeded or failed.
func (p *pipeline) run(ctx context.Context) (*Result, error) {
	defer p.destroyContainers(ctx)

	for i, stage := range p.opts.Recipe.Stages {
		if err := p.runStage(ctx, stage, i); err != nil {
			return nil, fmt.Errorf("%w: stage %s: %w", ErrBuild, stageLabel(stage.Name, i), err)
		}
	}

	return &Result{Output: p.opts.Output}, nil
}

// Runs a single stage of the recipe.
//
// The stage's base image is resolved, a build container is started, and the
// stage's steps execute in order. Non-transient stages are stopped and
// exported to the output directory with the invocation contract applied.
func (p *pipeline) runStage(ctx context.Context, stage manifest.Stage, index int) error {
	label := stageLabel(stage.Name, index)
	slog.Info(fmt.Sprintf("building stage %s", label), "from", stage.From)

	id := p.containerID(stage.Name, index)
	ctr, err := p.rt.StartBuildContainer(ctx, stage.From, id, p.opts.Platform)
	if err != nil {
		return err
	}

	p.containers = append(p.containers, ctr)
	if stage.Name != "" {
		p.stages[stage.Name] = ctr
	}

	if err := executeSteps(ctx, ctr, stage.Steps, newStepState(), p.opts.Context, p.stages); err != nil {
		return err
	}

	if stage.Transient {
		return nil
	}

	if err := ctr.Stop(ctx); err != nil {
		return err
	}

	return ctr.Export(ctx, p.opts.Output, p.opts.Image)
}

// Destroys all stage containers.
func (p *pipeline) destroyContainers(ctx context.Context) {
	for _, ctr := range p.containers {
		ctr.Destroy(ctx)
	}
}

// Returns a unique container ID for a stage, scoped to this build.
func (p *pipeline) containerID(name string, index int) string {
	if name != "" {
		return fmt.Sprintf("%s-stage-%s", p.opts.Name, name)
	}
	return fmt.Sprintf("%s-stage-%d", p.opts.Name, index+1)
}

// Returns a label for a stage, preferring the name when available and
// falling back to the 1-based index.
func stageLabel(name string, index int) string {
	if name != "" {
		return fmt.Sprintf("%q", name)
	}
	return fmt.Sprintf("%d", index+1)
}
