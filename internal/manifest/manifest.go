package manifest

import (
	"fmt"
	"strings"
)

// An ordered sequence of build stages.
//
// Exactly one stage must be non-transient; that stage is exported as the
// final image. Transient stages exist only to produce artifacts that later
// stages copy forward.
type Recipe struct {
	Stages []Stage `yaml:"stages"`
}

// A single build stage backed by a container.
type Stage struct {
	Name      string `yaml:"name,omitempty"`      // Optional name, referenced by cross-stage copies.
	From      string `yaml:"from"`                // Base image: registry reference or OCI archive path.
	Transient bool   `yaml:"transient,omitempty"` // Transient stages are discarded after the build.
	Steps     []Step `yaml:"steps,omitempty"`     // Steps executed in order inside the stage container.
}

// A single build instruction.
//
// A step is either an operation (run or copy), a standalone modifier
// (shell, workdir, env) that persists for the rest of the stage, or a
// group of nested steps sharing the group's modifiers.
type Step struct {
	Run     string            `yaml:"run,omitempty"`     // Shell command to execute.
	Copy    string            `yaml:"copy,omitempty"`    // "src dest" host copy or "stage:src dest" cross-stage copy.
	Shell   string            `yaml:"shell,omitempty"`   // Shell used for run steps.
	Workdir string            `yaml:"workdir,omitempty"` // Working directory for subsequent operations.
	Env     map[string]string `yaml:"env,omitempty"`     // Environment variables.
	Steps   []Step            `yaml:"steps,omitempty"`   // Nested steps sharing this step's modifiers.
}

// Validates the recipe's structural invariants.
//
// A recipe must contain at least one stage, every stage must declare a base
// image, stage names must be unique, and exactly one stage may be
// non-transient.
func (r *Recipe) Validate() error {
	if len(r.Stages) == 0 {
		return fmt.Errorf("%w: no stages", ErrInvalidRecipe)
	}

	names := make(map[string]bool, len(r.Stages))
	exported := 0

	for i, stage := range r.Stages {
		label := stage.label(i)

		if strings.TrimSpace(stage.From) == "" {
			return fmt.Errorf("%w: stage %s has no base image", ErrInvalidRecipe, label)
		}

		if stage.Name != "" {
			if names[stage.Name] {
				return fmt.Errorf("%w: duplicate stage name %q", ErrInvalidRecipe, stage.Name)
			}
			names[stage.Name] = true
		}

		if !stage.Transient {
			exported++
		}

		if err := validateSteps(stage.Steps, label); err != nil {
			return err
		}
	}

	if exported != 1 {
		return fmt.Errorf("%w: expected exactly one non-transient stage, got %d", ErrInvalidRecipe, exported)
	}

	return nil
}

// Validates a step list, recursing into groups.
func validateSteps(steps []Step, stage string) error {
	for i, step := range steps {
		if step.Run != "" && step.Copy != "" {
			return fmt.Errorf("%w: stage %s step %d declares both run and copy", ErrInvalidRecipe, stage, i+1)
		}
		if len(step.Steps) > 0 && (step.Run != "" || step.Copy != "") {
			return fmt.Errorf("%w: stage %s step %d mixes an operation with nested steps", ErrInvalidRecipe, stage, i+1)
		}
		if err := validateSteps(step.Steps, stage); err != nil {
			return err
		}
	}
	return nil
}

// Returns the stage whose container is exported as the final image.
//
// Validate guarantees exactly one such stage exists.
func (r *Recipe) ExportStage() (Stage, bool) {
	for _, stage := range r.Stages {
		if !stage.Transient {
			return stage, true
		}
	}
	return Stage{}, false
}

// Returns a label for the stage, preferring its name over its 1-based index.
func (s Stage) label(index int) string {
	if s.Name != "" {
		return fmt.Sprintf("%q", s.Name)
	}
	return fmt.Sprintf("%d", index+1)
}
