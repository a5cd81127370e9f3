package manifest

import (
	"strings"
	"testing"
)

func TestEntrypointArgs(t *testing.T) {
	c := DefaultContract("scraper")
	got := c.EntrypointArgs()
	want := "/app/.venv/bin/scraper"
	if len(got) != 1 || got[0] != want {
		t.Fatalf("entrypoint = %v, want [%s]", got, want)
	}

	c.Entrypoint = []string{"/custom/bin/run", "--flag"}
	got = c.EntrypointArgs()
	if len(got) != 2 || got[0] != "/custom/bin/run" {
		t.Fatalf("entrypoint override = %v", got)
	}
}

func TestDefaultArgs(t *testing.T) {
	c := DefaultContract("scraper")
	got := c.DefaultArgs()
	if len(got) != 2 || got[0] != DefaultInputFlag || got[1] != DefaultMountPath {
		t.Fatalf("default args = %v, want [%s %s]", got, DefaultInputFlag, DefaultMountPath)
	}
}

func TestDefaultRecipe(t *testing.T) {
	c := DefaultContract("scraper")
	c.Version = "1.2.3"

	recipe := Default(c)
	if err := recipe.Validate(); err != nil {
		t.Fatalf("default recipe invalid: %v", err)
	}

	if len(recipe.Stages) != 2 {
		t.Fatalf("stages = %d, want 2", len(recipe.Stages))
	}

	builder := recipe.Stages[0]
	if !builder.Transient {
		t.Fatal("builder stage must be transient")
	}
	if builder.From != DefaultBaseImage {
		t.Fatalf("builder base = %q, want %q", builder.From, DefaultBaseImage)
	}

	runner := recipe.Stages[1]
	if runner.Transient {
		t.Fatal("runner stage must not be transient")
	}

	// The builder's environment pins the in-project layout and extends the
	// search path so the dependency manager's executables resolve.
	env := builder.Steps[0].Env
	if env["POETRY_VIRTUALENVS_IN_PROJECT"] != "true" {
		t.Fatal("builder must materialize the environment in the project directory")
	}
	if !strings.HasPrefix(env["PATH"], "/opt/poetry/bin:") {
		t.Fatalf("PATH = %q, want poetry bin prefix", env["PATH"])
	}
	if env["POETRY_DYNAMIC_VERSIONING_BYPASS"] != "1.2.3" {
		t.Fatalf("version bypass = %q, want 1.2.3", env["POETRY_DYNAMIC_VERSIONING_BYPASS"])
	}

	assertStepOrder(t, builder.Steps, []string{
		"pip install",
		"poetry self add",
		"poetry install",
		"rm -rf /app/.git",
	})

	// The runner receives only the resolved environment from the builder.
	if got := runner.Steps[0].Copy; got != "builder:/app /app" {
		t.Fatalf("runner copy = %q, want builder:/app /app", got)
	}
}

func TestDefaultRecipeWithoutVersion(t *testing.T) {
	recipe := Default(DefaultContract("scraper"))
	env := recipe.Stages[0].Steps[0].Env
	if _, ok := env["POETRY_DYNAMIC_VERSIONING_BYPASS"]; ok {
		t.Fatal("version bypass should be absent when no version is supplied")
	}
}

// Asserts that run steps containing the given substrings appear in order.
func assertStepOrder(t *testing.T, steps []Step, wants []string) {
	t.Helper()
	i := 0
	for _, step := range steps {
		if i < len(wants) && strings.Contains(step.Run, wants[i]) {
			i++
		}
	}
	if i != len(wants) {
		t.Fatalf("missing or out-of-order step containing %q", wants[i])
	}
}
