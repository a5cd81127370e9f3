package manifest

import (
	"path"
	"strings"
)

const (

	// Conventional absolute path inside the image where the application and
	// its resolved dependency environment live.
	DefaultAppDir = "/app"

	// Conventional absolute path inside a running instance where the caller
	// binds the input media directory.
	DefaultMountPath = "/video"

	// Flag passed to the application ahead of the mount path when the caller
	// supplies no arguments.
	DefaultInputFlag = "-i"

	// Pinned base image used for both build stages. A major.minor tag keeps
	// rebuilds on the same interpreter release while still receiving patch
	// updates.
	DefaultBaseImage = "docker.io/library/python:3.11-slim"

	// Dependency manager installed into the builder stage.
	poetrySpec = "poetry==1.8.3"

	// Plugin that derives the application version from repository history.
	versioningPlugin = "poetry-dynamic-versioning[plugin]"

	// Install prefix for the dependency manager inside the builder stage.
	poetryHome = "/opt/poetry"
)

// Describes the packaging contract for one application.
//
// The zero value is not usable; obtain one from [DefaultContract] and
// override fields as needed.
type Contract struct {
	BaseImage  string // Base image for both stages.
	AppDir     string // Directory holding the application and its environment.
	Binary     string // Name of the installed entrypoint script.
	MountPath  string // Mount point for the caller's input directory.
	Version    string // Application version injected into the builder stage.
	InputFlag  string // Flag preceding the mount path in the default arguments.
	ExtraEnv   map[string]string
	Entrypoint []string // Explicit entrypoint override. Empty derives from AppDir and Binary.
}

// Returns the contract with conventional defaults for the given application
// binary name.
func DefaultContract(binary string) Contract {
	return Contract{
		BaseImage: DefaultBaseImage,
		AppDir:    DefaultAppDir,
		Binary:    binary,
		MountPath: DefaultMountPath,
		InputFlag: DefaultInputFlag,
	}
}

// Returns the entrypoint argv for the packaged image.
//
// Unless overridden, the entrypoint is the application's installed script
// inside the in-project environment: <appdir>/.venv/bin/<binary>.
func (c Contract) EntrypointArgs() []string {
	if len(c.Entrypoint) > 0 {
		return c.Entrypoint
	}
	return []string{path.Join(c.AppDir, ".venv", "bin", c.Binary)}
}

// Returns the default argument list applied when a caller starts the image
// without arguments: the input flag followed by the conventional mount path.
func (c Contract) DefaultArgs() []string {
	return []string{c.InputFlag, c.MountPath}
}

// Builds the canonical two-stage recipe for the contract.
//
// The builder stage installs the dependency manager and its versioning
// plugin, extends PATH so the manager's executables are discoverable,
// materializes the resolved environment inside the project directory,
// installs the full dependency closure, and purges version-control metadata
// before the stage is finalized. The runner stage starts from a fresh base
// and receives only the resolved environment via a cross-stage copy, so no
// build tooling reaches the exported image.
func Default(c Contract) *Recipe {
	env := map[string]string{
		"POETRY_HOME":                   poetryHome,
		"POETRY_VIRTUALENVS_IN_PROJECT": "true",
		"POETRY_NO_INTERACTION":         "1",
		"PIP_DISABLE_PIP_VERSION_CHECK": "1",
		"PATH":                          poetryHome + "/bin:/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin",
	}
	if c.Version != "" {
		// Supplies a concrete version to the versioning plugin so the
		// install does not depend on the git client inside the container.
		env["POETRY_DYNAMIC_VERSIONING_BYPASS"] = c.Version
	}
	for k, v := range c.ExtraEnv {
		env[k] = v
	}

	return &Recipe{
		Stages: []Stage{
			{
				Name:      "builder",
				From:      c.BaseImage,
				Transient: true,
				Steps: []Step{
					{Env: env},
					{Copy: ". " + c.AppDir},
					{Workdir: c.AppDir},
					{Run: "python -m pip install " + quote(poetrySpec)},
					{Run: "poetry self add " + quote(versioningPlugin)},
					{Run: "poetry install"},
					{Run: "rm -rf " + path.Join(c.AppDir, ".git")},
				},
			},
			{
				Name: "runner",
				From: c.BaseImage,
				Steps: []Step{
					{Copy: "builder:" + c.AppDir + " " + c.AppDir},
					{Workdir: c.AppDir},
				},
			},
		},
	}
}

// Wraps a token in double quotes for use in a shell command.
func quote(s string) string {
	if strings.ContainsAny(s, " []") {
		return `"` + s + `"`
	}
	return s
}
