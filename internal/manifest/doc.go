// Package manifest defines the build recipe format and the canonical
// packaging contract.
//
// A [Recipe] is an ordered list of stages, each started from a base image
// and driven by steps: shell commands, file copies (from the host or from
// a named earlier stage), and modifiers that adjust the shell, working
// directory, and environment for subsequent steps. Recipes are loaded from
// YAML files or constructed programmatically.
//
// [Default] produces the built-in two-stage recipe that packages a Python
// application: a transient builder stage resolves and installs the full
// dependency closure into an in-project environment and strips
// version-control metadata, and a runner stage receives only that resolved
// environment on top of a fresh minimal base. The [Contract] type carries
// the fixed conventions of the produced image: the application directory,
// the entrypoint script, and the default arguments pointing at the
// conventional input mount path.
package manifest
