// Parses flags and dispatches subcommands for the mediapack CLI.
//
// The tool accepts the following global flags:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output.
//	-d, --debug     Enable debug output.
//	-c, --config    Config file path.
//
// Flags override build-time defaults set via linker flags. After parsing,
// the shared log level is adjusted to reflect the final flags before the
// selected subcommand runs.
package cli
