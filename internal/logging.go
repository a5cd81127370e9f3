package internal

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Builds the process-wide log handler.
//
// The level is the shared [LogLevel] so later adjustments take effect without
// rebuilding. Verbose mode annotates each record with its source location;
// since the handler captures that setting at construction, callers must
// rebuild the handler after changing it.
func NewLogHandler(w io.Writer, noColor bool) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      LogLevel,
		TimeFormat: time.Kitchen,
		NoColor:    noColor,
		AddSource:  IsVerbose(),
	})
}

// Whether the given file is an interactive terminal.
func IsTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
