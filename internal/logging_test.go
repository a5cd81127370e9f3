package internal

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLogHandlerVerboseAddsSource(t *testing.T) {
	prev := IsVerbose()
	t.Cleanup(func() { SetVerbose(prev) })

	var buf bytes.Buffer

	SetVerbose(false)
	slog.New(NewLogHandler(&buf, true)).Info("plain message")
	if strings.Contains(buf.String(), "logging_test.go") {
		t.Errorf("source annotated without verbose mode: %q", buf.String())
	}

	buf.Reset()
	SetVerbose(true)
	slog.New(NewLogHandler(&buf, true)).Info("annotated message")
	if !strings.Contains(buf.String(), "logging_test.go") {
		t.Errorf("source missing in verbose mode: %q", buf.String())
	}
}
