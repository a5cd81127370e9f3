package build

import (
	"archive/tar"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseCopy(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		workdir string
		src     string
		dest    string
		wantErr bool
	}{
		{
			name:  "absolute dest",
			input: ". /app",
			src:   ".",
			dest:  "/app",
		},
		{
			name:    "relative dest with workdir",
			input:   "pyproject.toml conf/",
			workdir: "/app",
			src:     "pyproject.toml",
			dest:    "/app/conf",
		},
		{
			name:    "relative dest without workdir",
			input:   "pyproject.toml conf/",
			wantErr: true,
		},
		{
			name:    "missing destination",
			input:   "pyproject.toml",
			wantErr: true,
		},
		{
			name:    "too many tokens",
			input:   "a b c",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, dest, err := parseCopy(tt.input, tt.workdir)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if src != tt.src {
				t.Errorf("src = %q, want %q", src, tt.src)
			}
			if dest != tt.dest {
				t.Errorf("dest = %q, want %q", dest, tt.dest)
			}
		})
	}
}

func TestTarWriterUnblocksOnClosedReader(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "payload"), make([]byte, 4096), 0o644); err != nil {
		t.Fatalf("write payload: %v", err)
	}

	pr, pw := io.Pipe()

	// Mirror the writer goroutine used by the host copy path. The pipe is
	// unbuffered, so the first write blocks until the reader side makes
	// progress or is closed.
	done := make(chan error, 1)
	go func() {
		tw := tar.NewWriter(pw)
		writeErr := writeDirToTar(tw, dir, "app")
		tw.Close()
		pw.CloseWithError(writeErr)
		done <- writeErr
	}()

	// Abandon the stream the way a failed transfer does.
	copyErr := errors.New("transfer aborted")
	pr.CloseWithError(copyErr)

	select {
	case err := <-done:
		if !errors.Is(err, copyErr) {
			t.Errorf("writer error = %v, want %v", err, copyErr)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("tar writer still blocked after reader closed")
	}
}

func TestParseStageCopy(t *testing.T) {
	tests := []struct {
		name  string
		input string
		stage string
		path  string
		ok    bool
	}{
		{
			name:  "valid stage copy",
			input: "builder:/app",
			stage: "builder",
			path:  "/app",
			ok:    true,
		},
		{
			name:  "nested path",
			input: "builder:/app/.venv",
			stage: "builder",
			path:  "/app/.venv",
			ok:    true,
		},
		{
			name:  "no colon",
			input: "/usr/local/bin",
		},
		{
			name:  "colon at start",
			input: ":/some/path",
		},
		{
			name:  "colon after slash",
			input: "/foo:bar",
		},
		{
			name:  "slash in prefix",
			input: "some/stage:path",
		},
		{
			name:  "plain host path",
			input: "pyproject.toml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage, path, ok := parseStageCopy(tt.input)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !tt.ok {
				return
			}
			if stage != tt.stage {
				t.Errorf("stage = %q, want %q", stage, tt.stage)
			}
			if path != tt.path {
				t.Errorf("path = %q, want %q", path, tt.path)
			}
		})
	}
}
