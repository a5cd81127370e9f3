package runtime

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func TestMergeEnv(t *testing.T) {
	tests := []struct {
		name      string
		base      []string
		overrides []string
		want      []string
	}{
		{
			name:      "override existing key",
			base:      []string{"A=1", "B=2"},
			overrides: []string{"A=override"},
			want:      []string{"A=override", "B=2"},
		},
		{
			name:      "add new key",
			base:      []string{"A=1"},
			overrides: []string{"B=2"},
			want:      []string{"A=1", "B=2"},
		},
		{
			name:      "empty base",
			base:      nil,
			overrides: []string{"A=1"},
			want:      []string{"A=1"},
		},
		{
			name:      "value with equals sign",
			base:      []string{"CMD=foo=bar"},
			overrides: nil,
			want:      []string{"CMD=foo=bar"},
		},
		{
			name:      "malformed entries skipped",
			base:      []string{"NOEQUALS", "A=1"},
			overrides: []string{"ALSO_BAD", "B=2"},
			want:      []string{"A=1", "B=2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeEnv(tt.base, tt.overrides)
			sort.Strings(got)
			sort.Strings(tt.want)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d (%v)", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("merged = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestArchiveTag(t *testing.T) {
	tag := archiveTag("/some/dir with spaces/image.tar")
	if !strings.HasPrefix(tag, "import/") || !strings.HasSuffix(tag, ":latest") {
		t.Fatalf("tag = %q, want import/<hash>:latest", tag)
	}
	if strings.ContainsAny(tag, " ") {
		t.Fatalf("tag %q contains invalid characters", tag)
	}

	// Identical paths always produce identical tags.
	if tag != archiveTag("/some/dir with spaces/image.tar") {
		t.Fatal("archive tag is not deterministic")
	}
}

func TestIsArchivePath(t *testing.T) {
	if !isArchivePath("./dist/image.tar") {
		t.Fatal("relative path with ./ prefix should be an archive path")
	}
	if !isArchivePath("/dist/image.tar") {
		t.Fatal("absolute path should be an archive path")
	}
	if isArchivePath("docker.io/library/python:3.11-slim") {
		t.Fatal("registry reference misdetected as archive path")
	}

	// A bare name that exists on disk is treated as an archive.
	dir := t.TempDir()
	path := filepath.Join(dir, "image.tar")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if !isArchivePath(path) {
		t.Fatal("existing file should be an archive path")
	}
}
