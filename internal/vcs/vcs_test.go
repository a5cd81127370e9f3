package vcs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Creates a repository in a temp dir and returns it with its worktree path.
func initRepo(t *testing.T) (*git.Repository, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}
	return repo, dir
}

// Writes a file and commits it, returning the commit hash.
func commitFile(t *testing.T, repo *git.Repository, dir, name, content string) plumbing.Hash {
	t.Helper()

	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	if _, err := wt.Add(name); err != nil {
		t.Fatalf("add: %v", err)
	}

	hash, err := wt.Commit("add "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	return hash
}

func tag(t *testing.T, repo *git.Repository, name string, hash plumbing.Hash) {
	t.Helper()
	if _, err := repo.CreateTag(name, hash, nil); err != nil {
		t.Fatalf("tag %s: %v", name, err)
	}
}

func TestDescribeExactTag(t *testing.T) {
	repo, dir := initRepo(t)
	hash := commitFile(t, repo, dir, "a.txt", "a")
	tag(t, repo, "v1.2.3", hash)

	info, err := Describe(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Version != "1.2.3" {
		t.Errorf("version = %q, want 1.2.3", info.Version)
	}
	if !info.Tagged {
		t.Error("Tagged = false, want true")
	}
	if info.Commit != hash.String() {
		t.Errorf("commit = %q, want %q", info.Commit, hash.String())
	}
}

func TestDescribePostRelease(t *testing.T) {
	repo, dir := initRepo(t)
	tagged := commitFile(t, repo, dir, "a.txt", "a")
	tag(t, repo, "v0.5.0", tagged)
	commitFile(t, repo, dir, "b.txt", "b")
	head := commitFile(t, repo, dir, "c.txt", "c")

	info, err := Describe(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "0.5.0.post2+" + head.String()[:shortHashLen]
	if info.Version != want {
		t.Errorf("version = %q, want %q", info.Version, want)
	}
	if info.Tagged {
		t.Error("Tagged = true, want false")
	}
}

func TestDescribeUntaggedHistory(t *testing.T) {
	repo, dir := initRepo(t)
	commitFile(t, repo, dir, "a.txt", "a")
	head := commitFile(t, repo, dir, "b.txt", "b")

	info, err := Describe(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(info.Version, "0.0.0.post2+") {
		t.Errorf("version = %q, want 0.0.0.post2+ prefix", info.Version)
	}
	if !strings.HasSuffix(info.Version, head.String()[:shortHashLen]) {
		t.Errorf("version = %q, want %s suffix", info.Version, head.String()[:shortHashLen])
	}
}

func TestDescribeNoRepository(t *testing.T) {
	_, err := Describe(t.TempDir())
	if !errors.Is(err, ErrNoRepository) {
		t.Fatalf("err = %v, want ErrNoRepository", err)
	}
}

func TestDescribeNestedWorktreePath(t *testing.T) {
	repo, dir := initRepo(t)
	hash := commitFile(t, repo, dir, "a.txt", "a")
	tag(t, repo, "v2.0.0", hash)

	sub := filepath.Join(dir, "pkg")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	info, err := Describe(sub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Version != "2.0.0" {
		t.Errorf("version = %q, want 2.0.0", info.Version)
	}
}

func TestHasMetadata(t *testing.T) {
	_, dir := initRepo(t)
	if !HasMetadata(dir) {
		t.Error("HasMetadata = false for a repository")
	}
	if HasMetadata(t.TempDir()) {
		t.Error("HasMetadata = true for a plain directory")
	}
}

func TestNormalizeTag(t *testing.T) {
	if got := normalizeTag("v1.0.0"); got != "1.0.0" {
		t.Errorf("normalizeTag(v1.0.0) = %q", got)
	}
	if got := normalizeTag("1.0.0"); got != "1.0.0" {
		t.Errorf("normalizeTag(1.0.0) = %q", got)
	}
}
