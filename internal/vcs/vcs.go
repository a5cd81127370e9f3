// Package vcs derives package versions from git history.
//
// The builder stage freezes the application version at build time. When the
// source checkout is a git repository, the version is computed from the
// nearest reachable tag: an exact tag match yields the tag's version, while
// a tagged ancestor yields a post-release of the form
// "<base>.post<distance>+<short-hash>". Checkouts without version-control
// metadata yield no version and the caller falls back to an explicit
// override.
package vcs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

var (
	ErrNoRepository = errors.New("no git repository")
	ErrDescribe     = errors.New("version derivation failed")
)

// Version used when the repository has no reachable tags.
const zeroVersion = "0.0.0"

// Length of the abbreviated commit hash in derived versions.
const shortHashLen = 7

// Describes a source checkout's position in version history.
type Info struct {
	Version string // Derived version string.
	Commit  string // Full hash of the checked-out commit.
	Tagged  bool   // True if the commit carries a version tag directly.
}

// Derives version information from the git repository at or above path.
//
// Returns [ErrNoRepository] if path is not inside a git repository, in
// which case the caller should fall back to an explicit version.
func Describe(path string) (*Info, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNoRepository, path)
		}
		return nil, fmt.Errorf("%w: %w", ErrDescribe, err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDescribe, err)
	}

	tags, err := tagCommits(repo)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDescribe, err)
	}

	base, distance, found, err := nearestTag(repo, head.Hash(), tags)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDescribe, err)
	}

	info := &Info{Commit: head.Hash().String()}

	switch {
	case found && distance == 0:
		info.Version = base
		info.Tagged = true
	case found:
		info.Version = postRelease(base, distance, head.Hash())
	default:
		info.Version = postRelease(zeroVersion, distance, head.Hash())
	}

	return info, nil
}

// Reports whether the checkout at or above path carries version-control
// metadata.
func HasMetadata(path string) bool {
	_, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	return err == nil
}

// Formats a post-release version for a commit past the nearest tag.
func postRelease(base string, distance int, hash plumbing.Hash) string {
	return fmt.Sprintf("%s.post%d+%s", base, distance, hash.String()[:shortHashLen])
}

// Maps commit hashes to version strings for all tags in the repository.
//
// Annotated tags are resolved to their target commits. Tag names are
// normalized by stripping a leading "v".
func tagCommits(repo *git.Repository) (map[plumbing.Hash]string, error) {
	tags := make(map[plumbing.Hash]string)

	iter, err := repo.Tags()
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	err = iter.ForEach(func(ref *plumbing.Reference) error {
		hash := ref.Hash()
		if obj, err := repo.TagObject(hash); err == nil {
			hash = obj.Target
		}
		tags[hash] = normalizeTag(ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, err
	}

	return tags, nil
}

// Walks history from head and returns the version of the nearest tagged
// ancestor plus the number of commits between them. When no ancestor is
// tagged, found is false and distance is the total commit count.
func nearestTag(repo *git.Repository, head plumbing.Hash, tags map[plumbing.Hash]string) (version string, distance int, found bool, err error) {
	iter, err := repo.Log(&git.LogOptions{From: head})
	if err != nil {
		return "", 0, false, err
	}
	defer iter.Close()

	err = iter.ForEach(func(c *object.Commit) error {
		if v, ok := tags[c.Hash]; ok {
			version = v
			found = true
			return storer.ErrStop
		}
		distance++
		return nil
	})
	if err != nil {
		return "", 0, false, err
	}

	return version, distance, found, nil
}

// Strips the conventional "v" prefix from a tag name.
func normalizeTag(name string) string {
	return strings.TrimPrefix(name, "v")
}
