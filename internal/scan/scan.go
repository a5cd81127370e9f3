// Package scan walks a media library and reports its contents.
//
// A scan counts video and subtitle files by extension, skips ignored
// folders, aggregates sizes, and tracks files added the previous day based
// on modification time. Reports render with human-readable sizes for
// logging and notifications.
package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrRootMissing = errors.New("scan root does not exist")
	ErrScan        = errors.New("scan failed")
)

// Controls a library scan.
type Options struct {
	Root               string   // Directory to scan.
	VideoExtensions    []string // Video file extensions, with leading dot.
	SubtitleExtensions []string // Subtitle file extensions, with leading dot.
	IgnoredFolders     []string // Folder name prefixes to skip.
	MinFileSize        int64    // Videos smaller than this many bytes are not counted.
}

// Per-folder counters, keyed by path relative to the scan root.
type FolderStats struct {
	Videos       int
	Subtitles    int
	NewYesterday int
	Size         int64
}

// Aggregated results of a library scan.
type Report struct {
	Root         string
	Videos       int
	Subtitles    int
	NewYesterday int
	TotalSize    int64
	Folders      map[string]FolderStats
	Duration     time.Duration
	ScannedAt    time.Time
}

// Walks the library rooted at opts.Root and collects counts and sizes.
//
// Folders whose names match an ignored prefix are skipped entirely,
// including their subtrees. Files that cannot be stat'd are logged and
// skipped rather than failing the scan.
func Run(opts Options) (*Report, error) {
	start := time.Now()

	if _, err := os.Stat(opts.Root); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRootMissing, opts.Root)
	}

	report := &Report{
		Root:      opts.Root,
		Folders:   make(map[string]FolderStats),
		ScannedAt: start,
	}

	yesterdayStart, yesterdayEnd := yesterdayWindow(start)

	err := filepath.WalkDir(opts.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != opts.Root && ignoredFolder(d.Name(), opts.IgnoredFolders) {
				return filepath.SkipDir
			}
			return nil
		}

		// Symlinked files are listed but never followed or sized.
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		isVideo := matchExtension(d.Name(), opts.VideoExtensions)
		isSubtitle := !isVideo && matchExtension(d.Name(), opts.SubtitleExtensions)
		if !isVideo && !isSubtitle {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			slog.Warn("skipping unreadable file", "path", path, "error", err)
			return nil
		}

		if isVideo && info.Size() < opts.MinFileSize {
			return nil
		}

		rel, err := filepath.Rel(opts.Root, filepath.Dir(path))
		if err != nil {
			return err
		}

		folder := report.Folders[rel]
		if isVideo {
			folder.Videos++
			report.Videos++
		} else {
			folder.Subtitles++
			report.Subtitles++
		}

		folder.Size += info.Size()
		report.TotalSize += info.Size()

		mtime := info.ModTime()
		if !mtime.Before(yesterdayStart) && mtime.Before(yesterdayEnd) {
			folder.NewYesterday++
			report.NewYesterday++
		}

		report.Folders[rel] = folder
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScan, err)
	}

	report.Duration = time.Since(start)
	return report, nil
}

// Reports whether a folder name matches any ignored prefix.
//
// A leading "^" on a pattern is stripped for compatibility with configs
// that write prefixes as anchored regular expressions.
func ignoredFolder(name string, patterns []string) bool {
	for _, p := range patterns {
		p = strings.TrimPrefix(p, "^")
		if p != "" && strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// Reports whether a filename carries one of the given extensions,
// case-insensitively.
func matchExtension(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// Returns the start and end of the calendar day before now.
func yesterdayWindow(now time.Time) (start, end time.Time) {
	y := now.AddDate(0, 0, -1)
	start = time.Date(y.Year(), y.Month(), y.Day(), 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}
