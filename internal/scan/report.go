package scan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

// Renders the report as a multi-line plain-text summary suitable for logs
// and notification messages.
func (r *Report) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Library scan report\n\n")
	fmt.Fprintf(&b, "Scanned at: %s\n", r.ScannedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Videos: %d\n", r.Videos)
	fmt.Fprintf(&b, "Subtitles: %d\n", r.Subtitles)
	fmt.Fprintf(&b, "Total size: %s\n", humanize.Bytes(uint64(r.TotalSize)))
	fmt.Fprintf(&b, "New yesterday: %d\n", r.NewYesterday)
	fmt.Fprintf(&b, "Scan duration: %.1fs\n", r.Duration.Seconds())
	fmt.Fprintf(&b, "Directory: %s", r.Root)

	if len(r.Folders) > 0 {
		fmt.Fprintf(&b, "\n\nBy folder:")
		for _, name := range r.sortedFolders() {
			s := r.Folders[name]
			fmt.Fprintf(&b, "\n  %s: %d videos, %d subtitles, %s",
				name, s.Videos, s.Subtitles, humanize.Bytes(uint64(s.Size)))
		}
	}

	return b.String()
}

// Returns folder keys in lexical order for stable rendering.
func (r *Report) sortedFolders() []string {
	names := make([]string, 0, len(r.Folders))
	for name := range r.Folders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
