package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	toolName = "mediapack"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755
)

// Default path to the configuration file.
//
//	Linux:   ~/.config/mediapack/config.yml
//	macOS:   ~/Library/Application Support/mediapack/config.yml
func ConfigFile() string {
	return filepath.Join(xdg.ConfigHome, toolName, "config.yml")
}

// Default directory for exported image archives.
//
//	Linux:   ~/.local/share/mediapack/images
//	macOS:   ~/Library/Application Support/mediapack/images
func Images() string {
	return filepath.Join(xdg.DataHome, toolName, "images")
}
