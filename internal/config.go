package internal

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"

	"mediapack/internal/manifest"
	"mediapack/internal/paths"
)

// Top-level tool configuration, loaded from a YAML file with environment
// variable overrides.
type Config struct {
	Containerd ContainerdConfig `yaml:"containerd"`
	App        AppConfig        `yaml:"app"`
	Scanner    ScannerConfig    `yaml:"scanner"`
	Telegram   TelegramConfig   `yaml:"telegram"`
}

// Connection settings for the container runtime.
type ContainerdConfig struct {
	Address   string `yaml:"address" env:"MEDIAPACK_CONTAINERD_ADDRESS" env-default:"/run/containerd/containerd.sock"`
	Namespace string `yaml:"namespace" env:"MEDIAPACK_CONTAINERD_NAMESPACE" env-default:"mediapack"`
}

// Packaging contract overrides for the application being packaged.
//
// Unset fields fall back to the conventional defaults in the manifest
// package.
type AppConfig struct {
	Binary     string   `yaml:"binary" env:"MEDIAPACK_APP_BINARY" env-default:"javsp"`
	BaseImage  string   `yaml:"base_image" env:"MEDIAPACK_BASE_IMAGE"`
	MountPath  string   `yaml:"mount_path" env:"MEDIAPACK_MOUNT_PATH"`
	InputFlag  string   `yaml:"input_flag"`
	Entrypoint []string `yaml:"entrypoint"`
}

// Media directory scanning settings.
type ScannerConfig struct {
	VideoExtensions    []string `yaml:"video_extensions" env:"MEDIAPACK_VIDEO_EXTENSIONS" env-default:".mp4,.mkv,.avi,.wmv,.mov,.ts,.m2ts,.rmvb,.iso,.flv"`
	SubtitleExtensions []string `yaml:"subtitle_extensions" env:"MEDIAPACK_SUBTITLE_EXTENSIONS" env-default:".srt,.ass,.ssa,.sub,.vtt"`
	IgnoredFolders     []string `yaml:"ignored_folder_patterns" env:"MEDIAPACK_IGNORED_FOLDERS" env-default:".,@,#recycle,#整理完成,#exist"`
	MinFileSizeMiB     int64    `yaml:"min_file_size_mib" env:"MEDIAPACK_MIN_FILE_SIZE_MIB" env-default:"0"`
}

// Settings for Telegram notifications.
type TelegramConfig struct {
	Enabled bool   `yaml:"enabled" env:"MEDIAPACK_TELEGRAM_ENABLED" env-default:"false"`
	Token   string `yaml:"token" env:"MEDIAPACK_TELEGRAM_TOKEN"`
	ChatID  string `yaml:"chat_id" env:"MEDIAPACK_TELEGRAM_CHAT_ID"`
	Proxy   string `yaml:"proxy" env:"MEDIAPACK_TELEGRAM_PROXY"`
}

// Loads configuration from the given file.
//
// An explicitly supplied path must exist. With no path the default config
// location is tried, falling back to environment variables and built-in
// defaults when no file is present there.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}

	explicit := path != ""
	if !explicit {
		path = paths.ConfigFile()
	}

	if _, err := os.Stat(path); err != nil {
		if explicit {
			return nil, fmt.Errorf("failed to load configuration from %s: %w", path, err)
		}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to load configuration from environment: %w", err)
		}
		return cfg, nil
	}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration from %s: %w", path, err)
	}
	return cfg, nil
}

// Builds the packaging contract from the configured overrides.
//
// The version, typically derived from the source checkout's repository
// history, is injected into the builder stage environment.
func (c *Config) Contract(version string) manifest.Contract {
	contract := manifest.DefaultContract(c.App.Binary)
	contract.Version = version

	if c.App.BaseImage != "" {
		contract.BaseImage = c.App.BaseImage
	}
	if c.App.MountPath != "" {
		contract.MountPath = c.App.MountPath
	}
	if c.App.InputFlag != "" {
		contract.InputFlag = c.App.InputFlag
	}
	if len(c.App.Entrypoint) > 0 {
		contract.Entrypoint = c.App.Entrypoint
	}

	return contract
}
