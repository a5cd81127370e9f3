package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"

	"mediapack/internal/manifest"
)

func TestLoadConfigDefaults(t *testing.T) {
	// Point the default config location at an empty directory so only env
	// defaults apply. xdg caches its paths at init, so reload around the
	// override.
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Containerd.Address != "/run/containerd/containerd.sock" {
		t.Errorf("address = %q", cfg.Containerd.Address)
	}
	if cfg.Containerd.Namespace != "mediapack" {
		t.Errorf("namespace = %q", cfg.Containerd.Namespace)
	}
	if cfg.App.Binary != "javsp" {
		t.Errorf("binary = %q", cfg.App.Binary)
	}
	if len(cfg.Scanner.VideoExtensions) == 0 {
		t.Error("video extensions empty")
	}
	if cfg.Telegram.Enabled {
		t.Error("telegram enabled by default")
	}
}

func TestLoadConfigMissingExplicitPath(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := `
containerd:
  namespace: custom
app:
  binary: scraper
  mount_path: /media
telegram:
  enabled: true
  token: tok
  chat_id: "99"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Containerd.Namespace != "custom" {
		t.Errorf("namespace = %q, want custom", cfg.Containerd.Namespace)
	}
	if cfg.App.Binary != "scraper" {
		t.Errorf("binary = %q, want scraper", cfg.App.Binary)
	}
	if cfg.App.MountPath != "/media" {
		t.Errorf("mount_path = %q, want /media", cfg.App.MountPath)
	}
	if !cfg.Telegram.Enabled || cfg.Telegram.Token != "tok" || cfg.Telegram.ChatID != "99" {
		t.Errorf("telegram = %+v", cfg.Telegram)
	}
}

func TestContractMergesOverrides(t *testing.T) {
	cfg := &Config{}
	cfg.App.Binary = "scraper"
	cfg.App.MountPath = "/media"
	cfg.App.InputFlag = "--input"

	contract := cfg.Contract("1.0.0")

	if contract.Binary != "scraper" {
		t.Errorf("binary = %q", contract.Binary)
	}
	if contract.Version != "1.0.0" {
		t.Errorf("version = %q", contract.Version)
	}
	if contract.MountPath != "/media" {
		t.Errorf("mount path = %q", contract.MountPath)
	}
	if got := contract.DefaultArgs(); len(got) != 2 || got[0] != "--input" || got[1] != "/media" {
		t.Errorf("default args = %v", got)
	}
	if contract.BaseImage != manifest.DefaultBaseImage {
		t.Errorf("base image = %q", contract.BaseImage)
	}
}

func TestContractUnsetFieldsKeepDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.App.Binary = "javsp"

	contract := cfg.Contract("")

	if contract.MountPath != manifest.DefaultMountPath {
		t.Errorf("mount path = %q", contract.MountPath)
	}
	if got := contract.DefaultArgs(); len(got) != 2 || got[0] != manifest.DefaultInputFlag {
		t.Errorf("default args = %v", got)
	}
}
