package cli

import (
	"context"
	"fmt"
	"log/slog"

	"mediapack/internal"
	"mediapack/internal/notify"
	"mediapack/internal/scan"
)

const bytesPerMiB = 1 << 20

// Represents the 'mediapack scan' command.
type ScanCmd struct {
	Dir    string `arg:"" help:"Media directory to scan." type:"existingdir"`
	Notify bool   `help:"Send the report to the configured Telegram chat."`
}

// Executes the scan command.
//
// Walks the media directory with the configured extension and folder
// filters, prints the report, and optionally delivers it as a notification.
func (c *ScanCmd) Run(ctx context.Context) error {
	cfg, err := internal.LoadConfig(RootCmd.Config)
	if err != nil {
		return err
	}

	report, err := scan.Run(scan.Options{
		Root:               c.Dir,
		VideoExtensions:    cfg.Scanner.VideoExtensions,
		SubtitleExtensions: cfg.Scanner.SubtitleExtensions,
		IgnoredFolders:     cfg.Scanner.IgnoredFolders,
		MinFileSize:        cfg.Scanner.MinFileSizeMiB * bytesPerMiB,
	})
	if err != nil {
		return err
	}

	fmt.Println(report.Render())

	if !c.Notify {
		return nil
	}

	notifier, err := notify.New(notify.Settings{
		Enabled: cfg.Telegram.Enabled,
		Token:   cfg.Telegram.Token,
		ChatID:  cfg.Telegram.ChatID,
		Proxy:   cfg.Telegram.Proxy,
	})
	if err != nil {
		return err
	}

	if !notifier.Enabled() {
		slog.Warn("scan notification requested but telegram is not configured")
		return nil
	}

	return notifier.ScanReport(ctx, report)
}
