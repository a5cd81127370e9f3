// Package notify sends build and scan notifications over the Telegram Bot
// API.
//
// Notifications are best-effort: a disabled or misconfigured notifier
// silently drops messages, and delivery failures are reported to the caller
// but never abort the operation that triggered them.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"mediapack/internal/scan"
)

var ErrSend = errors.New("notification delivery failed")

const defaultAPIBase = "https://api.telegram.org"

const requestTimeout = 30 * time.Second

// Notifier settings. Token and ChatID are required when Enabled is true.
type Settings struct {
	Enabled bool
	Token   string
	ChatID  string
	Proxy   string // Optional HTTP(S) proxy URL for reaching the Bot API.
}

// Sends messages to a Telegram chat.
//
// The zero value is a disabled notifier whose methods are no-ops.
type Notifier struct {
	settings Settings
	apiBase  string
	client   *http.Client
}

// Creates a notifier from settings.
//
// An enabled notifier with a missing token or chat ID is downgraded to
// disabled with a logged warning, mirroring how a partially configured
// notifier should never fail the surrounding operation.
func New(settings Settings) (*Notifier, error) {
	n := &Notifier{settings: settings, apiBase: defaultAPIBase}

	if !settings.Enabled {
		return n, nil
	}

	if settings.Token == "" || settings.ChatID == "" {
		slog.Warn("telegram notifications enabled but token or chat_id missing, disabling")
		n.settings.Enabled = false
		return n, nil
	}

	transport := http.DefaultTransport
	if settings.Proxy != "" {
		proxyURL, err := url.Parse(settings.Proxy)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid proxy url: %w", ErrSend, err)
		}
		transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}

	n.client = &http.Client{Transport: transport, Timeout: requestTimeout}
	return n, nil
}

// Reports whether the notifier will deliver messages.
func (n *Notifier) Enabled() bool {
	return n != nil && n.settings.Enabled
}

// Notifies that an image build completed.
func (n *Notifier) BuildSucceeded(ctx context.Context, name, version, output string) error {
	msg := fmt.Sprintf(
		"✅ <b>Image build complete</b>\n\n"+
			"📦 <b>Name</b>: %s\n"+
			"🏷 <b>Version</b>: %s\n"+
			"📁 <b>Output</b>: %s",
		escape(name), escape(version), escape(output))
	return n.send(ctx, msg)
}

// Notifies that an image build failed.
func (n *Notifier) BuildFailed(ctx context.Context, name string, buildErr error) error {
	msg := fmt.Sprintf(
		"❌ <b>Image build failed</b>\n\n"+
			"📦 <b>Name</b>: %s\n"+
			"⚠️ <b>Error</b>: %s",
		escape(name), escape(buildErr.Error()))
	return n.send(ctx, msg)
}

// Sends a library scan report.
func (n *Notifier) ScanReport(ctx context.Context, report *scan.Report) error {
	msg := "🎬 " + escape(report.Render())
	return n.send(ctx, msg)
}

// Posts a message to the Bot API's sendMessage endpoint.
func (n *Notifier) send(ctx context.Context, text string) error {
	if !n.Enabled() {
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"chat_id":    n.settings.ChatID,
		"text":       text,
		"parse_mode": "HTML",
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSend, err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.settings.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSend, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSend, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrSend, resp.StatusCode, body)
	}

	slog.Debug("telegram notification sent")
	return nil
}

// Escapes HTML special characters for Telegram's HTML parse mode.
func escape(s string) string {
	return html.EscapeString(s)
}
