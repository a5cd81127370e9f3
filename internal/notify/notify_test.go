package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mediapack/internal/scan"
)

func testNotifier(t *testing.T, handler http.HandlerFunc) *Notifier {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	n, err := New(Settings{Enabled: true, Token: "test-token", ChatID: "42"})
	if err != nil {
		t.Fatalf("new notifier: %v", err)
	}
	n.apiBase = srv.URL
	return n
}

func TestBuildSucceededPostsMessage(t *testing.T) {
	var got map[string]string

	n := testNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if !strings.HasSuffix(r.URL.Path, "/bottest-token/sendMessage") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})

	err := n.BuildSucceeded(context.Background(), "javsp", "1.2.3", "dist")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got["chat_id"] != "42" {
		t.Errorf("chat_id = %q, want 42", got["chat_id"])
	}
	if got["parse_mode"] != "HTML" {
		t.Errorf("parse_mode = %q, want HTML", got["parse_mode"])
	}
	for _, want := range []string{"javsp", "1.2.3", "dist"} {
		if !strings.Contains(got["text"], want) {
			t.Errorf("text missing %q: %s", want, got["text"])
		}
	}
}

func TestBuildFailedEscapesError(t *testing.T) {
	var text string

	n := testNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		text = body["text"]
		w.WriteHeader(http.StatusOK)
	})

	err := n.BuildFailed(context.Background(), "javsp", errors.New("step <3> failed"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(text, "<3>") {
		t.Errorf("text not escaped: %s", text)
	}
	if !strings.Contains(text, "&lt;3&gt;") {
		t.Errorf("expected escaped error in text: %s", text)
	}
}

func TestScanReportSendsSummary(t *testing.T) {
	var text string

	n := testNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		text = body["text"]
		w.WriteHeader(http.StatusOK)
	})

	report := &scan.Report{
		Root:      "/video",
		Videos:    7,
		ScannedAt: time.Now(),
	}
	if err := n.ScanReport(context.Background(), report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "Videos: 7") {
		t.Errorf("text missing video count: %s", text)
	}
}

func TestSendReportsAPIError(t *testing.T) {
	n := testNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusBadRequest)
	})

	err := n.send(context.Background(), "hello")
	if !errors.Is(err, ErrSend) {
		t.Fatalf("err = %v, want ErrSend", err)
	}
	if !strings.Contains(err.Error(), "400") {
		t.Errorf("error missing status code: %v", err)
	}
}

func TestDisabledNotifierIsNoOp(t *testing.T) {
	n, err := New(Settings{Enabled: false})
	if err != nil {
		t.Fatalf("new notifier: %v", err)
	}
	if n.Enabled() {
		t.Error("Enabled() = true for disabled settings")
	}
	if err := n.send(context.Background(), "dropped"); err != nil {
		t.Fatalf("disabled send returned error: %v", err)
	}
}

func TestEnabledWithoutCredentialsDowngrades(t *testing.T) {
	n, err := New(Settings{Enabled: true})
	if err != nil {
		t.Fatalf("new notifier: %v", err)
	}
	if n.Enabled() {
		t.Error("Enabled() = true despite missing token and chat_id")
	}
}

func TestNewRejectsBadProxy(t *testing.T) {
	_, err := New(Settings{Enabled: true, Token: "t", ChatID: "c", Proxy: "://bad"})
	if err == nil {
		t.Fatal("expected error for malformed proxy url")
	}
}
