package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := LogNotifier{Log: zerolog.New(&buf)}

	n.Notify(context.Background(), "critical bot failure", "kind=server_error")

	out := buf.String()
	if !strings.Contains(out, "critical bot failure") || !strings.Contains(out, "kind=server_error") {
		t.Fatalf("log output = %q", out)
	}
	if !strings.Contains(out, `"level":"error"`) {
		t.Errorf("alert not logged at error level: %q", out)
	}
}

func TestWebhookNotifier_Delivers(t *testing.T) {
	got := make(chan map[string]string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		var payload map[string]string
		json.Unmarshal(body, &payload)
		got <- payload
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, zerolog.Nop())
	n.Notify(context.Background(), "high error frequency", "kind=rate_limited count=5")

	select {
	case payload := <-got:
		if payload["subject"] != "high error frequency" {
			t.Errorf("subject = %q", payload["subject"])
		}
		if payload["detail"] != "kind=rate_limited count=5" {
			t.Errorf("detail = %q", payload["detail"])
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("alert never delivered")
	}
}

func TestWebhookNotifier_FailureSwallowed(t *testing.T) {
	var buf bytes.Buffer
	n := NewWebhookNotifier("http://127.0.0.1:1", zerolog.New(&buf))

	// An unreachable endpoint must not panic or block the caller.
	n.Notify(context.Background(), "subject", "detail")
	time.Sleep(100 * time.Millisecond)
}
