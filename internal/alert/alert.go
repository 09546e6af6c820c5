// Package alert provides the operator alert channel invoked on critical
// failure classifications. Alerts are strictly fire-and-forget: a failing
// notifier never affects the main flow.
package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Notifier is a fire-and-forget operator alert sink.
type Notifier interface {
	Notify(ctx context.Context, subject, detail string)
}

// LogNotifier writes alerts to the structured log. It is the default sink
// when no webhook is configured.
type LogNotifier struct {
	Log zerolog.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(_ context.Context, subject, detail string) {
	n.Log.Error().
		Str("subject", subject).
		Str("detail", detail).
		Msg("operator alert")
}

// WebhookNotifier POSTs alerts as JSON to a configured endpoint (Slack-style
// incoming webhook). Delivery runs on its own goroutine with a short
// timeout; failures are logged and swallowed.
type WebhookNotifier struct {
	URL    string
	Log    zerolog.Logger
	Client *http.Client
}

// NewWebhookNotifier constructs a WebhookNotifier with a bounded client.
func NewWebhookNotifier(url string, log zerolog.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		URL:    url,
		Log:    log,
		Client: &http.Client{Timeout: 5 * time.Second},
	}
}

// Notify implements Notifier.
func (n *WebhookNotifier) Notify(_ context.Context, subject, detail string) {
	payload, err := json.Marshal(map[string]string{
		"subject": subject,
		"detail":  detail,
	})
	if err != nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(payload))
		if err != nil {
			n.Log.Warn().Err(err).Msg("alert webhook request")
			return
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := n.Client.Do(req)
		if err != nil {
			n.Log.Warn().Err(err).Msg("alert webhook delivery")
			return
		}
		resp.Body.Close()
	}()
}
