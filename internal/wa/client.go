// Package wa — resilient delivery client.
//
// Client delivers one composed outbound message to the Graph API and
// absorbs transient transport failures with a bounded, class-specific retry
// loop. Retry policy (after the initial attempt):
//
//   - network failure (no response): up to 3 retries, 1000ms × retry number
//   - rate-limit status (429):       up to 3 retries, fixed 5000ms
//   - server-error class (5xx):      up to 3 retries, 2000ms × retry number
//   - auth status (401/403):         no retry, fatal authentication failure
//   - any other non-success status:  no retry, surfaced as-is
//
// The retry budget is a single counter shared across classes, the backoff
// sequencing lives in one visible loop, and the delay is taken through an
// injected sleep function so tests observe the schedule without real time
// passing. Sleeps watch the context, and one conversant's backoff never
// blocks another conversant's send.
package wa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/instagov/birthbot/internal/boterr"
	"github.com/instagov/birthbot/internal/config"
)

// maxRetries caps retries after the initial attempt, per send.
const maxRetries = 3

var (
	messagesOut = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wa_messages_sent_total",
			Help: "Outbound WhatsApp messages by result.",
		},
		[]string{"result"},
	)
	sendRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wa_send_retries_total",
			Help: "Send retries by failure class.",
		},
		[]string{"class"},
	)
)

func init() {
	prometheus.MustRegister(messagesOut, sendRetries)
}

// Receipt is the gateway acknowledgement for a delivered message.
type Receipt struct {
	MessageID string
}

// Client sends outbound messages to the Graph API. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiVersion string
	phoneID    string
	token      string
	log        zerolog.Logger

	// sleep is a test seam; the default honors context cancellation.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient constructs a delivery client from gateway configuration.
func NewClient(cfg config.WhatsAppConfig, log zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    cfg.BaseURL,
		apiVersion: cfg.APIVersion,
		phoneID:    cfg.PhoneID,
		token:      cfg.Token,
		log:        log,
		sleep:      ctxSleep,
	}
}

// SendText delivers a plain text message.
func (c *Client) SendText(ctx context.Context, to, body string) (*Receipt, error) {
	return c.Send(ctx, to, Text{Body: body})
}

// Send delivers one message and returns the gateway receipt or a classified
// failure (*boterr.Error).
func (c *Client) Send(ctx context.Context, to string, msg Message) (*Receipt, error) {
	tr := otel.Tracer("wa/Client")
	ctx, span := tr.Start(ctx, "Send",
		trace.WithAttributes(attribute.String("wa.recipient", to)),
	)
	defer span.End()

	body, err := json.Marshal(msg.payload(to))
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	url := fmt.Sprintf("%s/%s/%s/messages", c.baseURL, c.apiVersion, c.phoneID)

	var lastErr *boterr.Error
	for retries := 0; ; retries++ {
		receipt, sendErr := c.attempt(ctx, url, body)
		if sendErr == nil {
			messagesOut.WithLabelValues("ok").Inc()
			return receipt, nil
		}
		lastErr = sendErr

		if !sendErr.Retryable || retries >= maxRetries {
			break
		}

		delay := backoffDelay(sendErr.Kind, retries+1)
		sendRetries.WithLabelValues(string(sendErr.Kind)).Inc()
		c.log.Warn().
			Str("recipient", to).
			Str("kind", string(sendErr.Kind)).
			Int("retry", retries+1).
			Dur("delay", delay).
			Msg("send retry")

		if err := c.sleep(ctx, delay); err != nil {
			break // context cancelled; surface the delivery failure
		}
	}

	messagesOut.WithLabelValues("failed").Inc()
	span.RecordError(lastErr)
	return nil, lastErr
}

// attempt performs a single HTTP exchange and classifies the outcome.
func (c *Client) attempt(ctx context.Context, url string, body []byte) (*Receipt, *boterr.Error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, boterr.Network(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, boterr.Network(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeAPIError(resp.Body)
		return nil, boterr.Delivery(resp.StatusCode, apiErr)
	}

	var out struct {
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		// 2xx with an undecodable body still counts as delivered.
		return &Receipt{}, nil
	}
	rec := &Receipt{}
	if len(out.Messages) > 0 {
		rec.MessageID = out.Messages[0].ID
	}
	return rec, nil
}

// backoffDelay returns the delay before the n-th retry (1-based) for a
// failure class.
func backoffDelay(kind boterr.Kind, n int) time.Duration {
	switch kind {
	case boterr.KindRateLimited:
		return 5000 * time.Millisecond
	case boterr.KindServerError:
		return time.Duration(n) * 2000 * time.Millisecond
	default: // network
		return time.Duration(n) * 1000 * time.Millisecond
	}
}

// decodeAPIError extracts the gateway error message from a failure body.
func decodeAPIError(r io.Reader) error {
	var out struct {
		Error struct {
			Message string `json:"message"`
			Code    int    `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&out); err != nil || out.Error.Message == "" {
		return nil
	}
	return fmt.Errorf("gateway: %s (code %d)", out.Error.Message, out.Error.Code)
}

// ctxSleep sleeps for d or until ctx is done, whichever comes first.
func ctxSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
