// Package boterr — failure classifier.
//
// The Classifier turns a raw failure into everything the rest of the system
// needs to react: severity, retry eligibility for the conversant, and the
// localized user-facing message. It also keeps a running per-kind frequency
// counter that raises an operator warning once a configurable threshold is
// exceeded, and feeds Prometheus so dashboards see classified failures by
// kind and severity.
package boterr

import (
	"context"
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/instagov/birthbot/internal/domain"
	"github.com/instagov/birthbot/internal/i18n"
)

// maxUserRetries caps automatic retries attributed to a single conversant.
// When the cap saturates it is cleared and the failure surfaces to the user.
const maxUserRetries = 3

var errsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bot_errors_total",
		Help: "Total classified bot failures by kind and severity.",
	},
	[]string{"kind", "severity"},
)

func init() {
	prometheus.MustRegister(errsTotal)
}

// Notifier is the operator alert channel. Implementations must be
// fire-and-forget: a failing alert never affects the main flow.
type Notifier interface {
	Notify(ctx context.Context, subject, detail string)
}

// Context carries the request context a classification is logged with.
type Context struct {
	ConversantID string
	State        domain.State
	Action       string
	Locale       domain.Locale
}

// Result is the outcome of classifying one failure.
type Result struct {
	Kind        Kind
	Severity    Severity
	CanRetry    bool
	UserMessage string
}

// Classifier maps raw failures into Results. Safe for concurrent use.
type Classifier struct {
	catalog  *i18n.Catalog
	notifier Notifier
	log      zerolog.Logger

	// Threshold for the per-kind frequency warning. <= 0 disables it.
	Threshold int

	mu      sync.Mutex
	freq    map[Kind]int
	retries map[string]int // conversant id → consecutive retry count
}

// NewClassifier constructs a Classifier. notifier may be nil (alerts are
// then log-only via the provided logger).
func NewClassifier(catalog *i18n.Catalog, notifier Notifier, log zerolog.Logger, threshold int) *Classifier {
	return &Classifier{
		catalog:   catalog,
		notifier:  notifier,
		log:       log,
		Threshold: threshold,
		freq:      make(map[Kind]int),
		retries:   make(map[string]int),
	}
}

// Classify logs the failure with context, updates frequency counters, fires
// the operator alert on critical severity, and returns the localized user
// message plus retry eligibility for this conversant.
func (c *Classifier) Classify(ctx context.Context, err error, ec Context) Result {
	e := asTagged(err)

	c.logError(e, ec)
	c.trackFrequency(e.Kind)
	errsTotal.WithLabelValues(string(e.Kind), string(e.Severity)).Inc()

	if e.Severity == SeverityCritical && c.notifier != nil {
		c.notifier.Notify(ctx, "critical bot failure", e.Error())
	}

	return Result{
		Kind:        e.Kind,
		Severity:    e.Severity,
		CanRetry:    c.shouldRetry(e, ec.ConversantID),
		UserMessage: c.UserMessage(e, ec.Locale),
	}
}

// UserMessage resolves the localized user-facing message for a failure.
// Unknown locales fall back to English; kinds without a specific entry fall
// back to the locale default string.
func (c *Classifier) UserMessage(err error, loc domain.Locale) string {
	e := asTagged(err)
	var id i18n.MessageID
	switch e.Kind {
	case KindRateLimited:
		id = i18n.MsgErrRateLimited
	case KindServerError:
		id = i18n.MsgErrServerError
	case KindAuth:
		id = i18n.MsgErrAuth
	case KindDomainVerification:
		if e.Reason == "expired" {
			id = i18n.MsgErrOTPExpired
		} else {
			id = i18n.MsgErrOTPInvalid
		}
	case KindValidation:
		id = i18n.MsgErrValidation
	case KindNetwork:
		id = i18n.MsgErrNetwork
	default:
		id = i18n.MsgDefaultError
	}
	return c.catalog.Render(loc, id, nil)
}

// shouldRetry applies the per-conversant retry policy: never for auth or
// validation failures, server-error-class transport failures only (the
// delivery client owns the rate-limit and network retry budget), and at most
// maxUserRetries consecutive attempts per conversant, after which the counter
// is cleared and the failure surfaces.
func (c *Classifier) shouldRetry(e *Error, conversantID string) bool {
	if e.Kind == KindAuth || e.Kind == KindValidation {
		return false
	}
	if e.Kind != KindServerError {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.retries[conversantID] >= maxUserRetries {
		delete(c.retries, conversantID)
		return false
	}
	c.retries[conversantID]++
	return true
}

// ClearRetries resets the retry counter for a conversant, e.g. after a
// successful delivery or once enough time has elapsed.
func (c *Classifier) ClearRetries(conversantID string) {
	c.mu.Lock()
	delete(c.retries, conversantID)
	c.mu.Unlock()
}

func (c *Classifier) trackFrequency(k Kind) {
	c.mu.Lock()
	c.freq[k]++
	n := c.freq[k]
	c.mu.Unlock()

	if c.Threshold > 0 && n == c.Threshold+1 {
		c.log.Error().
			Str("kind", string(k)).
			Int("occurrences", n).
			Msg("high error frequency")
		if c.notifier != nil {
			c.notifier.Notify(context.Background(), "high error frequency", string(k))
		}
	}
}

func (c *Classifier) logError(e *Error, ec Context) {
	ev := c.log.Warn()
	switch e.Severity {
	case SeverityCritical, SeverityHigh:
		ev = c.log.Error()
	}
	ev.
		Str("kind", string(e.Kind)).
		Str("severity", string(e.Severity)).
		Bool("retryable", e.Retryable).
		Int("origin_status", e.OriginStatus).
		Str("conversant_id", ec.ConversantID).
		Str("state", string(ec.State)).
		Str("action", ec.Action).
		Err(e).
		Msg("classified failure")
}

// asTagged coerces err to a tagged *Error, wrapping unknown errors as
// delivery-other so every failure has a severity and a user message.
func asTagged(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return newError(KindDeliveryOther, err)
}
