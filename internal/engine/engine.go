// Package engine implements the conversation state machine that drives the
// data-collection dialogue. It reads and updates the session store, runs the
// field validators, composes the next prompt, and hands outbound messages to
// the delivery client.
//
// Concurrency model: events for different conversants are independent units
// of work; events for one conversant are strictly serialized behind a
// per-conversant lock so a session is never mutated concurrently. A slow
// delivery or backoff sequence for one conversant never blocks another.
//
// Hard invariant: the engine never transitions on invalid input — the
// conversant gets an invalid-input notice followed by the same prompt again.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/instagov/birthbot/internal/boterr"
	"github.com/instagov/birthbot/internal/domain"
	"github.com/instagov/birthbot/internal/i18n"
	"github.com/instagov/birthbot/internal/store"
	"github.com/instagov/birthbot/internal/wa"
)

var eventsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bot_events_total",
		Help: "Inbound events by outcome.",
	},
	[]string{"outcome"}, // processed | duplicate | dropped
)

func init() {
	prometheus.MustRegister(eventsTotal)
}

// Sender delivers one outbound message. Satisfied by *wa.Client.
type Sender interface {
	Send(ctx context.Context, to string, msg wa.Message) (*wa.Receipt, error)
}

// handlerFunc processes one input for a session in a given state.
type handlerFunc func(ctx context.Context, s *domain.Session, input string) error

// Options wires an Engine.
type Options struct {
	Sessions   store.SessionStore
	Records    store.RecordStore
	Ledger     store.DeliveryLedger
	Sender     Sender
	Catalog    *i18n.Catalog
	Classifier *boterr.Classifier
	DedupTTL   time.Duration
	Log        zerolog.Logger
}

// Engine is the conversation state machine. Safe for concurrent use.
type Engine struct {
	sessions   store.SessionStore
	records    store.RecordStore
	ledger     store.DeliveryLedger
	sender     Sender
	catalog    *i18n.Catalog
	classifier *boterr.Classifier
	dedupTTL   time.Duration
	log        zerolog.Logger

	handlers map[domain.State]handlerFunc

	mu    sync.Mutex
	locks map[string]*convLock

	// now is a test seam; defaults to time.Now.
	now func() time.Time
}

// New constructs an Engine and verifies the transition table covers every
// declared dialogue state. An uncovered state is a construction-time panic,
// not a silent fallthrough at runtime.
func New(opts Options) *Engine {
	e := &Engine{
		sessions:   opts.Sessions,
		records:    opts.Records,
		ledger:     opts.Ledger,
		sender:     opts.Sender,
		catalog:    opts.Catalog,
		classifier: opts.Classifier,
		dedupTTL:   opts.DedupTTL,
		log:        opts.Log,
		locks:      make(map[string]*convLock),
		now:        time.Now,
	}
	e.handlers = map[domain.State]handlerFunc{
		domain.StateInitial:           e.handleInitial,
		domain.StateLanguageSelection: e.handleLanguageSelection,
		domain.StateConsent:           e.handleConsent,
		domain.StateDocsInfo:          e.handleDocsInfo,
		domain.StateMainMenu:          e.handleMainMenu,
		domain.StateCollectChildName:  e.handleChildName,
		domain.StateCollectDOB:        e.handleDOB,
		domain.StateCollectGender:     e.handleGender,
		domain.StateCollectFatherName: e.handleFatherName,
		domain.StateCollectMotherName: e.handleMotherName,
		domain.StateCollectPlaceBirth: e.handlePlaceOfBirth,
		domain.StateCollectHospital:   e.handleHospitalName,
		domain.StateCollectAddress:    e.handleAddress,
		domain.StateCollectMobile:     e.handleMobile,
		domain.StateConfirmDetails:    e.handleConfirmation,
	}
	for _, st := range domain.AllStates {
		if _, ok := e.handlers[st]; !ok {
			panic("engine: no handler for state " + string(st))
		}
	}
	return e
}

// convLock is a reference-counted per-conversant serialization lock. The
// count covers holders and waiters, so an entry leaves the map only when no
// event for that conversant is in flight and the map stays bounded by the
// number of active conversants.
type convLock struct {
	mu   sync.Mutex
	refs int
}

// acquire takes the serialization lock for a conversant, creating the entry
// on first use.
func (e *Engine) acquire(conversantID string) *convLock {
	e.mu.Lock()
	l, ok := e.locks[conversantID]
	if !ok {
		l = &convLock{}
		e.locks[conversantID] = l
	}
	l.refs++
	e.mu.Unlock()

	l.mu.Lock()
	return l
}

// release drops the lock and deletes the map entry once the last holder or
// waiter is gone.
func (e *Engine) release(conversantID string, l *convLock) {
	l.mu.Unlock()

	e.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(e.locks, conversantID)
	}
	e.mu.Unlock()
}

// HandleEvent processes one inbound event: drops redeliveries inside the
// suppression window, serializes per conversant, applies global commands,
// and dispatches to the state handler. Every processed event yields at least
// one outbound message.
func (e *Engine) HandleEvent(ctx context.Context, ev wa.InboundEvent) error {
	tr := otel.Tracer("engine/Engine")
	ctx, span := tr.Start(ctx, "HandleEvent",
		trace.WithAttributes(attribute.String("conversant.id", ev.ConversantID)),
	)
	defer span.End()

	lock := e.acquire(ev.ConversantID)
	defer e.release(ev.ConversantID, lock)

	if e.ledger != nil && ev.MessageID != "" {
		seen, err := e.ledger.Seen(ctx, ev.MessageID, e.now().UTC())
		if err != nil {
			// A failing ledger must not silence the conversant; process anyway.
			e.log.Warn().Err(err).Str("message_id", ev.MessageID).Msg("dedup lookup failed")
		} else if seen {
			eventsTotal.WithLabelValues("duplicate").Inc()
			e.log.Debug().
				Str("conversant_id", ev.ConversantID).
				Str("message_id", ev.MessageID).
				Msg("duplicate delivery dropped")
			return nil
		}
	}

	s, err := e.sessions.GetOrCreate(ctx, ev.ConversantID)
	if err != nil {
		eventsTotal.WithLabelValues("dropped").Inc()
		return err
	}
	input := ev.Input()

	e.log.Info().
		Str("conversant_id", ev.ConversantID).
		Str("state", string(s.State)).
		Str("type", ev.Type).
		Msg("processing event")

	if err := e.dispatch(ctx, s, input); err != nil {
		eventsTotal.WithLabelValues("dropped").Inc()
		return err
	}

	if e.ledger != nil && ev.MessageID != "" {
		if err := e.ledger.MarkProcessed(ctx, ev.MessageID, ev.ConversantID, e.dedupTTL); err != nil {
			e.log.Warn().Err(err).Str("message_id", ev.MessageID).Msg("dedup mark failed")
		}
	}
	eventsTotal.WithLabelValues("processed").Inc()
	return nil
}

// dispatch applies the global commands and then the state handler.
func (e *Engine) dispatch(ctx context.Context, s *domain.Session, input string) error {
	// Global commands override state-specific handling from any state.
	switch normalizeCommand(input) {
	case cmdMenu:
		st := domain.StateMainMenu
		s, err := e.sessions.Update(ctx, s.ConversantID, store.SessionUpdate{State: &st})
		if err != nil {
			return err
		}
		return e.send(ctx, s, e.text(s, i18n.MsgMainMenu, nil))
	case cmdHelp:
		// Help never changes state.
		return e.send(ctx, s, e.text(s, i18n.MsgHelp, nil))
	}
	return e.handlers[s.State](ctx, s, input)
}

// send delivers msg, classifying failures. A delivery failure still answers
// the conversant: the classified localized message is sent best-effort so no
// inbound event goes unanswered.
func (e *Engine) send(ctx context.Context, s *domain.Session, msg wa.Message) error {
	_, err := e.sender.Send(ctx, s.ConversantID, msg)
	if err == nil {
		e.classifier.ClearRetries(s.ConversantID)
		return nil
	}

	res := e.classifier.Classify(ctx, err, boterr.Context{
		ConversantID: s.ConversantID,
		State:        s.State,
		Action:       "send",
		Locale:       s.Locale,
	})
	if _, ferr := e.sender.Send(ctx, s.ConversantID, wa.Text{Body: res.UserMessage}); ferr != nil {
		e.log.Error().Err(ferr).
			Str("conversant_id", s.ConversantID).
			Msg("failure notice undeliverable")
	}
	return nil
}

// text renders a localized catalog message as a plain text body.
func (e *Engine) text(s *domain.Session, id i18n.MessageID, args map[string]string) wa.Text {
	return wa.Text{Body: e.catalog.Render(s.Locale, id, args)}
}

// invalid answers invalid input: an invalid-input notice followed by the
// current prompt again. The session state is never touched here.
func (e *Engine) invalid(ctx context.Context, s *domain.Session) error {
	if err := e.send(ctx, s, e.text(s, i18n.MsgInvalidInput, nil)); err != nil {
		return err
	}
	return e.send(ctx, s, e.prompt(s))
}
