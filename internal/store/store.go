// Package store implements the persistence layer behind the conversation
// engine. Stores are injected as interfaces so the engine never touches a
// concrete backend: sessions live in memory (they are deliberately not
// durable), while application records and the webhook delivery ledger are
// kept in SQLite via GORM.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/instagov/birthbot/internal/domain"
)

// ErrNotFound indicates the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate indicates a uniqueness violation on insert.
var ErrDuplicate = errors.New("duplicate")

// SessionUpdate is a partial session mutation with merge semantics:
// nil pointers leave the current value untouched, Fields entries are merged
// into the existing map (ResetFields clears it first).
type SessionUpdate struct {
	State        *domain.State
	Locale       *domain.Locale
	ConsentGiven *bool
	Fields       map[domain.FieldKey]string
	ResetFields  bool
}

// SessionStore is the keyed session mapping consumed by the engine.
// Implementations must be safe for concurrent use across conversants;
// per-conversant event ordering is the engine's concern, not the store's.
type SessionStore interface {
	// GetOrCreate returns the session for the conversant, creating a fresh
	// INITIAL session on first access.
	GetOrCreate(ctx context.Context, conversantID string) (*domain.Session, error)
	// Update applies a partial mutation and returns the updated session.
	Update(ctx context.Context, conversantID string, u SessionUpdate) (*domain.Session, error)
	// Delete drops the session; the next GetOrCreate recreates it fresh.
	Delete(ctx context.Context, conversantID string) error
	// Len reports the number of live sessions (health endpoint).
	Len(ctx context.Context) (int, error)
}

// RecordStore is the append-only application record mapping. Records are
// created by the confirm transition or the web-form submission and are never
// updated or deleted.
type RecordStore interface {
	// Create generates a fresh unique record id, fills ID/Status/SubmittedAt,
	// and persists the record. The generated id is written back into rec.
	Create(ctx context.Context, rec *domain.ApplicationRecord) error
	// Get returns a record by id, or ErrNotFound.
	Get(ctx context.Context, id string) (*domain.ApplicationRecord, error)
	// ListPage returns a page of records, newest first.
	ListPage(ctx context.Context, offset, limit int) ([]domain.ApplicationRecord, error)
	// Count returns the total number of records.
	Count(ctx context.Context) (int64, error)
}

// DeliveryLedger records processed inbound webhook message ids for the
// duplicate-suppression window.
type DeliveryLedger interface {
	// Seen reports whether messageID was already processed and is still
	// inside its suppression window at the given time.
	Seen(ctx context.Context, messageID string, now time.Time) (bool, error)
	// MarkProcessed records messageID with the given TTL. Marking an
	// already-recorded id is not an error.
	MarkProcessed(ctx context.Context, messageID, conversantID string, ttl time.Duration) error
}
