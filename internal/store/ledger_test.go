package store

import (
	"context"
	"testing"
	"time"
)

func TestGormLedger_SeenWindow(t *testing.T) {
	l := NewGormLedger(newTestDB(t, "ledger_window"))
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return at }
	ctx := context.Background()

	seen, err := l.Seen(ctx, "wamid.1", at)
	if err != nil || seen {
		t.Fatalf("unmarked id: seen=%v err=%v", seen, err)
	}

	if err := l.MarkProcessed(ctx, "wamid.1", "919876543210", time.Hour); err != nil {
		t.Fatalf("MarkProcessed: %v", err)
	}

	seen, err = l.Seen(ctx, "wamid.1", at.Add(30*time.Minute))
	if err != nil || !seen {
		t.Fatalf("inside window: seen=%v err=%v", seen, err)
	}

	// Past the suppression window the id reads as new again.
	seen, err = l.Seen(ctx, "wamid.1", at.Add(2*time.Hour))
	if err != nil || seen {
		t.Fatalf("after expiry: seen=%v err=%v", seen, err)
	}
}

func TestGormLedger_RemarkNotAnError(t *testing.T) {
	l := NewGormLedger(newTestDB(t, "ledger_remark"))
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return at }
	ctx := context.Background()

	if err := l.MarkProcessed(ctx, "wamid.1", "a", time.Hour); err != nil {
		t.Fatalf("first mark: %v", err)
	}
	if err := l.MarkProcessed(ctx, "wamid.1", "a", time.Hour); err != nil {
		t.Fatalf("duplicate mark: %v", err)
	}
}

func TestGormLedger_ExpiredRowReplaced(t *testing.T) {
	l := NewGormLedger(newTestDB(t, "ledger_replace"))
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return at }
	ctx := context.Background()

	if err := l.MarkProcessed(ctx, "wamid.1", "a", time.Hour); err != nil {
		t.Fatalf("first mark: %v", err)
	}

	// Re-marking after expiry replaces the stale row and opens a new window.
	l.now = func() time.Time { return at.Add(2 * time.Hour) }
	if err := l.MarkProcessed(ctx, "wamid.1", "a", time.Hour); err != nil {
		t.Fatalf("re-mark after expiry: %v", err)
	}
	seen, err := l.Seen(ctx, "wamid.1", at.Add(2*time.Hour+30*time.Minute))
	if err != nil || !seen {
		t.Fatalf("new window: seen=%v err=%v", seen, err)
	}
}

func TestGormLedger_EmptyMessageID(t *testing.T) {
	l := NewGormLedger(newTestDB(t, "ledger_empty"))
	ctx := context.Background()

	if err := l.MarkProcessed(ctx, "", "a", time.Hour); err != nil {
		t.Fatalf("empty mark: %v", err)
	}
	seen, err := l.Seen(ctx, "", time.Now())
	if err != nil || seen {
		t.Fatalf("empty id: seen=%v err=%v", seen, err)
	}
}
