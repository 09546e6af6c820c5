// Package store — in-memory session store.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/instagov/birthbot/internal/domain"
)

// MemorySessions is the in-memory SessionStore. Sessions are intentionally
// not durable; a restart starts every conversant from INITIAL. The store
// hands out clones so callers cannot mutate shared state outside Update.
type MemorySessions struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session

	// now is a test seam; defaults to time.Now.
	now func() time.Time
}

// NewMemorySessions constructs an empty session store.
func NewMemorySessions() *MemorySessions {
	return &MemorySessions{
		sessions: make(map[string]*domain.Session),
		now:      time.Now,
	}
}

// GetOrCreate implements SessionStore.
func (m *MemorySessions) GetOrCreate(_ context.Context, conversantID string) (*domain.Session, error) {
	m.mu.RLock()
	if s, ok := m.sessions[conversantID]; ok {
		cp := s.Clone()
		m.mu.RUnlock()
		return cp, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	// Re-check under the write lock; another goroutine may have created it.
	if s, ok := m.sessions[conversantID]; ok {
		return s.Clone(), nil
	}
	s := domain.NewSession(conversantID, m.now().UTC())
	m.sessions[conversantID] = s
	return s.Clone(), nil
}

// Update implements SessionStore with merge semantics.
func (m *MemorySessions) Update(_ context.Context, conversantID string, u SessionUpdate) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[conversantID]
	if !ok {
		s = domain.NewSession(conversantID, m.now().UTC())
		m.sessions[conversantID] = s
	}

	if u.State != nil {
		s.State = *u.State
	}
	if u.Locale != nil {
		s.Locale = *u.Locale
	}
	if u.ConsentGiven != nil {
		s.ConsentGiven = *u.ConsentGiven
	}
	if u.ResetFields {
		s.Fields = make(map[domain.FieldKey]string)
	}
	for k, v := range u.Fields {
		s.Fields[k] = v
	}
	s.UpdatedAt = m.now().UTC()

	return s.Clone(), nil
}

// Delete implements SessionStore.
func (m *MemorySessions) Delete(_ context.Context, conversantID string) error {
	m.mu.Lock()
	delete(m.sessions, conversantID)
	m.mu.Unlock()
	return nil
}

// Len implements SessionStore.
func (m *MemorySessions) Len(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions), nil
}
