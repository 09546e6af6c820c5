// Package store — GORM-backed webhook delivery ledger.
//
// The gateway may redeliver an inbound webhook event. Each WhatsApp message
// carries a stable message id; the ledger records processed ids with a TTL
// so the engine can drop exact redeliveries instead of advancing a session
// twice.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/instagov/birthbot/internal/domain"
)

// GormLedger is the SQLite-backed DeliveryLedger.
type GormLedger struct {
	db *gorm.DB

	now func() time.Time
}

// NewGormLedger constructs a DeliveryLedger on the given GORM handle.
func NewGormLedger(db *gorm.DB) *GormLedger {
	return &GormLedger{db: db, now: time.Now}
}

// Seen implements DeliveryLedger.
func (l *GormLedger) Seen(ctx context.Context, messageID string, now time.Time) (bool, error) {
	if messageID == "" {
		return false, nil
	}
	var rec domain.WebhookDelivery
	err := l.db.WithContext(ctx).
		Where("message_id = ? AND expires_at > ?", messageID, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkProcessed implements DeliveryLedger. Expired rows for the same message
// id are replaced; a concurrent duplicate insert is treated as already
// marked, not as a failure.
func (l *GormLedger) MarkProcessed(ctx context.Context, messageID, conversantID string, ttl time.Duration) error {
	if messageID == "" {
		return nil
	}
	now := l.now().UTC()

	// Drop an expired row first so the unique index does not block re-marking.
	l.db.WithContext(ctx).
		Where("message_id = ? AND expires_at <= ?", messageID, now).
		Delete(&domain.WebhookDelivery{})

	rec := &domain.WebhookDelivery{
		ID:           uuid.NewString(),
		MessageID:    messageID,
		ConversantID: conversantID,
		ProcessedAt:  now,
		ExpiresAt:    now.Add(ttl),
	}
	if err := l.db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return err
	}
	return nil
}
