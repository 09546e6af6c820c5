// Package store — GORM-backed application record store.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/instagov/birthbot/internal/domain"
)

// GormRecords is the SQLite-backed RecordStore.
type GormRecords struct {
	db *gorm.DB

	// now is a test seam; defaults to time.Now.
	now func() time.Time
}

// NewGormRecords constructs a RecordStore on the given GORM handle.
func NewGormRecords(db *gorm.DB) *GormRecords {
	return &GormRecords{db: db, now: time.Now}
}

// Create implements RecordStore. The id is time-based ("BC" + unix
// milliseconds) so records sort by submission time; on the rare same-
// millisecond collision the timestamp is bumped until the insert succeeds.
func (r *GormRecords) Create(ctx context.Context, rec *domain.ApplicationRecord) error {
	now := r.now().UTC()
	rec.Status = domain.StatusSubmitted
	rec.SubmittedAt = now

	ms := now.UnixMilli()
	for attempt := 0; attempt < 5; attempt++ {
		rec.ID = fmt.Sprintf("BC%d", ms+int64(attempt))
		err := r.db.WithContext(ctx).Create(rec).Error
		if err == nil {
			return nil
		}
		if !isUniqueViolation(err) {
			return err
		}
	}
	return ErrDuplicate
}

// Get implements RecordStore.
func (r *GormRecords) Get(ctx context.Context, id string) (*domain.ApplicationRecord, error) {
	var rec domain.ApplicationRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListPage implements RecordStore, newest first.
func (r *GormRecords) ListPage(ctx context.Context, offset, limit int) ([]domain.ApplicationRecord, error) {
	var recs []domain.ApplicationRecord
	err := r.db.WithContext(ctx).
		Order("submitted_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&recs).Error
	return recs, err
}

// Count implements RecordStore.
func (r *GormRecords) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.ApplicationRecord{}).Count(&n).Error
	return n, err
}

// isUniqueViolation reports whether err is a uniqueness violation.
// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique")
}
