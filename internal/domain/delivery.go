// Package domain — webhook delivery ledger model.
package domain

import "time"

// WebhookDelivery records a processed inbound webhook message id. The gateway
// may redeliver the same inbound event; the engine consults this ledger and
// drops exact redeliveries inside the TTL window instead of advancing the
// session twice.
type WebhookDelivery struct {
	ID           string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	MessageID    string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_delivery_message"`
	ConversantID string    `gorm:"type:TEXT NOT NULL;index"`
	ProcessedAt  time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt    time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (WebhookDelivery) TableName() string { return "webhook_deliveries" }
