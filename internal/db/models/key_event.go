// Package models - key_event.go defines the KeyEvent model for the append-only
// audit trail, capturing the key, event kind, acting device, and timestamp.
package models

import "time"

// Event kinds recorded in the key_events table.
const (
	EventCreated          = "created"
	EventClaimed          = "claimed"
	EventRejectedExpired  = "rejected-expired"
	EventRejectedMismatch = "rejected-device-mismatch"
	EventDeleted          = "deleted"
)

// KeyEvent represents one append-only audit entry for a license key.
// The token is denormalized into the event so the audit trail remains
// readable after the parent key is deleted.
type KeyEvent struct {
	ID        string    `db:"id" json:"id"`
	KeyID     *string   `db:"key_id" json:"key_id"`
	Token     string    `db:"token" json:"token"`
	Kind      string    `db:"kind" json:"kind"`
	DeviceID  *string   `db:"device_id" json:"device_id"` // Acting device, if any
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
