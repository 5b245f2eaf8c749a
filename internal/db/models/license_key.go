// Package models defines the database model types for the license key backend.
// Each type corresponds to a database table and uses struct tags for both JSON
// serialization and sqlx row scanning.
// Models are pure data types: business logic belongs in the service layer and
// query logic in the repositories layer.
package models

import "time"

// LicenseKey represents an issued license key
type LicenseKey struct {
	ID        string     `db:"id" json:"id"`
	Token     string     `db:"token" json:"token"` // Public key string (e.g. "KA-7XJ4Q"), unique for the lifetime of the store
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	ExpiresAt *time.Time `db:"expires_at" json:"expires_at"` // nil means the key never expires
	Lifetime  bool       `db:"lifetime" json:"lifetime"`
	DeviceID  *string    `db:"device_id" json:"device_id"`   // Set on first successful claim, never reassigned
	ClaimedAt *time.Time `db:"claimed_at" json:"claimed_at"` // Set together with DeviceID
	DeletedAt *time.Time `db:"deleted_at" json:"-"`          // Tombstone; deleted tokens are never reissued
}

// Claimed reports whether the key has been bound to a device.
func (k *LicenseKey) Claimed() bool {
	return k.DeviceID != nil
}

// Expired reports whether the key's deadline has passed at the given instant.
// Lifetime keys (no deadline) never expire. The deadline itself is already
// expired (now == ExpiresAt counts), matching the claim query's strict
// expires_at > now guard so a key can never be claimed at its deadline.
func (k *LicenseKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && !now.Before(*k.ExpiresAt)
}
