// key_repository.go implements KeyRepository, providing database queries for
// license key insertion, lookup, atomic claim, tombstone deletion, and
// aggregate statistics.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ajinzmodzhp/admin-panel2/internal/db/models"
)

const keyColumns = `id, token, created_at, expires_at, lifetime, device_id, claimed_at, deleted_at`

// KeyRepository handles license key database operations
type KeyRepository struct {
	db *sqlx.DB
}

// NewKeyRepository creates a new KeyRepository
func NewKeyRepository(db *sqlx.DB) *KeyRepository {
	return &KeyRepository{db: db}
}

// Insert creates a new unbound key record. It is atomic: either the record
// exists afterward with exactly these fields or not at all. A token collision
// returns ErrDuplicateToken.
func (r *KeyRepository) Insert(ctx context.Context, key *models.LicenseKey) error {
	if key.ID == "" {
		key.ID = uuid.New().String()
	}

	query := `
		INSERT INTO license_keys (id, token, created_at, expires_at, lifetime)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		key.ID,
		key.Token,
		key.CreatedAt,
		key.ExpiresAt,
		key.Lifetime,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateToken
	}
	if err != nil {
		return fmt.Errorf("insert key: %w", err)
	}

	return nil
}

// FindByToken retrieves a key by its public token. Returns (nil, nil) when no
// live record exists; tombstoned keys are treated as absent.
func (r *KeyRepository) FindByToken(ctx context.Context, token string) (*models.LicenseKey, error) {
	query := `
		SELECT ` + keyColumns + `
		FROM license_keys
		WHERE token = $1 AND deleted_at IS NULL
	`

	key := &models.LicenseKey{}
	err := r.db.GetContext(ctx, key, query, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find key by token: %w", err)
	}

	return key, nil
}

// FindByID retrieves a key by its surrogate id. Returns (nil, nil) when absent.
func (r *KeyRepository) FindByID(ctx context.Context, id string) (*models.LicenseKey, error) {
	query := `
		SELECT ` + keyColumns + `
		FROM license_keys
		WHERE id = $1 AND deleted_at IS NULL
	`

	key := &models.LicenseKey{}
	err := r.db.GetContext(ctx, key, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find key by id: %w", err)
	}

	return key, nil
}

// ListAll retrieves all live keys, newest first.
func (r *KeyRepository) ListAll(ctx context.Context) ([]*models.LicenseKey, error) {
	query := `
		SELECT ` + keyColumns + `
		FROM license_keys
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
	`

	keys := make([]*models.LicenseKey, 0)
	if err := r.db.SelectContext(ctx, &keys, query); err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}

	return keys, nil
}

// ClaimOutcome is the result of an atomic claim attempt.
type ClaimOutcome struct {
	// Claimed is true when this call performed the binding.
	Claimed bool
	// Key is the current record after the attempt: the freshly bound record
	// for the winner, or the record as left by a prior (or concurrent)
	// binding for everyone else. Nil when the token does not exist.
	Key *models.LicenseKey
}

// Claim atomically binds an unbound, unexpired key to a device. The binding
// is a single read-modify-write statement, so two simultaneous claims for the
// same token produce exactly one winner; the loser observes the winner's
// device_id in the returned record.
func (r *KeyRepository) Claim(ctx context.Context, token, deviceID string, now time.Time) (ClaimOutcome, error) {
	query := `
		UPDATE license_keys
		SET device_id = $2, claimed_at = $3
		WHERE token = $1
		  AND deleted_at IS NULL
		  AND device_id IS NULL
		  AND (expires_at IS NULL OR expires_at > $3)
		RETURNING ` + keyColumns + `
	`

	key := &models.LicenseKey{}
	err := r.db.GetContext(ctx, key, query, token, deviceID, now)
	if err == nil {
		return ClaimOutcome{Claimed: true, Key: key}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return ClaimOutcome{}, fmt.Errorf("claim key: %w", err)
	}

	// Lost the race, already bound, expired, or absent. Re-read so the
	// caller can tell those states apart.
	current, err := r.FindByToken(ctx, token)
	if err != nil {
		return ClaimOutcome{}, err
	}

	return ClaimOutcome{Key: current}, nil
}

// Delete tombstones a key so the token is retired permanently. Returns false
// when the key does not exist or is already deleted.
func (r *KeyRepository) Delete(ctx context.Context, id string, now time.Time) (bool, error) {
	query := `
		UPDATE license_keys
		SET deleted_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`

	res, err := r.db.ExecContext(ctx, query, id, now)
	if err != nil {
		return false, fmt.Errorf("delete key: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete key rows affected: %w", err)
	}

	return n > 0, nil
}

// Stats holds the aggregate counts over all live keys.
type Stats struct {
	Total   int64 `db:"total" json:"total"`
	Active  int64 `db:"active" json:"active"`   // no deadline, or deadline in the future
	Used    int64 `db:"used" json:"used"`       // bound to a device
	Expired int64 `db:"expired" json:"expired"` // deadline in the past
}

// AggregateStats computes key counts in a single database round-trip.
// Every key either has no deadline or a deadline, so active + expired == total.
func (r *KeyRepository) AggregateStats(ctx context.Context, now time.Time) (Stats, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE expires_at IS NULL OR expires_at > $1) AS active,
			COUNT(device_id) AS used,
			COUNT(*) FILTER (WHERE expires_at IS NOT NULL AND expires_at <= $1) AS expired
		FROM license_keys
		WHERE deleted_at IS NULL
	`

	var stats Stats
	if err := r.db.GetContext(ctx, &stats, query, now); err != nil {
		return Stats{}, fmt.Errorf("aggregate stats: %w", err)
	}

	return stats, nil
}
