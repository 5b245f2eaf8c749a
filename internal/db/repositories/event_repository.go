// event_repository.go implements EventRepository, the append-only audit trail
// for key lifecycle events. Events are never mutated; deleting a key leaves
// its events in place (key_id is nulled by the schema, the denormalized token
// keeps the trail readable).
package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ajinzmodzhp/admin-panel2/internal/db/models"
)

// EventRepository handles key event database operations
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Append records a new audit event.
func (r *EventRepository) Append(ctx context.Context, event *models.KeyEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	query := `
		INSERT INTO key_events (id, key_id, token, kind, device_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.KeyID,
		event.Token,
		event.Kind,
		event.DeviceID,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}

	return nil
}

// Recent retrieves the most recent events, newest first.
func (r *EventRepository) Recent(ctx context.Context, limit int) ([]*models.KeyEvent, error) {
	query := `
		SELECT id, key_id, token, kind, device_id, created_at
		FROM key_events
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	events := make([]*models.KeyEvent, 0)
	if err := r.db.SelectContext(ctx, &events, query, limit); err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}

	return events, nil
}
