// Package licensing implements the per-request validation state machine that
// enforces expiry and claim-once device binding, plus the read-only stats and
// recent-event reporting used by the admin dashboard.
//
// Transition order matters: expiry is checked before binding state, so an
// expired-but-unbound key cannot be claimed, and an expired key on the
// original device is still reported as expired.
package licensing

import (
	"context"
	"log/slog"
	"time"

	"github.com/ajinzmodzhp/admin-panel2/internal/db/models"
	"github.com/ajinzmodzhp/admin-panel2/internal/db/repositories"
	"github.com/ajinzmodzhp/admin-panel2/internal/telemetry"
)

// Outcome is the terminal state of one validation request.
type Outcome string

const (
	// OutcomeClaimed: the key was unbound and this request bound it.
	OutcomeClaimed Outcome = "claimed"
	// OutcomeValid: the key was already bound to the calling device.
	OutcomeValid Outcome = "valid"
	// OutcomeNotFound: no live record for the token.
	OutcomeNotFound Outcome = "not_found"
	// OutcomeExpired: the key's deadline has passed.
	OutcomeExpired Outcome = "expired"
	// OutcomeDeviceMismatch: the key is bound to a different device.
	OutcomeDeviceMismatch Outcome = "device_mismatch"
)

// Result is the outcome of a validation request. Claimed is true only when
// this request performed the binding.
type Result struct {
	Outcome Outcome
	Claimed bool
	Key     *models.LicenseKey
}

// KeyStore is the slice of the key repository the engine needs. Records it
// returns are treated as read-only snapshots; the only mutation path is the
// atomic Claim.
type KeyStore interface {
	FindByToken(ctx context.Context, token string) (*models.LicenseKey, error)
	FindByID(ctx context.Context, id string) (*models.LicenseKey, error)
	Claim(ctx context.Context, token, deviceID string, now time.Time) (repositories.ClaimOutcome, error)
	Delete(ctx context.Context, id string, now time.Time) (bool, error)
	AggregateStats(ctx context.Context, now time.Time) (repositories.Stats, error)
}

// EventStore is the slice of the event repository the engine needs.
type EventStore interface {
	Append(ctx context.Context, event *models.KeyEvent) error
	Recent(ctx context.Context, limit int) ([]*models.KeyEvent, error)
}

// Service executes validations and serves stats against one shared store.
type Service struct {
	keys   KeyStore
	events EventStore
}

// NewService creates a licensing Service.
func NewService(keys KeyStore, events EventStore) *Service {
	return &Service{keys: keys, events: events}
}

// Validate runs the claim-once state machine for (token, deviceID).
//
// States: NotFound, Expired, Unbound → Claimed, Bound-Match, Bound-Mismatch.
// Rejections are audited; the record is never altered except by the single
// atomic claim transition.
func (s *Service) Validate(ctx context.Context, token, deviceID string) (Result, error) {
	now := time.Now().UTC()

	key, err := s.keys.FindByToken(ctx, token)
	if err != nil {
		return Result{}, err
	}
	if key == nil {
		return s.finish(Result{Outcome: OutcomeNotFound}), nil
	}

	if key.Expired(now) {
		s.appendEvent(ctx, key, models.EventRejectedExpired, &deviceID, now)
		return s.finish(Result{Outcome: OutcomeExpired, Key: key}), nil
	}

	if !key.Claimed() {
		outcome, err := s.keys.Claim(ctx, token, deviceID, now)
		if err != nil {
			return Result{}, err
		}
		if outcome.Claimed {
			s.appendEvent(ctx, outcome.Key, models.EventClaimed, &deviceID, now)
			return s.finish(Result{Outcome: OutcomeClaimed, Claimed: true, Key: outcome.Key}), nil
		}
		// Lost a concurrent claim race, or the key expired between the read
		// and the claim statement. Fall through on the re-read record.
		key = outcome.Key
		if key == nil {
			return s.finish(Result{Outcome: OutcomeNotFound}), nil
		}
		if !key.Claimed() {
			s.appendEvent(ctx, key, models.EventRejectedExpired, &deviceID, now)
			return s.finish(Result{Outcome: OutcomeExpired, Key: key}), nil
		}
	}

	if *key.DeviceID == deviceID {
		return s.finish(Result{Outcome: OutcomeValid, Key: key}), nil
	}

	s.appendEvent(ctx, key, models.EventRejectedMismatch, &deviceID, now)
	return s.finish(Result{Outcome: OutcomeDeviceMismatch, Key: key}), nil
}

// Delete tombstones a key addressed by token or surrogate id and audits the
// deletion. Returns false when no live key matches.
func (s *Service) Delete(ctx context.Context, ref string) (bool, error) {
	now := time.Now().UTC()

	key, err := s.keys.FindByToken(ctx, ref)
	if err != nil {
		return false, err
	}
	if key == nil {
		key, err = s.keys.FindByID(ctx, ref)
		if err != nil {
			return false, err
		}
	}
	if key == nil {
		return false, nil
	}

	deleted, err := s.keys.Delete(ctx, key.ID, now)
	if err != nil {
		return false, err
	}
	if deleted {
		s.appendEvent(ctx, key, models.EventDeleted, nil, now)
		telemetry.KeysDeletedTotal.Inc()
	}

	return deleted, nil
}

// Stats returns the aggregate counts over all live keys.
func (s *Service) Stats(ctx context.Context) (repositories.Stats, error) {
	return s.keys.AggregateStats(ctx, time.Now().UTC())
}

// RecentEvents returns the most recent audit events, newest first.
func (s *Service) RecentEvents(ctx context.Context, limit int) ([]*models.KeyEvent, error) {
	return s.events.Recent(ctx, limit)
}

func (s *Service) finish(r Result) Result {
	telemetry.KeyValidationsTotal.WithLabelValues(string(r.Outcome)).Inc()
	return r
}

// appendEvent writes an audit entry. The validation outcome is already
// persisted at this point, so an audit write failure is logged rather than
// failing the request.
func (s *Service) appendEvent(ctx context.Context, key *models.LicenseKey, kind string, deviceID *string, now time.Time) {
	event := &models.KeyEvent{
		KeyID:     &key.ID,
		Token:     key.Token,
		Kind:      kind,
		DeviceID:  deviceID,
		CreatedAt: now,
	}
	if err := s.events.Append(ctx, event); err != nil {
		slog.Warn("failed to append key event", "token", key.Token, "kind", kind, "error", err)
	}
}
