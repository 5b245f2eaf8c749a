// generator.go implements the batch key generator: clamping the requested
// count, resolving the expiry token, and inserting candidates with a bounded
// per-key collision retry budget.
package keygen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ajinzmodzhp/admin-panel2/internal/db/models"
	"github.com/ajinzmodzhp/admin-panel2/internal/db/repositories"
	"github.com/ajinzmodzhp/admin-panel2/internal/expiry"
	"github.com/ajinzmodzhp/admin-panel2/internal/telemetry"
)

// InvalidExpiryPolicy decides what happens when the expiry token fails to parse.
type InvalidExpiryPolicy string

const (
	// InvalidExpiryLifetime silently issues lifetime keys for malformed expiry
	// tokens. This matches the long-standing panel behavior, at the cost of a
	// typo granting a permanent key.
	InvalidExpiryLifetime InvalidExpiryPolicy = "lifetime"

	// InvalidExpiryReject refuses the whole batch with ErrInvalidExpiry.
	InvalidExpiryReject InvalidExpiryPolicy = "reject"
)

// ErrInvalidExpiry is returned under InvalidExpiryReject when the expiry token
// cannot be parsed. Nothing is inserted in that case.
var ErrInvalidExpiry = errors.New("invalid expiry token")

// KeyInserter is the slice of the key store the generator needs.
type KeyInserter interface {
	Insert(ctx context.Context, key *models.LicenseKey) error
}

// EventAppender records audit events for created keys.
type EventAppender interface {
	Append(ctx context.Context, event *models.KeyEvent) error
}

// Config holds generator tuning knobs; zero values fall back to defaults.
type Config struct {
	Format        TokenFormat
	MaxBatch      int // requested count is clamped to this (default 200)
	MaxAttempts   int // insert attempts per key before giving up (default 12)
	InvalidExpiry InvalidExpiryPolicy
}

// Generator issues batches of license keys against the key store.
type Generator struct {
	keys   KeyInserter
	events EventAppender
	cfg    Config
}

// NewGenerator creates a Generator. Zero-valued config fields are defaulted.
func NewGenerator(keys KeyInserter, events EventAppender, cfg Config) *Generator {
	if cfg.Format.Prefix == "" && cfg.Format.Alphabet == "" && cfg.Format.SuffixLength == 0 {
		cfg.Format = DefaultTokenFormat()
	}
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = 200
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 12
	}
	if cfg.InvalidExpiry == "" {
		cfg.InvalidExpiry = InvalidExpiryLifetime
	}
	return &Generator{keys: keys, events: events, cfg: cfg}
}

// ItemError reports one key of the batch that could not be generated.
type ItemError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// BatchResult is the outcome of one Generate call. Created holds every key
// that was successfully inserted; Failed lists the requests that exhausted
// their retry budget. Partial failure never rolls back the successes.
type BatchResult struct {
	Created []*models.LicenseKey
	Failed  []ItemError
}

// Generate issues up to n keys with the given expiry token. n is floored to 1
// and clamped to the configured maximum. All keys in the batch share one
// now() capture so their deadlines do not skew within a request.
func (g *Generator) Generate(ctx context.Context, n int, expiryToken string) (*BatchResult, error) {
	if n < 1 {
		n = 1
	}
	if n > g.cfg.MaxBatch {
		n = g.cfg.MaxBatch
	}

	now := time.Now().UTC()

	exp, err := expiry.Parse(expiryToken, now)
	if err != nil {
		switch g.cfg.InvalidExpiry {
		case InvalidExpiryReject:
			return nil, fmt.Errorf("%w: %q", ErrInvalidExpiry, expiryToken)
		default:
			slog.Warn("unparseable expiry token, issuing lifetime keys",
				"expiry_token", expiryToken, "count", n)
			exp = expiry.Expiry{Lifetime: true}
		}
	}

	result := &BatchResult{Created: make([]*models.LicenseKey, 0, n)}

	for i := 0; i < n; i++ {
		key, err := g.generateOne(ctx, exp, now)
		if err != nil {
			result.Failed = append(result.Failed, ItemError{Index: i, Error: err.Error()})
			telemetry.KeyGenerationFailuresTotal.Inc()
			continue
		}
		result.Created = append(result.Created, key)
		telemetry.KeysGeneratedTotal.Inc()
	}

	return result, nil
}

// generateOne draws candidates until one inserts cleanly or the attempt
// budget is exhausted. Collisions are the steady-state retry path; any other
// store error aborts this item immediately.
func (g *Generator) generateOne(ctx context.Context, exp expiry.Expiry, now time.Time) (*models.LicenseKey, error) {
	var lastErr error

	for attempt := 0; attempt < g.cfg.MaxAttempts; attempt++ {
		token, err := g.cfg.Format.NewToken()
		if err != nil {
			return nil, err
		}

		key := &models.LicenseKey{
			Token:     token,
			CreatedAt: now,
			ExpiresAt: exp.Deadline,
			Lifetime:  exp.Deadline == nil,
		}

		err = g.keys.Insert(ctx, key)
		if err == nil {
			g.appendCreatedEvent(ctx, key, now)
			return key, nil
		}
		if !errors.Is(err, repositories.ErrDuplicateToken) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("retry budget exhausted after %d attempts: %w", g.cfg.MaxAttempts, lastErr)
}

func (g *Generator) appendCreatedEvent(ctx context.Context, key *models.LicenseKey, now time.Time) {
	event := &models.KeyEvent{
		KeyID:     &key.ID,
		Token:     key.Token,
		Kind:      models.EventCreated,
		CreatedAt: now,
	}
	if err := g.events.Append(ctx, event); err != nil {
		// The key itself is already persisted; a lost audit entry is logged,
		// not surfaced as a generation failure.
		slog.Warn("failed to append created event", "token", key.Token, "error", err)
	}
}
