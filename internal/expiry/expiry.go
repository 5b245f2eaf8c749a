// Package expiry parses human-entered expiry tokens ("LT", "2H", "30D") into
// an absolute deadline or a lifetime marker. Parsing is pure: the caller
// supplies the reference instant so that every key in a generation batch
// shares a single now() capture.
package expiry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidToken is returned for tokens that are neither a lifetime alias
// nor a well-formed <positive integer><H|D> duration.
var ErrInvalidToken = errors.New("invalid expiry token")

// Expiry is the resolved expiry of a key: either a lifetime key with no
// deadline, or an absolute deadline.
type Expiry struct {
	Lifetime bool
	Deadline *time.Time // nil when Lifetime is true
}

// Parse resolves an expiry token relative to now.
//
// Grammar (case-insensitive, surrounding whitespace ignored):
//
//	LT | L | LIFETIME          -> lifetime key, no deadline
//	<positive integer>H        -> now + that many hours
//	<positive integer>D        -> now + that many days
//
// Anything else (empty, zero, negative, unknown unit) returns ErrInvalidToken.
// The caller decides how invalid tokens are handled; see keygen.Generator.
func Parse(token string, now time.Time) (Expiry, error) {
	v := strings.ToUpper(strings.TrimSpace(token))
	if v == "" {
		return Expiry{}, ErrInvalidToken
	}

	switch v {
	case "LT", "L", "LIFETIME":
		return Expiry{Lifetime: true}, nil
	}

	if len(v) < 2 {
		return Expiry{}, fmt.Errorf("%w: %q", ErrInvalidToken, token)
	}

	numStr, unit := v[:len(v)-1], v[len(v)-1]

	// Reject signs, decimals, and embedded spaces before ParseInt so "+2H"
	// and "1.5D" fail rather than parsing loosely.
	if strings.ContainsAny(numStr, "+-. ") {
		return Expiry{}, fmt.Errorf("%w: %q", ErrInvalidToken, token)
	}

	n, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil || n <= 0 {
		return Expiry{}, fmt.Errorf("%w: %q", ErrInvalidToken, token)
	}

	var d time.Duration
	switch unit {
	case 'H':
		d = time.Duration(n) * time.Hour
	case 'D':
		d = time.Duration(n) * 24 * time.Hour
	default:
		return Expiry{}, fmt.Errorf("%w: unknown unit in %q", ErrInvalidToken, token)
	}

	deadline := now.Add(d)
	return Expiry{Deadline: &deadline}, nil
}
