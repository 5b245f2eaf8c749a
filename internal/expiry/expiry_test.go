package expiry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func TestParse_LifetimeAliases(t *testing.T) {
	for _, token := range []string{"LT", "lt", "L", "LIFETIME", "lifetime", "  lt  "} {
		exp, err := Parse(token, testNow)
		require.NoError(t, err, "token %q", token)
		assert.True(t, exp.Lifetime, "token %q", token)
		assert.Nil(t, exp.Deadline, "token %q", token)
	}
}

func TestParse_Durations(t *testing.T) {
	tests := []struct {
		token string
		want  time.Duration
	}{
		{"1H", time.Hour},
		{"2h", 2 * time.Hour},
		{"12H", 12 * time.Hour},
		{"1D", 24 * time.Hour},
		{"30d", 30 * 24 * time.Hour},
		{" 2H ", 2 * time.Hour},
	}

	for _, tt := range tests {
		exp, err := Parse(tt.token, testNow)
		require.NoError(t, err, "token %q", tt.token)
		assert.False(t, exp.Lifetime, "token %q", tt.token)
		require.NotNil(t, exp.Deadline, "token %q", tt.token)
		assert.Equal(t, testNow.Add(tt.want), *exp.Deadline, "token %q", tt.token)
	}
}

func TestParse_Invalid(t *testing.T) {
	tokens := []string{
		"", "   ", "H", "D", "0H", "-1H", "+2H", "1.5D", "2W", "2M",
		"abc", "H2", "2", "2 H", "99999999999999999999H",
	}

	for _, token := range tokens {
		_, err := Parse(token, testNow)
		assert.True(t, errors.Is(err, ErrInvalidToken), "token %q: got %v", token, err)
	}
}

func TestParse_SingleNowCapture(t *testing.T) {
	// Two parses with the same reference instant resolve identically, so a
	// batch sharing one now() cannot skew.
	a, err := Parse("2H", testNow)
	require.NoError(t, err)
	b, err := Parse("2H", testNow)
	require.NoError(t, err)
	assert.Equal(t, *a.Deadline, *b.Deadline)
}
