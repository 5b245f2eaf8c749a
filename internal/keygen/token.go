// Package keygen produces candidate license key tokens and resolves
// collisions against the key store with a bounded retry budget per key.
package keygen

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// DefaultPrefix is the fixed tag prepended to every generated token.
	DefaultPrefix = "KA-"

	// DefaultSuffixLength is the number of random characters after the prefix.
	DefaultSuffixLength = 5

	// DefaultAlphabet is the unambiguous uppercase alphanumeric alphabet for
	// token suffixes. I, O, 0, and 1 are excluded because keys are read back
	// over chat and voice by end users.
	DefaultAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// TokenFormat describes how candidate tokens are constructed.
type TokenFormat struct {
	Prefix       string
	SuffixLength int
	Alphabet     string
}

// DefaultTokenFormat returns the production token format (KA- + 5 chars).
func DefaultTokenFormat() TokenFormat {
	return TokenFormat{
		Prefix:       DefaultPrefix,
		SuffixLength: DefaultSuffixLength,
		Alphabet:     DefaultAlphabet,
	}
}

// NewToken draws one candidate token using crypto/rand.
func (f TokenFormat) NewToken() (string, error) {
	suffix := make([]byte, f.SuffixLength)
	max := big.NewInt(int64(len(f.Alphabet)))
	for i := range suffix {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("draw token character: %w", err)
		}
		suffix[i] = f.Alphabet[idx.Int64()]
	}
	return f.Prefix + string(suffix), nil
}
