package civicpulse

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
)

// Signals are the request-derived inputs to voter fingerprinting.
// Any subset may be empty: browser-side callers have no network origin,
// server-side callers may have nothing but one.
type Signals struct {
	RemoteAddr     string `json:"remoteAddr,omitempty"`
	UserAgent      string `json:"userAgent,omitempty"`
	Locale         string `json:"locale,omitempty"`
	Screen         string `json:"screen,omitempty"`
	TimezoneOffset string `json:"timezoneOffset,omitempty"`
	SessionToken   string `json:"sessionToken,omitempty"`
}

// ordered returns the available signals in a fixed field order.
func (s Signals) ordered() []string {
	return []string{
		s.RemoteAddr,
		s.UserAgent,
		s.Locale,
		s.Screen,
		s.TimezoneOffset,
		s.SessionToken,
	}
}

// GenerateFingerprint derives the pseudonymous voter identity used for
// vote deduplication. Each present signal is hashed individually before
// the combined digest is taken, so raw values are never persisted and
// cannot be recovered from the result. The same signal set always yields
// the same fingerprint across sessions.
//
// With zero signals available a random identifier is hashed instead,
// which yields an effectively one-time fingerprint. Known limitation:
// such a voter is never recognized as returning, but can also never
// collide with one.
func GenerateFingerprint(s Signals) string {
	var parts []string
	for _, signal := range s.ordered() {
		if signal == "" {
			continue
		}
		parts = append(parts, HashValue(signal))
	}

	if len(parts) == 0 {
		parts = append(parts, uuid.NewString())
	}

	// "|" cannot appear in a hex digest, so field boundaries are
	// unambiguous.
	return HashValue(strings.Join(parts, "|"))
}

// ClientFingerprint is the fast, non-cryptographic digest browser-side
// callers compute locally. It is a usability hint only: the server
// rehashes the underlying signals with GenerateFingerprint before any
// trust decision, so forging this value buys nothing.
func ClientFingerprint(s Signals) string {
	joined := strings.Join(s.ordered(), "|")
	return strconv.FormatUint(xxh3.HashString(joined), 36)
}

// HashValue returns the hex SHA-256 digest of a single value.
func HashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
