// Package claimlink encodes disposable private keys into shareable URL
// fragments and back. A fragment is the base58 form of the 64-byte key,
// optionally followed by "_<epoch-seconds>" when the link expires.
package claimlink

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// Keys shorter than this cannot be claim fragments; used to tell a claim link
// apart from a bare visit.
const minFragmentLen = 41

// ErrMalformedFragment is returned when a fragment does not decode to exactly
// 64 bytes of private key material.
var ErrMalformedFragment = errors.New("malformed claim fragment")

// Fragment is the decoded form of a claim link fragment.
type Fragment struct {
	Key       solana.PrivateKey
	ExpiresAt int64 // seconds since epoch, 0 = never
}

// Generate creates a new disposable keypair.
func Generate() solana.PrivateKey {
	return solana.NewWallet().PrivateKey
}

// Encode serializes the private key, appending the expiration when non-zero.
func Encode(key solana.PrivateKey, expiresAt int64) string {
	fragment := base58.Encode(key)
	if expiresAt != 0 {
		fragment += "_" + strconv.FormatInt(expiresAt, 10)
	}
	return fragment
}

// Decode parses a claim fragment. The segment before the last '_' must decode
// to exactly 64 bytes; a parseable integer after it becomes the expiration.
// Fragments without a separator have no expiration. Returns
// ErrMalformedFragment for anything else - never panics.
func Decode(fragment string) (*Fragment, error) {
	keyPart := fragment
	var expiresAt int64

	if i := strings.LastIndex(fragment, "_"); i >= 0 {
		ts, err := strconv.ParseInt(fragment[i+1:], 10, 64)
		if err == nil {
			keyPart = fragment[:i]
			expiresAt = ts
		}
	}

	raw, err := base58.Decode(keyPart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFragment, err)
	}
	if len(raw) != 64 {
		return nil, fmt.Errorf("%w: key material is %d bytes, want 64", ErrMalformedFragment, len(raw))
	}

	return &Fragment{
		Key:       solana.PrivateKey(raw),
		ExpiresAt: expiresAt,
	}, nil
}

// IsClaimFragment reports whether a URL fragment looks like a claim link
// rather than a bare visit.
func IsClaimFragment(fragment string) bool {
	return len(fragment) >= minFragmentLen
}

// ClaimURL builds the full shareable link.
func ClaimURL(baseURL string, key solana.PrivateKey, expiresAt int64) string {
	return strings.TrimSuffix(baseURL, "#") + "#" + Encode(key, expiresAt)
}

// IsExpired reports whether the expiration has passed. Zero never expires.
func IsExpired(expiresAt int64) bool {
	if expiresAt == 0 {
		return false
	}
	return time.Now().Unix() > expiresAt
}

// Remaining is the display form of time left on a claim link.
type Remaining struct {
	Expired bool
	Text    string
}

// TimeRemaining produces a coarse human duration for display. It is not a
// correctness gate; IsExpired is.
func TimeRemaining(expiresAt int64) Remaining {
	if expiresAt == 0 {
		return Remaining{Text: "Never expires"}
	}

	left := expiresAt - time.Now().Unix()
	if left <= 0 {
		return Remaining{Expired: true, Text: "Expired"}
	}

	const (
		minute = 60
		hour   = 60 * minute
		day    = 24 * hour
	)

	switch {
	case left >= day:
		return Remaining{Text: fmt.Sprintf("%dd %dh", left/day, (left%day)/hour)}
	case left >= hour:
		return Remaining{Text: fmt.Sprintf("%dh %dm", left/hour, (left%hour)/minute)}
	case left >= minute:
		return Remaining{Text: fmt.Sprintf("%dm %ds", left/minute, left%minute)}
	default:
		return Remaining{Text: fmt.Sprintf("%ds", left)}
	}
}
