// Package auth decides whether an inbound bearer credential is acceptable.
package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/marcelsud/wallet-connector/failure"
)

// Principal identifies an authenticated caller
type Principal struct {
	Subject string
}

// Authenticator validates a bearer token
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Principal, error)
}

/* StaticTokens accepts a fixed set of API tokens
 * Tokens are compared as digests in constant time
 */
type StaticTokens struct {
	digests [][sha256.Size]byte
}

// NewStaticTokens builds an authenticator from the configured tokens, ignoring blanks
func NewStaticTokens(tokens ...string) *StaticTokens {
	s := &StaticTokens{}
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		s.digests = append(s.digests, sha256.Sum256([]byte(tok)))
	}
	return s
}

// Len returns the number of configured tokens
func (s *StaticTokens) Len() int {
	return len(s.digests)
}

func (s *StaticTokens) Authenticate(ctx context.Context, token string) (Principal, error) {
	if token == "" {
		return Principal{}, failure.New(failure.Authentication, "missing bearer token")
	}
	sum := sha256.Sum256([]byte(token))

	match := 0
	for _, d := range s.digests {
		match |= subtle.ConstantTimeCompare(sum[:], d[:])
	}
	if match != 1 {
		return Principal{}, failure.New(failure.Authentication, "invalid bearer token")
	}
	return Principal{Subject: "token:" + hex.EncodeToString(sum[:4])}, nil
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
