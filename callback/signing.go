package callback

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Standard Webhooks header names and secret format
const (
	HeaderID        = "webhook-id"
	HeaderTimestamp = "webhook-timestamp"
	HeaderSignature = "webhook-signature"

	SecretPrefix     = "whsec_"
	signatureVersion = "v1"
	minSecretBytes   = 24
	maxSecretBytes   = 64
)

// Secret is a symmetric key used to sign outgoing callbacks
type Secret struct {
	raw []byte
}

// GenerateSecret creates a random signing secret of size bytes
func GenerateSecret(size int) (Secret, error) {
	if size < minSecretBytes || size > maxSecretBytes {
		return Secret{}, fmt.Errorf("secret size must be between %d and %d bytes", minSecretBytes, maxSecretBytes)
	}
	raw := make([]byte, size)
	if _, err := rand.Read(raw); err != nil {
		return Secret{}, fmt.Errorf("generating random bytes: %w", err)
	}
	return Secret{raw: raw}, nil
}

// ParseSecret decodes a whsec_-prefixed base64 secret
func ParseSecret(encoded string) (Secret, error) {
	b64, ok := strings.CutPrefix(encoded, SecretPrefix)
	if !ok {
		return Secret{}, fmt.Errorf("secret must start with %s prefix", SecretPrefix)
	}
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return Secret{}, fmt.Errorf("decoding base64 secret: %w", err)
	}
	if len(raw) < minSecretBytes || len(raw) > maxSecretBytes {
		return Secret{}, fmt.Errorf("secret size must be between %d and %d bytes", minSecretBytes, maxSecretBytes)
	}
	return Secret{raw: raw}, nil
}

// String returns the encoded form accepted by ParseSecret
func (s Secret) String() string {
	return SecretPrefix + base64.StdEncoding.EncodeToString(s.raw)
}

// IsZero reports whether the secret is unset
func (s Secret) IsZero() bool {
	return len(s.raw) == 0
}

/* Sign returns the webhook-signature value for one delivery
 * The signed content is {callbackID}.{unix timestamp}.{body}
 */
func (s Secret) Sign(callbackID string, ts time.Time, body []byte) (string, error) {
	if strings.Contains(callbackID, ".") {
		return "", fmt.Errorf("callback ID must not contain '.'")
	}
	mac := hmac.New(sha256.New, s.raw)
	mac.Write([]byte(callbackID + "." + strconv.FormatInt(ts.Unix(), 10) + "."))
	mac.Write(body)
	return signatureVersion + "," + base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// Verify checks a space-delimited webhook-signature header against the body
func (s Secret) Verify(callbackID string, ts time.Time, body []byte, header string) bool {
	want, err := s.Sign(callbackID, ts, body)
	if err != nil {
		return false
	}
	for _, sig := range strings.Fields(header) {
		if subtle.ConstantTimeCompare([]byte(sig), []byte(want)) == 1 {
			return true
		}
	}
	return false
}
