package wallet

import (
	"fmt"
	"time"

	"github.com/marcelsud/wallet-connector/checksum"
)

/* Outcome represents the result of a storage write
 * Duplicate is an idempotent success, distinct from both Stored and Failed
 */
type Outcome int

const (
	Stored Outcome = iota + 1
	Duplicate
	Failed
)

// String returns the string representation of the outcome
func (o Outcome) String() string {
	switch o {
	case Stored:
		return "stored"
	case Duplicate:
		return "duplicate"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// NewOutcome creates an Outcome from a string
func NewOutcome(s string) Outcome {
	switch s {
	case "stored":
		return Stored
	case "duplicate":
		return Duplicate
	default:
		return Failed
	}
}

// MarshalText encodes the outcome by name
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Validate checks if the outcome is valid
func (o Outcome) Validate() error {
	if o < Stored || o > Failed {
		return fmt.Errorf("invalid outcome: %d", o)
	}
	return nil
}

/* Record is one envelope persisted in the destination wallet
 * Uses value semantics as it represents data, not behavior
 */
type Record struct {
	ID        string
	Namespace string
	UserID    string
	Envelope  checksum.Envelope
	CreatedAt time.Time
}

// Checksum returns the fingerprint stamped on the record's envelope
func (r Record) Checksum() string {
	return r.Envelope.Metadata.Checksum
}

// SaveResult is what a repository reports for one write
type SaveResult struct {
	RecordID  string
	Duplicate bool
}

// Result summarizes a storage operation for the request lifecycle
type Result struct {
	Outcome   Outcome `json:"outcome"`
	RecordID  string  `json:"recordId,omitempty"`
	Namespace string  `json:"namespace,omitempty"`
	Checksum  string  `json:"checksum,omitempty"`
}

// Stored reports whether the data is present in the wallet after the write
func (r Result) Stored() bool {
	return r.Outcome == Stored || r.Outcome == Duplicate
}
