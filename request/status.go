package request

import "fmt"

/* Status represents the lifecycle state of an accepted request
 * Follows the lifecycle: Pending -> Processing -> Completed/Failed
 */
type Status int

const (
	Pending Status = iota + 1
	Processing
	Completed
	Failed
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Processing:
		return "processing"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// NewStatus creates a Status from a string
func NewStatus(str string) Status {
	switch str {
	case "pending":
		return Pending
	case "processing":
		return Processing
	case "completed":
		return Completed
	case "failed":
		return Failed
	default:
		return Pending
	}
}

// MarshalText encodes the status by name
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Validate checks if the status is valid
func (s Status) Validate() error {
	if s < Pending || s > Failed {
		return fmt.Errorf("invalid status: %d", s)
	}
	return nil
}

// IsFinal returns true if the status is a terminal state
func (s Status) IsFinal() bool {
	return s == Completed || s == Failed
}

// CanTransition reports whether next is a legal forward step from s
func (s Status) CanTransition(next Status) bool {
	switch s {
	case Pending:
		return next == Processing
	case Processing:
		return next == Completed || next == Failed
	default:
		return false
	}
}
