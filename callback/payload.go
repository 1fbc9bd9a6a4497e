package callback

import "time"

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Payload is the JSON notification posted to a caller's callback URL
type Payload struct {
	RequestID string    `json:"requestId"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Connector string    `json:"connector"`
	Version   string    `json:"version"`
}

// Result reports the outcome of one callback delivery
type Result struct {
	CallbackID string        `json:"callbackId,omitempty"`
	Success    bool          `json:"success"`
	Skipped    bool          `json:"skipped,omitempty"`
	Attempts   int           `json:"attempts"`
	Duration   time.Duration `json:"duration"`
	StatusCode int           `json:"statusCode,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// Stats counts delivery outcomes since the client was created
type Stats struct {
	Delivered int64 `json:"delivered"`
	Failed    int64 `json:"failed"`
	Skipped   int64 `json:"skipped"`
	Rejected  int64 `json:"rejected"`
}
