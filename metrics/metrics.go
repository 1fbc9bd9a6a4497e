package metrics

import (
	"context"
	"time"
)

// Metrics represents the current state of the connector.
type Metrics struct {
	// RequestCounts maps request status to the number of live records in that status
	RequestCounts map[string]int64 `json:"request_counts"`

	// Callbacks summarizes callback delivery since start-up
	Callbacks CallbackMetrics `json:"callbacks"`

	// Timestamp when metrics were collected
	Timestamp time.Time `json:"timestamp"`
}

// CallbackMetrics counts callback deliveries by outcome.
type CallbackMetrics struct {
	Delivered int64 `json:"delivered"`
	Failed    int64 `json:"failed"`
	Skipped   int64 `json:"skipped"`
	Rejected  int64 `json:"rejected"`
}

// ByOutcome returns the counters keyed by outcome name
func (c CallbackMetrics) ByOutcome() map[string]int64 {
	return map[string]int64{
		"delivered": c.Delivered,
		"failed":    c.Failed,
		"skipped":   c.Skipped,
		"rejected":  c.Rejected,
	}
}

// Collector defines the interface for collecting metrics from the connector.
type Collector interface {
	// Collect gathers current metrics from the system
	Collect(ctx context.Context) (Metrics, error)

	// GetRequestCounts returns the count of live requests by status
	GetRequestCounts(ctx context.Context) (map[string]int64, error)

	// GetCallbackCounts returns callback delivery counters
	GetCallbackCounts(ctx context.Context) (CallbackMetrics, error)
}
