package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/marcelsud/wallet-connector/callback"
	"github.com/marcelsud/wallet-connector/request"
)

// RequestCounter reports live request records per status
type RequestCounter interface {
	Counts(ctx context.Context) map[request.Status]int
}

// CallbackStats reports callback delivery counters
type CallbackStats interface {
	Stats() callback.Stats
}

// ConnectorCollector implements Collector over the in-process request manager and callback client
type ConnectorCollector struct {
	requests  RequestCounter
	callbacks CallbackStats
}

// NewConnectorCollector creates a new collector; either source may be nil
func NewConnectorCollector(requests RequestCounter, callbacks CallbackStats) *ConnectorCollector {
	return &ConnectorCollector{
		requests:  requests,
		callbacks: callbacks,
	}
}

// Collect gathers all metrics
func (c *ConnectorCollector) Collect(ctx context.Context) (Metrics, error) {
	counts, err := c.GetRequestCounts(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting request counts: %w", err)
	}

	callbacks, err := c.GetCallbackCounts(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting callback counts: %w", err)
	}

	return Metrics{
		RequestCounts: counts,
		Callbacks:     callbacks,
		Timestamp:     time.Now(),
	}, nil
}

// GetRequestCounts returns every status, including those with no records
func (c *ConnectorCollector) GetRequestCounts(ctx context.Context) (map[string]int64, error) {
	counts := map[string]int64{
		request.Pending.String():    0,
		request.Processing.String(): 0,
		request.Completed.String():  0,
		request.Failed.String():     0,
	}
	if c.requests == nil {
		return counts, nil
	}
	for status, n := range c.requests.Counts(ctx) {
		counts[status.String()] = int64(n)
	}
	return counts, nil
}

// GetCallbackCounts returns callback delivery counters
func (c *ConnectorCollector) GetCallbackCounts(ctx context.Context) (CallbackMetrics, error) {
	if c.callbacks == nil {
		return CallbackMetrics{}, nil
	}
	s := c.callbacks.Stats()
	return CallbackMetrics{
		Delivered: s.Delivered,
		Failed:    s.Failed,
		Skipped:   s.Skipped,
		Rejected:  s.Rejected,
	}, nil
}
