package request

import (
	"time"
)

// Input is a validated webhook call as handed over by the transport layer
type Input struct {
	UserID      string
	CallbackURL string
	Async       bool
}

// WalletSummary reports what happened to the extracted data at the destination
type WalletSummary struct {
	Stored    bool   `json:"stored"`
	Duplicate bool   `json:"duplicate,omitempty"`
	RecordID  string `json:"recordId,omitempty"`
	Namespace string `json:"namespace,omitempty"`
	Checksum  string `json:"checksum,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Result is the outcome of a successful extraction
type Result struct {
	Data   map[string]any `json:"data"`
	Wallet WalletSummary  `json:"wallet"`
}

/* Record is the in-memory lifecycle state of one asynchronous request
 * CompletedAt and Result/Error are only set once the status is final
 */
type Record struct {
	ID          string
	UserID      string
	Status      Status
	CallbackURL string
	CreatedAt   time.Time
	CompletedAt *time.Time
	Result      *Result
	Error       string
}

// Acceptance is returned by Accept: a resolved result for sync calls, an acknowledgment otherwise
type Acceptance struct {
	RequestID   string
	Async       bool
	Status      Status
	CallbackURL string
	Result      *Result
}

// View is the read-only projection served by status queries
type View struct {
	RequestID   string     `json:"requestId"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Duration    int64      `json:"duration"`
	HasCallback bool       `json:"hasCallback"`
	Result      *Result    `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// View projects the record; duration runs until now while the request is in flight
func (r Record) View(now time.Time) View {
	end := now
	if r.CompletedAt != nil {
		end = *r.CompletedAt
	}
	return View{
		RequestID:   r.ID,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
		CompletedAt: r.CompletedAt,
		Duration:    end.Sub(r.CreatedAt).Milliseconds(),
		HasCallback: r.CallbackURL != "",
		Result:      r.Result,
		Error:       r.Error,
	}
}

// clone returns a copy that shares no pointers with r
func (r Record) clone() Record {
	c := r
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		c.CompletedAt = &t
	}
	if r.Result != nil {
		res := *r.Result
		c.Result = &res
	}
	return c
}
