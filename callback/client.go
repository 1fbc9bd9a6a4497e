// Package callback delivers best-effort status notifications to caller-supplied URLs.
package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/marcelsud/wallet-connector/failure"
	"github.com/marcelsud/wallet-connector/internal/ids"
	"github.com/marcelsud/wallet-connector/retry"
	"github.com/rs/zerolog"
)

const (
	DefaultConnectorID = "bank-connector"
	DefaultVersion     = "1.0.0"
	defaultTimeout     = 10 * time.Second
)

/* Options configures a Client; zero values fall back to defaults
 * Validator replaces ValidateURL, mainly to reach httptest servers
 */
type Options struct {
	HTTPClient  *http.Client
	Policy      *retry.Policy
	Logger      *zerolog.Logger
	ConnectorID string
	Version     string
	Validator   func(string) error
	RetryOpts   []retry.Option
	// Secret signs every delivery with Standard Webhooks headers when set
	Secret Secret
}

/* Client posts JSON notifications with retry
 * Uses pointer semantics as it's an API holding counters, not data
 */
type Client struct {
	http        *http.Client
	policy      retry.Policy
	logger      zerolog.Logger
	connectorID string
	version     string
	validate    func(string) error
	retryOpts   []retry.Option
	secret      Secret

	delivered atomic.Int64
	failed    atomic.Int64
	skipped   atomic.Int64
	rejected  atomic.Int64
}

// NewClient creates a callback client
func NewClient(opts Options) *Client {
	c := &Client{
		http:        opts.HTTPClient,
		policy:      retry.CallbackPolicy(),
		logger:      zerolog.Nop(),
		connectorID: opts.ConnectorID,
		version:     opts.Version,
		validate:    opts.Validator,
		retryOpts:   opts.RetryOpts,
		secret:      opts.Secret,
	}
	if c.http == nil {
		c.http = NewHTTPClient(defaultTimeout)
	}
	if opts.Policy != nil {
		c.policy = *opts.Policy
	}
	if opts.Logger != nil {
		c.logger = opts.Logger.With().Str("component", "callback").Logger()
	}
	if c.connectorID == "" {
		c.connectorID = DefaultConnectorID
	}
	if c.version == "" {
		c.version = DefaultVersion
	}
	if c.validate == nil {
		c.validate = ValidateURL
	}
	return c
}

// NewHTTPClient returns a client that re-validates every redirect target
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("stopped after %d redirects", len(via))
			}
			return ValidateURL(req.URL.String())
		},
	}
}

/* Send delivers payload to url
 * An empty url is skipped, not failed; callbacks are optional
 * Failures never escape as errors, they are reflected in the Result
 */
func (c *Client) Send(ctx context.Context, url string, payload Payload) Result {
	if url == "" {
		c.skipped.Add(1)
		return Result{Success: true, Skipped: true}
	}

	callbackID := ids.New("cb")
	safeURL := SanitizeURL(url)
	log := c.logger.With().
		Str("callback_id", callbackID).
		Str("request_id", payload.RequestID).
		Str("url", safeURL).
		Str("status", payload.Status).
		Logger()

	if err := c.validate(url); err != nil {
		c.rejected.Add(1)
		log.Warn().Err(err).Msg("callback URL rejected")
		return Result{CallbackID: callbackID, Success: false, Error: err.Error()}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		c.failed.Add(1)
		log.Error().Err(err).Msg("marshaling callback payload")
		return Result{CallbackID: callbackID, Success: false, Error: fmt.Sprintf("marshaling payload: %v", err)}
	}

	start := time.Now()
	attempts := 0
	var lastStatus int
	opts := append([]retry.Option{
		retry.WithNotify(func(a retry.Attempt) {
			log.Warn().Err(a.Err).Int("attempt", a.Number).Dur("delay", a.Delay).Msg("callback attempt failed, retrying")
		}),
	}, c.retryOpts...)

	err = retry.Do(ctx, c.policy, func(ctx context.Context) error {
		attempts++
		status, err := c.post(ctx, url, callbackID, payload.RequestID, body)
		lastStatus = status
		return err
	}, opts...)

	result := Result{
		CallbackID: callbackID,
		Attempts:   attempts,
		Duration:   time.Since(start),
		StatusCode: lastStatus,
	}
	if err != nil {
		c.failed.Add(1)
		result.Error = err.Error()
		log.Error().Err(err).Int("attempts", attempts).Dur("duration", result.Duration).Msg("callback delivery failed")
		return result
	}

	c.delivered.Add(1)
	result.Success = true
	log.Info().Int("attempts", attempts).Dur("duration", result.Duration).Msg("callback delivered")
	return result
}

func (c *Client) post(ctx context.Context, url, callbackID, requestID string, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, failure.Wrap(failure.CallbackDelivery, "building callback request", err).WithRetryable(false)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.connectorID+"/"+c.version)
	req.Header.Set("X-Callback-ID", callbackID)
	req.Header.Set("X-Request-ID", requestID)
	if !c.secret.IsZero() {
		now := time.Now()
		sig, err := c.secret.Sign(callbackID, now, body)
		if err != nil {
			return 0, failure.Wrap(failure.CallbackDelivery, "signing callback", err).WithRetryable(false)
		}
		req.Header.Set(HeaderID, callbackID)
		req.Header.Set(HeaderTimestamp, strconv.FormatInt(now.Unix(), 10))
		req.Header.Set(HeaderSignature, sig)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, failure.Wrap(failure.CallbackDelivery, "posting callback", redactURLError(err)).WithRetryable(true)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.StatusCode, nil
	}

	// 4xx is the receiver refusing the payload; only 429 is worth another attempt
	retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
	fe := &failure.Error{
		Kind:       failure.CallbackDelivery,
		Message:    fmt.Sprintf("callback endpoint returned HTTP %d", resp.StatusCode),
		StatusCode: resp.StatusCode,
		RetryAfter: failure.ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
	}
	return resp.StatusCode, fe.WithRetryable(retryable)
}

// NotifyProcessing sends the processing-state notification
func (c *Client) NotifyProcessing(ctx context.Context, url, requestID string) Result {
	return c.Send(ctx, url, c.stamp(Payload{
		RequestID: requestID,
		Status:    StatusProcessing,
		Message:   "Data extraction in progress",
	}))
}

// NotifyCompleted sends the success notification carrying the result summary
func (c *Client) NotifyCompleted(ctx context.Context, url, requestID string, data any) Result {
	return c.Send(ctx, url, c.stamp(Payload{
		RequestID: requestID,
		Status:    StatusCompleted,
		Message:   "Data extraction completed successfully",
		Data:      data,
	}))
}

// NotifyFailed sends the failure notification carrying an error message
func (c *Client) NotifyFailed(ctx context.Context, url, requestID, errMsg string) Result {
	return c.Send(ctx, url, c.stamp(Payload{
		RequestID: requestID,
		Status:    StatusFailed,
		Message:   "Data extraction failed",
		Error:     errMsg,
	}))
}

func (c *Client) stamp(p Payload) Payload {
	p.Timestamp = time.Now().UTC()
	p.Connector = c.connectorID
	p.Version = c.version
	return p
}

// Stats returns delivery counters
func (c *Client) Stats() Stats {
	return Stats{
		Delivered: c.delivered.Load(),
		Failed:    c.failed.Load(),
		Skipped:   c.skipped.Load(),
		Rejected:  c.rejected.Load(),
	}
}
