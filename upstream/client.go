// Package upstream fetches account data from the banking API.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/marcelsud/wallet-connector/failure"
	"github.com/rs/zerolog"
)

const defaultTimeout = 30 * time.Second

// maxErrorBody bounds how much of an error response is kept in the failure message
const maxErrorBody = 512

type Options struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

/* Client is the HTTP extraction operation
 * Every response is classified into a failure.Kind so retry can decide
 */
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  zerolog.Logger
	now     func() time.Time
}

// NewClient creates an upstream client
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid upstream base URL %q", opts.BaseURL)
	}

	c := &Client{
		baseURL: base,
		token:   opts.Token,
		http:    opts.HTTPClient,
		logger:  zerolog.Nop(),
		now:     time.Now,
	}
	if c.http == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if opts.Logger != nil {
		c.logger = opts.Logger.With().Str("component", "upstream").Logger()
	}
	return c, nil
}

// Extract returns the accounts document for userID
func (c *Client) Extract(ctx context.Context, userID string) (map[string]any, error) {
	endpoint := fmt.Sprintf("%s/users/%s/accounts", c.baseURL, url.PathEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, failure.Wrap(failure.Internal, "building upstream request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Msg("upstream request failed")
		return nil, failure.Wrap(failure.UpstreamUnavailable, "calling upstream", err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Int("status", resp.StatusCode).
		Dur("elapsed", c.now().Sub(start)).
		Msg("upstream responded")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var data map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
			return nil, failure.Wrap(failure.Upstream, "decoding upstream response", err)
		}
		return data, nil
	}

	return nil, c.classify(resp)
}

func (c *Client) classify(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := fmt.Sprintf("upstream returned HTTP %d", resp.StatusCode)
	if detail := strings.TrimSpace(string(body)); detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, detail)
	}

	var kind failure.Kind
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		kind = failure.RateLimit
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		kind = failure.Authentication
	case resp.StatusCode >= 500:
		kind = failure.UpstreamUnavailable
	default:
		kind = failure.Upstream
	}

	return &failure.Error{
		Kind:       kind,
		Message:    msg,
		StatusCode: resp.StatusCode,
		RetryAfter: failure.ParseRetryAfter(resp.Header.Get("Retry-After"), c.now()),
	}
}
