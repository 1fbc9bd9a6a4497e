package failure

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

/* Kind classifies a failure for retry and transport decisions
 * Each kind carries a default retry behavior which an Error may override
 */
type Kind int

const (
	Internal Kind = iota + 1
	Validation
	Authentication
	RateLimit
	UpstreamUnavailable
	Upstream
	Storage
	CallbackDelivery
	NotFound
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case Internal:
		return "INTERNAL"
	case Validation:
		return "VALIDATION_ERROR"
	case Authentication:
		return "AUTHENTICATION_ERROR"
	case RateLimit:
		return "RATE_LIMIT_ERROR"
	case UpstreamUnavailable:
		return "UPSTREAM_UNAVAILABLE"
	case Upstream:
		return "UPSTREAM_ERROR"
	case Storage:
		return "STORAGE_ERROR"
	case CallbackDelivery:
		return "CALLBACK_DELIVERY_ERROR"
	case NotFound:
		return "NOT_FOUND"
	default:
		return "UNKNOWN"
	}
}

// Retryable reports the default retry classification of the kind
func (k Kind) Retryable() bool {
	switch k {
	case RateLimit, UpstreamUnavailable:
		return true
	default:
		return false
	}
}

// retryableStatus is the fixed set of HTTP status codes treated as transient
var retryableStatus = map[int]bool{
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// RetryableStatus reports whether an HTTP status code is transient
func RetryableStatus(code int) bool {
	return retryableStatus[code]
}

/* Error is the tagged failure carried through the connector
 * Retryable, when set, wins over any classification derived from Kind or StatusCode
 */
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Retryable  *bool
	RetryAfter time.Duration
	Err        error
}

// Error implements the error interface
func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// WithRetryable returns a copy of the error with an explicit retry flag
func (e *Error) WithRetryable(retryable bool) *Error {
	c := *e
	c.Retryable = &retryable
	return &c
}

// New creates a failure of the given kind
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a failure of the given kind around an existing error
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validationf creates a validation failure
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: Validation, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf creates a not-found failure
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf(format, args...)}
}

// RateLimited creates a rate-limit failure honoring an explicit retry-after
func RateLimited(message string, retryAfter time.Duration) *Error {
	return &Error{Kind: RateLimit, Message: message, StatusCode: 429, RetryAfter: retryAfter}
}

// FromStatus builds a failure from an HTTP response status code
func FromStatus(code int, message string) *Error {
	var kind Kind
	switch {
	case code == 429:
		kind = RateLimit
	case code == 401 || code == 403:
		kind = Authentication
	case code == 404:
		kind = NotFound
	case code >= 500:
		kind = UpstreamUnavailable
	case code >= 400:
		kind = Upstream
	default:
		kind = Internal
	}
	return &Error{Kind: kind, Message: message, StatusCode: code}
}

// As extracts the tagged failure from an error chain
func As(err error) (*Error, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// KindOf returns the kind of a failure, Internal for untagged errors
func KindOf(err error) Kind {
	if fe, ok := As(err); ok {
		return fe.Kind
	}
	return Internal
}

// Is reports whether err carries a failure of the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

/* IsRetryable classifies an error for the retry engine
 * Order: explicit flag, status code in the transient set, kind default
 */
func IsRetryable(err error) bool {
	fe, ok := As(err)
	if !ok {
		return false
	}
	if fe.Retryable != nil {
		return *fe.Retryable
	}
	if fe.StatusCode != 0 {
		return RetryableStatus(fe.StatusCode)
	}
	return fe.Kind.Retryable()
}

// RetryAfterOf returns the explicit retry-after duration carried by the error, if any
func RetryAfterOf(err error) (time.Duration, bool) {
	fe, ok := As(err)
	if !ok || fe.RetryAfter <= 0 {
		return 0, false
	}
	return fe.RetryAfter, true
}

// StatusCodeOf returns the HTTP status carried by the error, 0 when absent
func StatusCodeOf(err error) int {
	if fe, ok := As(err); ok {
		return fe.StatusCode
	}
	return 0
}

// ParseRetryAfter reads an HTTP Retry-After value given in seconds or as an HTTP date
func ParseRetryAfter(value string, now time.Time) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
