package callback

import (
	"errors"
	"net/url"
	"strings"
)

const redacted = "[REDACTED]"

// sensitiveParams are matched as substrings of lowercased query keys
var sensitiveParams = []string{
	"token",
	"key",
	"secret",
	"password",
	"passwd",
	"auth",
	"signature",
	"credential",
}

// SanitizeURL returns raw with credentials and sensitive query values redacted
func SanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "[invalid-url]"
	}
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), redacted)
		}
	}
	if u.RawQuery == "" {
		return u.String()
	}

	query := u.Query()
	for param, values := range query {
		if !isSensitive(param) {
			continue
		}
		for i := range values {
			values[i] = redacted
		}
	}
	u.RawQuery = query.Encode()
	return u.String()
}

func isSensitive(param string) bool {
	p := strings.ToLower(param)
	for _, s := range sensitiveParams {
		if strings.Contains(p, s) {
			return true
		}
	}
	return false
}

// redactURLError rebuilds a *url.Error so its URL goes through SanitizeURL
func redactURLError(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	return &url.Error{Op: ue.Op, URL: SanitizeURL(ue.URL), Err: ue.Err}
}
