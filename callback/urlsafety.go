package callback

import (
	"net/netip"
	"net/url"
	"strings"

	"github.com/marcelsud/wallet-connector/failure"
)

/* ValidateURL rejects callback targets that could reach internal services
 * Only http and https are accepted; loopback, private (RFC1918 / ULA),
 * link-local and unspecified hosts are refused without any network call
 */
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return failure.Validationf("invalid callback URL: %s", SanitizeURL(raw))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return failure.Validationf("callback URL scheme must be http or https (got %q)", u.Scheme)
	}
	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	if host == "" {
		return failure.Validationf("callback URL must include a host")
	}
	if isLocalHost(host) {
		return failure.Validationf("callback URL host %s is not allowed", host)
	}
	return nil
}

// ValidateSyntax only checks that raw is an absolute http(s) URL
func ValidateSyntax(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return failure.Validationf("callback_url must be a valid http(s) URL")
	}
	return nil
}

func isLocalHost(host string) bool {
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	return addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsUnspecified()
}
