package chi

import (
	"net/http"

	"github.com/go-chi/httplog"
	"github.com/marcelsud/wallet-connector/auth"
	"github.com/marcelsud/wallet-connector/failure"
)

// requireAuth rejects requests whose bearer token the authenticator does not accept
func requireAuth(authn auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authn == nil {
				writeError(w, r, failure.New(failure.Authentication, "authentication is not configured"))
				return
			}
			principal, err := authn.Authenticate(r.Context(), auth.BearerToken(r.Header.Get("Authorization")))
			if err != nil {
				writeError(w, r, err)
				return
			}
			httplog.LogEntrySetField(r.Context(), "principal", principal.Subject)
			next.ServeHTTP(w, r)
		})
	}
}
