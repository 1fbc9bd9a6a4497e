package chi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/httplog"
	"github.com/marcelsud/wallet-connector/failure"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// statusFor maps a failure kind to the HTTP status returned to the caller
func statusFor(kind failure.Kind) int {
	switch kind {
	case failure.Validation:
		return http.StatusBadRequest
	case failure.Authentication:
		return http.StatusUnauthorized
	case failure.NotFound:
		return http.StatusNotFound
	case failure.RateLimit:
		return http.StatusTooManyRequests
	case failure.UpstreamUnavailable, failure.Upstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := failure.KindOf(err)
	status := statusFor(kind)

	msg := err.Error()
	if kind == failure.Internal {
		msg = "internal error"
	}
	if status >= http.StatusInternalServerError {
		log := httplog.LogEntry(r.Context())
		log.Error().Err(err).Str("kind", kind.String()).Msg("request failed")
	}

	if d, ok := failure.RetryAfterOf(err); ok && status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", retryAfterSeconds(d))
	}
	writeJSON(w, status, errorResponse{Error: errorBody{Code: kind.String(), Message: msg}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
