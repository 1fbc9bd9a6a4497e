package chi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/marcelsud/wallet-connector/auth"
	"github.com/marcelsud/wallet-connector/request"
	"github.com/rs/zerolog"
)

// Dependencies wires the routing layer to the core
type Dependencies struct {
	Requests request.UseCase
	Auth     auth.Authenticator
	Metrics  http.Handler
	Logger   *zerolog.Logger
	Timeout  time.Duration
}

// Handlers sets up the connector API routes
func Handlers(ctx context.Context, deps Dependencies) *chi.Mux {
	logger := httplog.NewLogger("wallet-connector", httplog.Options{
		JSON: true,
	})
	if deps.Logger != nil {
		logger = *deps.Logger
	}
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(requireAuth(deps.Auth))

		r.Method(http.MethodPost, "/webhook", postWebhook(deps.Requests))
		r.Method(http.MethodGet, "/requests/{request_id}", getRequestStatus(deps.Requests))
	})

	return r
}
