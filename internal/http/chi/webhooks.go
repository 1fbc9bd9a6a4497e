package chi

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/marcelsud/wallet-connector/failure"
	"github.com/marcelsud/wallet-connector/request"
)

/* HTTP layer DTOs for the connector API
 * Separate from domain entities to avoid leaking internal structure
 */

const maxBodyBytes = 1 << 20

// webhookRequest is the inbound trigger; data carries the user identifier
type webhookRequest struct {
	Data        string `json:"data"`
	Async       bool   `json:"async"`
	CallbackURL string `json:"callback_url"`
}

type syncResponse struct {
	Status    string                `json:"status"`
	RequestID string                `json:"requestId"`
	Data      map[string]any        `json:"data"`
	Wallet    request.WalletSummary `json:"wallet"`
}

type processingInfo struct {
	Status      string `json:"status"`
	CallbackURL string `json:"callbackUrl,omitempty"`
}

type acceptedResponse struct {
	Status     string         `json:"status"`
	RequestID  string         `json:"requestId"`
	Processing processingInfo `json:"processing"`
}

// postWebhook handles POST /v1/webhook
func postWebhook(requests request.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			writeError(w, r, failure.Validationf("failed to read request body"))
			return
		}

		var in webhookRequest
		if err := json.Unmarshal(body, &in); err != nil {
			writeError(w, r, failure.Validationf("invalid JSON body: %v", err))
			return
		}

		acc, err := requests.Accept(r.Context(), request.Input{
			UserID:      in.Data,
			CallbackURL: in.CallbackURL,
			Async:       in.Async,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		if acc.Async {
			writeJSON(w, http.StatusAccepted, acceptedResponse{
				Status:    "accepted",
				RequestID: acc.RequestID,
				Processing: processingInfo{
					Status:      acc.Status.String(),
					CallbackURL: acc.CallbackURL,
				},
			})
			return
		}

		resp := syncResponse{Status: "success", RequestID: acc.RequestID}
		if acc.Result != nil {
			resp.Data = acc.Result.Data
			resp.Wallet = acc.Result.Wallet
		}
		writeJSON(w, http.StatusOK, resp)
	})
}

// getRequestStatus handles GET /v1/requests/{request_id}
func getRequestStatus(requests request.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "request_id")
		if id == "" {
			writeError(w, r, failure.Validationf("request_id is required"))
			return
		}

		view, err := requests.GetStatus(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	})
}

func retryAfterSeconds(d time.Duration) string {
	return strconv.Itoa(int(math.Ceil(d.Seconds())))
}
