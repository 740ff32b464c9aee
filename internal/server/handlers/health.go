package handlers

import (
	"errors"
	"net/http"

	"github.com/digital-business-cards/walletpass/internal/api"
	"github.com/digital-business-cards/walletpass/internal/pass"
)

// HandleHealth godoc
//
//	@Summary		Health (liveness) Check
//	@Description	Check if the HTTP service is alive and responding.
//	@Tags			Common
//	@Produce		plain
//
//	@Success		200	{string}	string	"OK"
//
//	@Router			/health [get]
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

type readinessResponse struct {
	Status  string   `json:"status"`
	Missing []string `json:"missing,omitempty"`
}

// HandleReadiness godoc
//
//	@Summary		Readiness Check
//	@Description	Checks that the pass identifiers are set and the signing certificates are readable
//	@Tags			Common
//	@Produce		json
//	@Success		200	{object}	readinessResponse	"status ready"
//	@Failure		503	{object}	readinessResponse	"status not ready"
//	@Router			/ready [get]
func HandleReadiness(cfg pass.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Validate(); err != nil {
			resp := readinessResponse{Status: "not ready"}
			var passErr *pass.PassError
			if errors.As(err, &passErr) {
				resp.Missing = passErr.Fields()
			}
			api.RespondWithJSONPayload(w, http.StatusServiceUnavailable, resp)
			return
		}
		api.RespondWithJSONPayload(w, http.StatusOK, readinessResponse{Status: "ready"})
	}
}
