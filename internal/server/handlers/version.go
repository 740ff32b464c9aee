package handlers

import (
	"net/http"

	"github.com/digital-business-cards/walletpass/internal/api"
	"github.com/digital-business-cards/walletpass/internal/version"
)

// HandleVersion godoc
//
//	@Summary		Get version information
//	@Description	Returns the version and build information for the service
//	@Tags			Common
//	@Produce		json
//	@Success		200	{object}	VersionResponse	"Version information"
//	@Router			/version [get]
func HandleVersion(info version.Info) http.HandlerFunc {
	response := VersionResponse{
		Version:   info.Version,
		BuildDate: info.BuildDate,
		GitCommit: info.GitCommit,
		Service:   "walletpass-server",
	}

	return func(w http.ResponseWriter, r *http.Request) {
		api.RespondWithJSONPayload(w, http.StatusOK, response)
	}
}

type VersionResponse struct {
	Version   string `json:"version" example:"1.0.0"`
	BuildDate string `json:"build_date" example:"2026-01-28T10:00:00Z"`
	GitCommit string `json:"git_commit" example:"4f1c2d9"`
	Service   string `json:"service" example:"walletpass-server"`
}
