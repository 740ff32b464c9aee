package handlers

// wallet_pass.go implements GET/POST /generateAppleWalletPass

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/digital-business-cards/walletpass/internal/api"
	"github.com/digital-business-cards/walletpass/internal/logger"
	"github.com/digital-business-cards/walletpass/internal/pass"
)

const PassContentType = "application/vnd.apple.pkpass"

// user agents whose browsers hand an inline .pkpass to the native wallet import flow
var mobileUserAgent = regexp.MustCompile(`(?i)iPhone|iPad|iPod|Android`)

// PassGenerator builds a signed pass for validated card data.
type PassGenerator interface {
	Generate(ctx context.Context, in pass.Input) (*pass.Result, error)
}

// WalletPassHandler handles the Apple Wallet pass endpoint
type WalletPassHandler struct {
	generator PassGenerator
}

func NewWalletPassHandler(generator PassGenerator) *WalletPassHandler {
	return &WalletPassHandler{generator: generator}
}

// HandleGeneratePass godoc
//
//	@Summary		Generate an Apple Wallet pass
//	@Description	Builds a signed .pkpass for a business card. POST takes a JSON body, GET takes the same
//	@Description	fields as query parameters (used by mobile browsers navigating directly to the pass).
//	@Description
//	@Description	Mobile clients and GET requests receive the archive inline so the wallet can import it;
//	@Description	other clients receive it as an attachment download.
//	@Tags		Passes
//	@Accept		json
//	@Produce	application/vnd.apple.pkpass
//	@Param		request	body		pass.Input				false	"Card data (POST)"
//	@Success	200		{file}		binary					"Signed pass archive"
//	@Failure	400		{object}	api.ErrorResponse		"Missing or invalid fields"
//	@Failure	500		{object}	api.ErrorResponse		"Configuration incomplete or generation failed"
//	@Router		/generateAppleWalletPass [post]
//	@Router		/generateAppleWalletPass [get]
func (h *WalletPassHandler) HandleGeneratePass(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	in, err := decodeInput(r)
	if err != nil {
		api.RespondWithError(w, r, err)
		return
	}

	result, err := h.generator.Generate(ctx, in)
	if err != nil {
		api.RespondWithError(w, r, err)
		return
	}

	inline := r.Method == http.MethodGet || mobileUserAgent.MatchString(r.UserAgent())

	logger.ContextWithLogAttrs(ctx,
		slog.String("serial_number", result.SerialNumber),
		slog.Bool("inline", inline),
	)

	if !inline {
		w.Header().Set("Content-Disposition", pass.ContentDisposition(in.Name))
		w.Header().Set("X-Content-Type-Options", "nosniff")
	}

	api.RespondWithBinary(w, PassContentType, result.Archive)
}

// HandlePreflight answers OPTIONS requests that are not CORS preflights (those are answered by
// the CORS middleware).
func (h *WalletPassHandler) HandlePreflight(w http.ResponseWriter, r *http.Request) {
	api.RespondWithStatusCodeOnly(w, http.StatusOK)
}

// decodeInput reads card data from the query string (GET) or the JSON body (POST)
func decodeInput(r *http.Request) (pass.Input, error) {
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		return pass.Input{
			Name:          q.Get("name"),
			Company:       q.Get("company"),
			CardID:        q.Get("cardId"),
			UserID:        q.Get("userId"),
			PublicCardURL: q.Get("publicCardUrl"),
		}, nil
	}

	defer r.Body.Close()

	var in pass.Input
	err := json.NewDecoder(r.Body).Decode(&in)
	switch {
	case err == nil:
		return in, nil
	case errors.Is(err, io.EOF):
		// empty body: validation reports every field as missing
		return pass.Input{}, nil
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return pass.Input{}, api.NewRequestTooLargeError("request body exceeds the maximum allowed size")
	}
	return pass.Input{}, api.WrapMalformedRequestError(err, "failed to decode request JSON")
}
