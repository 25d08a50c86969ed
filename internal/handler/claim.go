package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/xvoidlabs/pridge/claimlink"
	"github.com/xvoidlabs/pridge/internal/client"
	"github.com/xvoidlabs/pridge/internal/model"
	"github.com/xvoidlabs/pridge/sweep"
)

// Claim handles POST /claim
// @Summary      Claim a deposit
// @Description  Sweeps everything behind a claim link to one destination or splits it across up to ten
// @Tags         claims
// @Accept       json
// @Produce      json
// @Param        request  body      model.ClaimRequest  true  "Claim link fragment and destination(s)"
// @Success      200      {object}  model.ClaimResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      410      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /claim [post]
func (h *Handler) Claim(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "", err)
		return
	}

	fragment, err := claimlink.Decode(req.Fragment)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.CodeMalformedFragment, err)
		return
	}
	if claimlink.IsExpired(fragment.ExpiresAt) {
		writeError(w, http.StatusGone, model.CodeLinkExpired, errors.New("claim link has expired"))
		return
	}

	var sig solana.Signature
	if len(req.Destinations) > 0 {
		dests := make([]sweep.Destination, 0, len(req.Destinations))
		for _, d := range req.Destinations {
			addr, err := solana.PublicKeyFromBase58(d.Address)
			if err != nil {
				writeError(w, http.StatusBadRequest, model.CodeInvalidDestinations, errors.New("invalid destination address "+d.Address))
				return
			}
			dests = append(dests, sweep.Destination{Address: addr, Percentage: d.Percentage})
		}
		sig, err = h.builder.ClaimSplit(r.Context(), fragment.Key, dests, h.payer)
	} else {
		addr, perr := solana.PublicKeyFromBase58(req.Destination)
		if perr != nil {
			writeError(w, http.StatusBadRequest, model.CodeInvalidDestinations, errors.New("invalid destination address"))
			return
		}
		sig, err = h.builder.ClaimAll(r.Context(), fragment.Key, addr, h.payer)
	}
	if err != nil {
		h.claimError(w, err)
		return
	}

	h.log.Info("claim submitted", zap.String("signature", sig.String()))

	writeJSON(w, http.StatusOK, model.ClaimResponse{
		Success:     true,
		Signature:   sig.String(),
		ExplorerURL: h.solanaExplorerTxURL(sig.String()),
	})
}

func (h *Handler) claimError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sweep.ErrInvalidDestinations):
		writeError(w, http.StatusBadRequest, model.CodeInvalidDestinations, err)
	case errors.Is(err, sweep.ErrNothingToClaim):
		writeError(w, http.StatusConflict, model.CodeNothingToClaim, err)
	case errors.Is(err, sweep.ErrNoFeePayer):
		writeError(w, http.StatusUnprocessableEntity, model.CodeNoFeePayer, err)
	case errors.Is(err, client.ErrAllEndpointsUnavailable):
		writeError(w, http.StatusServiceUnavailable, model.CodeEndpointsUnavailable, err)
	default:
		writeError(w, http.StatusInternalServerError, "", err)
	}
}
