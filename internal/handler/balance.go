package handler

import (
	"errors"
	"net/http"

	"github.com/gagliardetto/solana-go"

	"github.com/xvoidlabs/pridge/internal/client"
	"github.com/xvoidlabs/pridge/internal/model"
)

// GetBalances handles GET /balances
// @Summary      Get deposit balances
// @Description  Reads the native and token balances of an address
// @Tags         deposits
// @Produce      json
// @Param        address  query     string  true  "Base58 account address"
// @Success      200      {object}  model.BalanceResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      503      {object}  model.ErrorResponse
// @Router       /balances [get]
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	address, err := solana.PublicKeyFromBase58(r.URL.Query().Get("address"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "", errors.New("invalid address"))
		return
	}

	snapshot, err := h.reader.GetBalances(r.Context(), address)
	if err != nil {
		if errors.Is(err, client.ErrAllEndpointsUnavailable) {
			writeError(w, http.StatusServiceUnavailable, model.CodeEndpointsUnavailable, err)
			return
		}
		writeError(w, http.StatusInternalServerError, "", err)
		return
	}

	writeJSON(w, http.StatusOK, model.BalanceResponse{
		Address:  address.String(),
		Lamports: snapshot.Lamports,
		SOL:      snapshot.SOL,
		Tokens:   snapshot.Tokens,
		HasFunds: snapshot.HasFunds(),
	})
}
