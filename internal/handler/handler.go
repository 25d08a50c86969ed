// Package handler implements the HTTP API over the deposit, claim, and
// bridge domains.
package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/xvoidlabs/pridge/bridge"
	"github.com/xvoidlabs/pridge/internal/config"
	"github.com/xvoidlabs/pridge/internal/model"
	"github.com/xvoidlabs/pridge/sweep"
)

// Handler holds the wired domain components behind the HTTP API.
type Handler struct {
	cfg     *config.Config
	reader  *sweep.Reader
	builder *sweep.Builder
	payer   sweep.FeePayer // nil when gasless claims are not offered
	adapter *bridge.Adapter
	log     *zap.Logger
}

// New creates a Handler. payer may be nil when no server-side fee payer is
// configured.
func New(cfg *config.Config, reader *sweep.Reader, builder *sweep.Builder, payer sweep.FeePayer, adapter *bridge.Adapter, log *zap.Logger) *Handler {
	return &Handler{
		cfg:     cfg,
		reader:  reader,
		builder: builder,
		payer:   payer,
		adapter: adapter,
		log:     log,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	writeJSON(w, status, model.ErrorResponse{Error: err.Error(), Code: code})
}

// solanaExplorerTxURL links a submitted signature to the public explorer.
func (h *Handler) solanaExplorerTxURL(signature string) string {
	url := "https://explorer.solana.com/tx/" + signature
	if !h.cfg.IsMainnet() {
		url += "?cluster=devnet"
	}
	return url
}

// Health handles GET /healthz
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /healthz [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"network": h.cfg.Network,
	})
}
