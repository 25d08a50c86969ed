package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/xvoidlabs/pridge/claimlink"
	"github.com/xvoidlabs/pridge/internal/crypto"
	"github.com/xvoidlabs/pridge/internal/model"
)

// CreateDeposit handles POST /deposits
// @Summary      Create a deposit
// @Description  Generates a disposable keypair and returns its address, QR code and claim link
// @Tags         deposits
// @Accept       json
// @Produce      json
// @Param        request  body      model.CreateDepositRequest  true  "Deposit options"
// @Success      200      {object}  model.DepositResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /deposits [post]
func (h *Handler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	// An empty body means default options.
	var req model.CreateDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "", err)
		return
	}
	if req.ExpiresInSeconds < 0 {
		writeError(w, http.StatusBadRequest, "", errors.New("expiresInSeconds must not be negative"))
		return
	}

	key := claimlink.Generate()
	address := key.PublicKey().String()

	var expiresAt int64
	if req.ExpiresInSeconds > 0 {
		expiresAt = time.Now().Unix() + req.ExpiresInSeconds
	}

	fragment := claimlink.Encode(key, expiresAt)
	claimURL := claimlink.ClaimURL(h.cfg.ClaimBaseURL, key, expiresAt)

	png, err := qrcode.Encode(address, qrcode.Medium, 256)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "", err)
		return
	}

	if req.SaveToVault {
		if h.cfg.VaultFilePath == "" || h.cfg.VaultPassword == "" {
			writeError(w, http.StatusBadRequest, "", errors.New("no vault configured"))
			return
		}
		password := []byte(h.cfg.VaultPassword)
		defer clear(password)

		record := model.DepositRecord{
			Fragment:  fragment,
			Address:   address,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
			ExpiresAt: expiresAt,
		}
		if err := crypto.AppendDeposit(h.cfg.VaultFilePath, h.cfg.Network, record, password); err != nil {
			writeError(w, http.StatusInternalServerError, "", err)
			return
		}
	}

	h.log.Info("deposit created",
		zap.String("address", address),
		zap.Int64("expiresAt", expiresAt))

	writeJSON(w, http.StatusOK, model.DepositResponse{
		Address:   address,
		ClaimURL:  claimURL,
		Fragment:  fragment,
		ExpiresAt: expiresAt,
		QR:        base64.StdEncoding.EncodeToString(png),
	})
}
