package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/xvoidlabs/pridge/bridge"
	"github.com/xvoidlabs/pridge/internal/client"
	"github.com/xvoidlabs/pridge/internal/model"
)

// BridgeCatalogue handles GET /bridge/chains
// @Summary      List supported chains and tokens
// @Tags         bridge
// @Produce      json
// @Success      200  {object}  model.BridgeCatalogueResponse
// @Router       /bridge/chains [get]
func (h *Handler) BridgeCatalogue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, model.BridgeCatalogueResponse{
		Chains: bridge.SupportedChains,
		Tokens: bridge.SupportedTokens,
	})
}

// BridgeQuote handles GET /bridge/quote
// @Summary      Quote a bridge order
// @Description  Prices moving an amount from an EVM chain into the deposit address
// @Tags         bridge
// @Produce      json
// @Param        srcChainId      query     int     true  "Source EVM chain id"
// @Param        token           query     string  true  "Token symbol (NATIVE, USDC, USDT)"
// @Param        amount          query     string  true  "Amount in the token's smallest unit"
// @Param        depositAddress  query     string  true  "Solana deposit address"
// @Success      200  {object}  model.BridgeQuoteResponse
// @Failure      400  {object}  model.ErrorResponse
// @Failure      404  {object}  model.ErrorResponse
// @Router       /bridge/quote [get]
func (h *Handler) BridgeQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	params, err := h.quoteParams(
		r.URL.Query().Get("srcChainId"),
		r.URL.Query().Get("token"),
		r.URL.Query().Get("amount"),
		r.URL.Query().Get("depositAddress"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "", err)
		return
	}

	quote := h.adapter.GetQuote(r.Context(), params)
	if quote == nil {
		writeError(w, http.StatusNotFound, "", errors.New("no quote available for this order"))
		return
	}

	writeJSON(w, http.StatusOK, model.BridgeQuoteResponse{
		SrcAmount:  quote.Estimation.SrcChainTokenIn.Amount,
		SrcSymbol:  quote.Estimation.SrcChainTokenIn.Symbol,
		DstAmount:  quote.Estimation.DstChainTokenOut.Amount,
		DstSymbol:  quote.Estimation.DstChainTokenOut.Symbol,
		FixFee:     quote.FixFee,
		PercentFee: quote.PercentFee,
	})
}

// BridgeExecute handles POST /bridge/execute
// @Summary      Execute a bridge order
// @Description  Creates the deBridge transaction, approves spending when needed, submits it and waits for the receipt
// @Tags         bridge
// @Accept       json
// @Produce      json
// @Param        request  body      model.BridgeExecuteRequest  true  "Order parameters"
// @Success      200      {object}  model.BridgeExecuteResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      502      {object}  model.ErrorResponse
// @Router       /bridge/execute [post]
func (h *Handler) BridgeExecute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.BridgeExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "", err)
		return
	}

	params, err := h.quoteParams(
		strconv.FormatInt(req.SrcChainID, 10),
		req.Token, req.Amount, req.DepositAddress)
	if err != nil {
		writeError(w, http.StatusBadRequest, "", err)
		return
	}

	// create-tx first: the payload's to address is the spender any approval
	// must target.
	quote := h.adapter.CreateTransaction(r.Context(), params)
	if quote == nil {
		writeError(w, http.StatusBadGateway, "", errors.New("failed to create bridge transaction"))
		return
	}

	hash, err := h.adapter.Execute(r.Context(), params.SrcTokenAddress, quote)
	if err != nil {
		switch {
		case errors.Is(err, client.ErrUserRejected):
			writeError(w, http.StatusBadRequest, model.CodeUserRejected, err)
		case errors.Is(err, bridge.ErrTransactionFailed):
			writeError(w, http.StatusBadGateway, model.CodeTransactionFailed, err)
		default:
			writeError(w, http.StatusInternalServerError, "", err)
		}
		return
	}

	h.log.Info("bridge order executed",
		zap.String("txHash", hash.Hex()),
		zap.String("orderId", quote.OrderID))

	resp := model.BridgeExecuteResponse{
		Success:     true,
		TxHash:      hash.Hex(),
		ExplorerURL: bridge.ExplorerTxURL(req.SrcChainID, hash.Hex()),
		OrderID:     quote.OrderID,
	}
	if quote.OrderID != "" {
		resp.TrackingURL = client.OrderTrackingURL(quote.OrderID)
	}
	writeJSON(w, http.StatusOK, resp)
}

// BridgeOrderStatus handles GET /bridge/orders/{id}/status
// @Summary      Track a bridge order
// @Tags         bridge
// @Produce      json
// @Param        id   path      string  true  "deBridge order id"
// @Success      200  {object}  model.OrderStatusResponse
// @Router       /bridge/orders/{id}/status [get]
func (h *Handler) BridgeOrderStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	orderID := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/bridge/orders/"), "/status")
	if orderID == "" || strings.Contains(orderID, "/") {
		writeError(w, http.StatusBadRequest, "", errors.New("invalid order id"))
		return
	}

	writeJSON(w, http.StatusOK, model.OrderStatusResponse{
		OrderID: orderID,
		Status:  h.adapter.OrderStatus(r.Context(), orderID),
	})
}

func (h *Handler) quoteParams(srcChainID, token, amount, depositAddress string) (client.QuoteParams, error) {
	chainID, err := strconv.ParseInt(srcChainID, 10, 64)
	if err != nil {
		return client.QuoteParams{}, errors.New("invalid srcChainId")
	}
	if _, ok := bridge.ChainByID(chainID); !ok {
		return client.QuoteParams{}, errors.New("unsupported source chain")
	}

	tokenInfo, ok := bridge.SupportedTokens[token]
	if !ok {
		return client.QuoteParams{}, errors.New("unsupported token")
	}
	srcToken := bridge.TokenAddress(token, chainID)
	if srcToken == "" {
		return client.QuoteParams{}, errors.New("token has no deployment on this chain")
	}

	if amount == "" {
		return client.QuoteParams{}, errors.New("amount is required")
	}
	if depositAddress == "" {
		return client.QuoteParams{}, errors.New("depositAddress is required")
	}

	var srcAddress string
	if h.adapter != nil {
		srcAddress = h.adapter.WalletAddress()
	}

	return client.QuoteParams{
		SrcChainID:      chainID,
		DstChainID:      client.SolanaChainID,
		SrcTokenAddress: srcToken,
		DstTokenAddress: tokenInfo.SolanaMint,
		Amount:          amount,
		SrcAddress:      srcAddress,
		DstAddress:      depositAddress,
	}, nil
}
