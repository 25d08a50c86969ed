package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/xvoidlabs/pridge/internal/handler"
)

// SetupRouter sets up router with handlers
func SetupRouter(h *handler.Handler) http.Handler {
	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	mux.HandleFunc("/healthz", h.Health)

	// Deposit endpoints
	mux.HandleFunc("/deposits", h.CreateDeposit)
	mux.HandleFunc("/balances", h.GetBalances)
	mux.HandleFunc("/claim", h.Claim)

	// Bridge endpoints
	mux.HandleFunc("/bridge/chains", h.BridgeCatalogue)
	mux.HandleFunc("/bridge/quote", h.BridgeQuote)
	mux.HandleFunc("/bridge/execute", h.BridgeExecute)
	mux.HandleFunc("/bridge/orders/", h.BridgeOrderStatus)

	return mux
}
