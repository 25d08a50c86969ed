package model

import "github.com/xvoidlabs/pridge/bridge"

// BridgeQuoteResponse represents response for GET /bridge/quote
type BridgeQuoteResponse struct {
	SrcAmount  string `json:"srcAmount"`
	SrcSymbol  string `json:"srcSymbol"`
	DstAmount  string `json:"dstAmount"`
	DstSymbol  string `json:"dstSymbol"`
	FixFee     string `json:"fixFee,omitempty"`
	PercentFee string `json:"percentFee,omitempty"`
}

// BridgeExecuteRequest represents request for POST /bridge/execute
type BridgeExecuteRequest struct {
	SrcChainID     int64  `json:"srcChainId"`
	Token          string `json:"token"`  // symbol from the supported set
	Amount         string `json:"amount"` // integer, source token smallest unit
	DepositAddress string `json:"depositAddress"`
}

// BridgeExecuteResponse represents response for POST /bridge/execute
type BridgeExecuteResponse struct {
	Success     bool   `json:"success"`
	TxHash      string `json:"txHash"`
	ExplorerURL string `json:"explorerUrl"`
	OrderID     string `json:"orderId,omitempty"`
	TrackingURL string `json:"trackingUrl,omitempty"`
}

// OrderStatusResponse represents response for GET /bridge/orders/{id}/status
type OrderStatusResponse struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// BridgeCatalogueResponse represents response for GET /bridge/chains
type BridgeCatalogueResponse struct {
	Chains []bridge.Chain          `json:"chains"`
	Tokens map[string]bridge.Token `json:"tokens"`
}
