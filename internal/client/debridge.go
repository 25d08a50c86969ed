package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultDeBridgeAPI is the deBridge DLN REST base URL.
	DefaultDeBridgeAPI = "https://api.dln.trade/v1.0"

	// NativeToken is how deBridge addresses a chain's native currency.
	NativeToken = "0x0000000000000000000000000000000000000000"

	// SolanaChainID is deBridge's internal chain identifier for Solana.
	SolanaChainID = 7565164
)

// DeBridgeClient is a client for the deBridge DLN order API.
type DeBridgeClient struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

// NewDeBridgeClient creates a new deBridge client.
func NewDeBridgeClient(baseURL string, log *zap.Logger) *DeBridgeClient {
	if baseURL == "" {
		baseURL = DefaultDeBridgeAPI
	}
	return &DeBridgeClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// QuoteParams parameterizes a cross-chain order. Amount is an integer in the
// source token's smallest unit.
type QuoteParams struct {
	SrcChainID      int64
	DstChainID      int64
	SrcTokenAddress string
	DstTokenAddress string
	Amount          string
	SrcAddress      string
	DstAddress      string
}

// TokenEstimation describes one leg of a quoted order.
type TokenEstimation struct {
	Amount            string `json:"amount"`
	Symbol            string `json:"symbol"`
	Decimals          int    `json:"decimals"`
	RecommendedAmount string `json:"recommendedAmount,omitempty"`
}

// TxPayload is the executable transaction returned by create-tx.
type TxPayload struct {
	To    string `json:"to"`
	Data  string `json:"data"`
	Value string `json:"value"`
}

// Quote is a deBridge pricing response, optionally carrying an executable
// transaction payload when obtained via CreateTransaction.
type Quote struct {
	Estimation struct {
		SrcChainTokenIn  TokenEstimation `json:"srcChainTokenIn"`
		SrcChainTokenOut TokenEstimation `json:"srcChainTokenOut"`
		DstChainTokenOut TokenEstimation `json:"dstChainTokenOut"`
	} `json:"estimation"`
	Tx         TxPayload `json:"tx"`
	OrderID    string    `json:"orderId"`
	FixFee     string    `json:"fixFee"`
	PercentFee string    `json:"percentFee"`
}

func (p QuoteParams) query() url.Values {
	q := url.Values{}
	q.Set("srcChainId", strconv.FormatInt(p.SrcChainID, 10))
	q.Set("srcChainTokenIn", p.SrcTokenAddress)
	q.Set("srcChainTokenInAmount", p.Amount)
	q.Set("dstChainId", strconv.FormatInt(p.DstChainID, 10))
	q.Set("dstChainTokenOut", p.DstTokenAddress)
	q.Set("dstChainTokenOutRecipient", p.DstAddress)
	q.Set("srcChainOrderAuthorityAddress", p.SrcAddress)
	q.Set("dstChainOrderAuthorityAddress", p.DstAddress)
	q.Set("prependOperatingExpenses", "true")
	return q
}

// Quote requests a read-only price estimation for the order.
func (c *DeBridgeClient) Quote(ctx context.Context, params QuoteParams) (*Quote, error) {
	return c.getQuote(ctx, "/dln/order/quote", params.query())
}

// CreateTransaction requests a quote bound to an executable transaction
// payload.
func (c *DeBridgeClient) CreateTransaction(ctx context.Context, params QuoteParams) (*Quote, error) {
	q := params.query()
	q.Set("referralCode", "0")
	return c.getQuote(ctx, "/dln/order/create-tx", q)
}

func (c *DeBridgeClient) getQuote(ctx context.Context, path string, q url.Values) (*Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach deBridge: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("deBridge %s: status %d: %s", path, resp.StatusCode, string(body))
	}

	var quote Quote
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return nil, fmt.Errorf("failed to decode quote: %w", err)
	}
	return &quote, nil
}

// OrderStatus looks up the settlement status of a created order. Returns
// "unknown" on any failure - status is informational only.
func (c *DeBridgeClient) OrderStatus(ctx context.Context, orderID string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/dln/order/"+url.PathEscape(orderID)+"/status", nil)
	if err != nil {
		return "unknown"
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("order status lookup failed", zap.String("orderId", orderID), zap.Error(err))
		return "unknown"
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "unknown"
	}

	var out struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.Status == "" {
		return "unknown"
	}
	return out.Status
}

// OrderTrackingURL returns the deBridge UI link for a created order.
func OrderTrackingURL(orderID string) string {
	return "https://app.debridge.finance/order?orderId=" + url.QueryEscape(orderID)
}
