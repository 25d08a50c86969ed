// Package bridge moves funds from an EVM chain to a Solana deposit address
// through the deBridge DLN order flow: quote, create-tx, approve if needed,
// execute, track.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/xvoidlabs/pridge/internal/client"
)

// ErrTransactionFailed is returned when a submitted transaction mines with a
// failed status.
var ErrTransactionFailed = errors.New("transaction failed")

// maxApproval is the unlimited ERC-20 allowance, 2^256-1.
var maxApproval = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// evmWallet is the slice of the EVM wallet the adapter needs.
// *client.EVMWallet satisfies it; tests substitute stubs.
type evmWallet interface {
	Address() common.Address
	ChainID() int64
	Allowance(ctx context.Context, token, spender common.Address) (*big.Int, error)
	Approve(ctx context.Context, token, spender common.Address, amount *big.Int) (common.Hash, error)
	SendPayload(ctx context.Context, to common.Address, data []byte, value *big.Int) (common.Hash, error)
	WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// Adapter drives deBridge orders end to end against one EVM wallet.
type Adapter struct {
	api    *client.DeBridgeClient
	wallet evmWallet
	log    *zap.Logger
}

// NewAdapter binds the deBridge API client and the EVM wallet. wallet may be
// nil, in which case quoting works but Execute fails.
func NewAdapter(api *client.DeBridgeClient, wallet *client.EVMWallet, log *zap.Logger) *Adapter {
	a := &Adapter{api: api, log: log}
	if wallet != nil {
		a.wallet = wallet
	}
	return a
}

// WalletAddress returns the bound wallet's address, empty when no wallet is
// configured.
func (a *Adapter) WalletAddress() string {
	if a.wallet == nil {
		return ""
	}
	return a.wallet.Address().Hex()
}

// GetQuote fetches a price estimation. A missing quote is a normal retryable
// state, so failures come back as nil rather than an error.
func (a *Adapter) GetQuote(ctx context.Context, params client.QuoteParams) *client.Quote {
	quote, err := a.api.Quote(ctx, params)
	if err != nil {
		a.log.Warn("quote unavailable", zap.Error(err))
		return nil
	}
	return quote
}

// CreateTransaction fetches a quote bound to an executable transaction
// payload. Nil on any failure, like GetQuote.
func (a *Adapter) CreateTransaction(ctx context.Context, params client.QuoteParams) *client.Quote {
	quote, err := a.api.CreateTransaction(ctx, params)
	if err != nil {
		a.log.Warn("create-tx unavailable", zap.Error(err))
		return nil
	}
	if quote.Tx.To == "" {
		a.log.Warn("create-tx response missing transaction payload",
			zap.String("orderId", quote.OrderID))
		return nil
	}
	return quote
}

// Execute submits the quote's transaction payload through the wallet and
// waits for it to mine. srcToken is the source token's EVM address; for
// ERC-20 tokens the deBridge contract (the payload's to address) must hold
// sufficient allowance, so an unlimited approval is sent and mined first when
// the current allowance falls short.
func (a *Adapter) Execute(ctx context.Context, srcToken string, quote *client.Quote) (common.Hash, error) {
	if a.wallet == nil {
		return common.Hash{}, errors.New("no EVM wallet configured")
	}
	if quote == nil || quote.Tx.To == "" {
		return common.Hash{}, fmt.Errorf("quote carries no transaction payload")
	}

	to := common.HexToAddress(quote.Tx.To)

	if srcToken != client.NativeToken {
		if err := a.ensureAllowance(ctx, common.HexToAddress(srcToken), to, quote.Estimation.SrcChainTokenIn.Amount); err != nil {
			return common.Hash{}, err
		}
	}

	data, err := decodePayloadData(quote.Tx.Data)
	if err != nil {
		return common.Hash{}, fmt.Errorf("malformed transaction data: %w", err)
	}
	value, err := parsePayloadValue(quote.Tx.Value)
	if err != nil {
		return common.Hash{}, fmt.Errorf("malformed transaction value: %w", err)
	}

	hash, err := a.wallet.SendPayload(ctx, to, data, value)
	if err != nil {
		return common.Hash{}, err
	}

	a.log.Info("bridge transaction submitted",
		zap.String("hash", hash.Hex()),
		zap.String("orderId", quote.OrderID))

	receipt, err := a.wallet.WaitMined(ctx, hash)
	if err != nil {
		return hash, err
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return hash, fmt.Errorf("%w: %s", ErrTransactionFailed, hash.Hex())
	}
	return hash, nil
}

// OrderStatus looks up the settlement status of a created order. "unknown"
// on any failure.
func (a *Adapter) OrderStatus(ctx context.Context, orderID string) string {
	return a.api.OrderStatus(ctx, orderID)
}

func (a *Adapter) ensureAllowance(ctx context.Context, token, spender common.Address, required string) error {
	need, ok := new(big.Int).SetString(required, 10)
	if !ok {
		return fmt.Errorf("malformed source amount %q", required)
	}

	current, err := a.wallet.Allowance(ctx, token, spender)
	if err != nil {
		return fmt.Errorf("allowance check: %w", err)
	}
	if current.Cmp(need) >= 0 {
		return nil
	}

	a.log.Info("approving token spend",
		zap.String("token", token.Hex()),
		zap.String("spender", spender.Hex()))

	hash, err := a.wallet.Approve(ctx, token, spender, maxApproval)
	if err != nil {
		return fmt.Errorf("approval: %w", err)
	}
	receipt, err := a.wallet.WaitMined(ctx, hash)
	if err != nil {
		return fmt.Errorf("approval receipt: %w", err)
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return fmt.Errorf("%w: approval %s", ErrTransactionFailed, hash.Hex())
	}
	return nil
}

func decodePayloadData(data string) ([]byte, error) {
	if data == "" || data == "0x" {
		return nil, nil
	}
	return hexutil.Decode(data)
}

func parsePayloadValue(value string) (*big.Int, error) {
	if value == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("not a decimal integer: %q", value)
	}
	return v, nil
}
