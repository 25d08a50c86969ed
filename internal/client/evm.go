package client

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// ErrUserRejected is returned by TxSigner implementations backed by an
// interactive wallet when the user declines to sign.
var ErrUserRejected = errors.New("transaction rejected by user")

// TxSigner is the signing capability of an EVM wallet. A local in-memory key
// signs unconditionally; remote wallet implementations may return
// ErrUserRejected.
type TxSigner interface {
	Address() common.Address
	SignTx(tx *types.Transaction) (*types.Transaction, error)
}

// LocalKeySigner signs with an in-memory ECDSA key.
type LocalKeySigner struct {
	key     *ecdsa.PrivateKey
	chainID *big.Int
}

// NewLocalKeySigner parses a hex private key (without 0x prefix).
func NewLocalKeySigner(hexKey string, chainID int64) (*LocalKeySigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid EVM private key: %w", err)
	}
	return &LocalKeySigner{key: key, chainID: big.NewInt(chainID)}, nil
}

// Address returns the signer's account address.
func (s *LocalKeySigner) Address() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

// SignTx signs the transaction for the signer's chain.
func (s *LocalKeySigner) SignTx(tx *types.Transaction) (*types.Transaction, error) {
	return types.SignTx(tx, types.LatestSignerForChainID(s.chainID), s.key)
}

const erc20ABIJSON = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"type":"function"}
]`

var erc20ABI = mustParseABI(erc20ABIJSON)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return parsed
}

// EVMWallet submits transactions on an EVM chain through a TxSigner
// capability.
type EVMWallet struct {
	client  *ethclient.Client
	signer  TxSigner
	chainID *big.Int
	log     *zap.Logger
}

// NewEVMWallet dials the RPC endpoint and binds the signer.
func NewEVMWallet(rpcURL string, signer TxSigner, chainID int64, log *zap.Logger) (*EVMWallet, error) {
	cl, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial EVM RPC: %w", err)
	}
	return &EVMWallet{
		client:  cl,
		signer:  signer,
		chainID: big.NewInt(chainID),
		log:     log,
	}, nil
}

// Address returns the wallet's account address.
func (w *EVMWallet) Address() common.Address {
	return w.signer.Address()
}

// ChainID returns the wallet's chain id.
func (w *EVMWallet) ChainID() int64 {
	return w.chainID.Int64()
}

// Allowance reads the ERC-20 allowance granted by the wallet to spender.
func (w *EVMWallet) Allowance(ctx context.Context, token, spender common.Address) (*big.Int, error) {
	data, err := erc20ABI.Pack("allowance", w.Address(), spender)
	if err != nil {
		return nil, fmt.Errorf("failed to pack allowance call: %w", err)
	}

	out, err := w.client.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("allowance call failed: %w", err)
	}

	results, err := erc20ABI.Unpack("allowance", out)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack allowance: %w", err)
	}
	return results[0].(*big.Int), nil
}

// Approve sends an ERC-20 approval for amount to spender and returns the
// transaction hash.
func (w *EVMWallet) Approve(ctx context.Context, token, spender common.Address, amount *big.Int) (common.Hash, error) {
	data, err := erc20ABI.Pack("approve", spender, amount)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to pack approve call: %w", err)
	}
	return w.SendPayload(ctx, token, data, nil)
}

// SendPayload signs and broadcasts a raw call payload from the wallet's
// account.
func (w *EVMWallet) SendPayload(ctx context.Context, to common.Address, data []byte, value *big.Int) (common.Hash, error) {
	if value == nil {
		value = new(big.Int)
	}

	nonce, err := w.client.PendingNonceAt(ctx, w.Address())
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := w.client.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to suggest gas price: %w", err)
	}

	gasLimit, err := w.client.EstimateGas(ctx, ethereum.CallMsg{
		From:  w.Address(),
		To:    &to,
		Data:  data,
		Value: value,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to estimate gas: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := w.signer.SignTx(tx)
	if err != nil {
		if errors.Is(err, ErrUserRejected) {
			return common.Hash{}, err
		}
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := w.client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	w.log.Info("EVM transaction sent",
		zap.String("hash", signed.Hash().Hex()),
		zap.String("to", to.Hex()))
	return signed.Hash(), nil
}

// WaitMined polls for the receipt of a broadcast transaction.
func (w *EVMWallet) WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		receipt, err := w.client.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("failed to fetch receipt: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
