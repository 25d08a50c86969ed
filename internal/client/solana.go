package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// SolanaClient is a client for working with Solana RPC. Reads fall back
// across the endpoint pool; transaction submission uses the current endpoint
// only, since submission failures are surfaced rather than retried.
type SolanaClient struct {
	endpoints *Endpoints
	log       *zap.Logger
}

// NewSolanaClient creates a Solana client over the endpoint pool.
func NewSolanaClient(endpoints *Endpoints, log *zap.Logger) *SolanaClient {
	return &SolanaClient{
		endpoints: endpoints,
		log:       log,
	}
}

// TokenHolding is one token account owned by an address.
type TokenHolding struct {
	Account  solana.PublicKey
	Mint     solana.PublicKey
	Amount   uint64
	Decimals uint8
	UIAmount float64
}

// parsedTokenAccount mirrors the jsonParsed token account layout returned by
// getTokenAccountsByOwner.
type parsedTokenAccount struct {
	Parsed struct {
		Info struct {
			Mint        string `json:"mint"`
			Owner       string `json:"owner"`
			TokenAmount struct {
				Amount   string  `json:"amount"`
				Decimals uint8   `json:"decimals"`
				UIAmount float64 `json:"uiAmount"`
			} `json:"tokenAmount"`
		} `json:"info"`
		Type string `json:"type"`
	} `json:"parsed"`
}

// withReadFallback runs fn against each endpoint in rotation order until one
// succeeds. Every endpoint failing for this call yields
// ErrAllEndpointsUnavailable wrapping the last cause.
func (c *SolanaClient) withReadFallback(ctx context.Context, op string, fn func(cl *rpc.Client) error) error {
	start := c.endpoints.Start()
	var lastErr error

	for i := 0; i < c.endpoints.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := fn(c.endpoints.At(start + i)); err != nil {
			lastErr = err
			c.log.Warn("RPC read failed, trying next endpoint",
				zap.String("op", op),
				zap.String("endpoint", c.endpoints.URLAt(start+i)),
				zap.Error(err))
			c.endpoints.Rotate()
			continue
		}
		return nil
	}

	return fmt.Errorf("%w: %v", ErrAllEndpointsUnavailable, lastErr)
}

// GetLamports returns the native balance of an address in lamports.
func (c *SolanaClient) GetLamports(ctx context.Context, owner solana.PublicKey) (uint64, error) {
	var lamports uint64
	err := c.withReadFallback(ctx, "getBalance", func(cl *rpc.Client) error {
		out, err := cl.GetBalance(ctx, owner, rpc.CommitmentConfirmed)
		if err != nil {
			return err
		}
		lamports = out.Value
		return nil
	})
	return lamports, err
}

// GetTokenHoldings enumerates every SPL token account owned by the address.
func (c *SolanaClient) GetTokenHoldings(ctx context.Context, owner solana.PublicKey) ([]TokenHolding, error) {
	var holdings []TokenHolding
	err := c.withReadFallback(ctx, "getTokenAccountsByOwner", func(cl *rpc.Client) error {
		out, err := cl.GetTokenAccountsByOwner(
			ctx,
			owner,
			&rpc.GetTokenAccountsConfig{ProgramId: solana.TokenProgramID.ToPointer()},
			&rpc.GetTokenAccountsOpts{
				Commitment: rpc.CommitmentConfirmed,
				Encoding:   solana.EncodingJSONParsed,
			},
		)
		if err != nil {
			return err
		}

		holdings = holdings[:0]
		for _, acct := range out.Value {
			var parsed parsedTokenAccount
			if err := json.Unmarshal(acct.Account.Data.GetRawJSON(), &parsed); err != nil {
				return fmt.Errorf("failed to parse token account %s: %w", acct.Pubkey, err)
			}

			mint, err := solana.PublicKeyFromBase58(parsed.Parsed.Info.Mint)
			if err != nil {
				return fmt.Errorf("invalid mint in token account %s: %w", acct.Pubkey, err)
			}

			amount, err := strconv.ParseUint(parsed.Parsed.Info.TokenAmount.Amount, 10, 64)
			if err != nil {
				return fmt.Errorf("failed to parse token amount: %w", err)
			}

			holdings = append(holdings, TokenHolding{
				Account:  acct.Pubkey,
				Mint:     mint,
				Amount:   amount,
				Decimals: parsed.Parsed.Info.TokenAmount.Decimals,
				UIAmount: parsed.Parsed.Info.TokenAmount.UIAmount,
			})
		}
		return nil
	})
	return holdings, err
}

// AccountExists reports whether an account exists on chain. Used to decide
// whether a destination's associated token account needs creating.
func (c *SolanaClient) AccountExists(ctx context.Context, account solana.PublicKey) (bool, error) {
	var exists bool
	err := c.withReadFallback(ctx, "getAccountInfo", func(cl *rpc.Client) error {
		out, err := cl.GetAccountInfo(ctx, account)
		if err != nil {
			if isNotFoundError(err) {
				exists = false
				return nil
			}
			return err
		}
		exists = out.Value != nil
		return nil
	})
	return exists, err
}

// LatestBlockhash fetches a fresh validity checkpoint from the current
// endpoint.
func (c *SolanaClient) LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error) {
	out, err := c.endpoints.Current().GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return solana.Hash{}, 0, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	return out.Value.Blockhash, out.Value.LastValidBlockHeight, nil
}

// SendTransaction submits a signed transaction without preflight simulation,
// to avoid false negatives from stale simulated state.
func (c *SolanaClient) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := c.endpoints.Current().SendTransactionWithOpts(
		ctx,
		tx,
		rpc.TransactionOpts{
			SkipPreflight:       true,
			PreflightCommitment: rpc.CommitmentConfirmed,
		},
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	return sig, nil
}

// ConfirmTransaction waits until the signature reaches confirmed commitment
// or the blockhash it was signed against expires.
func (c *SolanaClient) ConfirmTransaction(ctx context.Context, sig solana.Signature, blockhash solana.Hash) error {
	cl := c.endpoints.Current()
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		statuses, err := cl.GetSignatureStatuses(ctx, true, sig)
		if err == nil && len(statuses.Value) > 0 && statuses.Value[0] != nil {
			status := statuses.Value[0]
			if status.Err != nil {
				return fmt.Errorf("transaction %s failed on chain: %v", sig, status.Err)
			}
			switch status.ConfirmationStatus {
			case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
				return nil
			}
		}

		// Once the checkpoint lapses the transaction can no longer land.
		valid, validErr := cl.IsBlockhashValid(ctx, blockhash, rpc.CommitmentConfirmed)
		if validErr == nil && !valid.Value {
			return fmt.Errorf("transaction %s not confirmed before blockhash expiry", sig)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// isNotFoundError checks if an RPC error indicates a missing account.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, rpc.ErrNotFound) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "could not find account") ||
		strings.Contains(errStr, "not found")
}
