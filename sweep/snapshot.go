// Package sweep reads disposable-account balances and assembles the claim
// transaction that sweeps everything they hold to one or more destinations.
package sweep

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/xvoidlabs/pridge/internal/client"
	"github.com/xvoidlabs/pridge/internal/common"
)

// TokenBalance is one token holding inside a Snapshot.
type TokenBalance struct {
	Mint     string  `json:"mint"`
	Amount   uint64  `json:"amount"`
	Decimals uint8   `json:"decimals"`
	UIAmount float64 `json:"uiAmount"`
	Symbol   string  `json:"symbol,omitempty"`
}

// Snapshot is an immutable read of an account's holdings. Produced fresh on
// every read, never mutated.
type Snapshot struct {
	Lamports uint64         `json:"lamports"`
	SOL      string         `json:"sol"`
	Tokens   []TokenBalance `json:"tokens"`
}

// HasFunds reports whether the snapshot holds anything claimable.
func (s *Snapshot) HasFunds() bool {
	return s.Lamports > 0 || len(s.Tokens) > 0
}

// chainReader is the slice of the Solana client the sweep package needs.
// *client.SolanaClient satisfies it; tests substitute stubs.
type chainReader interface {
	GetLamports(ctx context.Context, owner solana.PublicKey) (uint64, error)
	GetTokenHoldings(ctx context.Context, owner solana.PublicKey) ([]client.TokenHolding, error)
	AccountExists(ctx context.Context, account solana.PublicKey) (bool, error)
	LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	ConfirmTransaction(ctx context.Context, sig solana.Signature, blockhash solana.Hash) error
}

// Reader produces balance snapshots for an address.
type Reader struct {
	chain chainReader
	log   *zap.Logger
}

// NewReader creates a Reader over the Solana client.
func NewReader(chain *client.SolanaClient, log *zap.Logger) *Reader {
	return &Reader{chain: chain, log: log}
}

// GetBalances reads the native balance and every token holding of the
// address, filtering out zero or negative human-scaled amounts. Endpoint
// outages are handled by the underlying client's fallback rotation.
func (r *Reader) GetBalances(ctx context.Context, address solana.PublicKey) (*Snapshot, error) {
	lamports, err := r.chain.GetLamports(ctx, address)
	if err != nil {
		return nil, err
	}

	holdings, err := r.chain.GetTokenHoldings(ctx, address)
	if err != nil {
		return nil, err
	}

	tokens := make([]TokenBalance, 0, len(holdings))
	for _, h := range holdings {
		if h.UIAmount <= 0 {
			continue
		}
		tb := TokenBalance{
			Mint:     h.Mint.String(),
			Amount:   h.Amount,
			Decimals: h.Decimals,
			UIAmount: h.UIAmount,
		}
		if h.Mint.Equals(solana.SolMint) {
			tb.Symbol = "wSOL"
		}
		tokens = append(tokens, tb)
	}

	return &Snapshot{
		Lamports: lamports,
		SOL:      common.LamportsToSOL(lamports),
		Tokens:   tokens,
	}, nil
}
