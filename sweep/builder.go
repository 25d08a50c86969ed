package sweep

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"go.uber.org/zap"

	"github.com/xvoidlabs/pridge/internal/client"
)

// feeReserveLamports is held back for the transaction fee when the disposable
// key pays for itself.
const feeReserveLamports = 5000

// FeePayer is the co-signing capability for gasless claims. A local in-memory
// key and a remote wallet prompt are the two implementations; the caller
// picks one.
type FeePayer interface {
	PublicKey() solana.PublicKey
	SignTransaction(ctx context.Context, tx *solana.Transaction) error
}

// LocalFeePayer signs with an in-memory key.
type LocalFeePayer struct {
	key solana.PrivateKey
}

// NewLocalFeePayer wraps a 64-byte private key.
func NewLocalFeePayer(key solana.PrivateKey) (*LocalFeePayer, error) {
	if len(key) != 64 {
		return nil, fmt.Errorf("invalid fee payer key length: expected 64 bytes, got %d", len(key))
	}
	return &LocalFeePayer{key: key}, nil
}

// PublicKey returns the fee payer's address.
func (p *LocalFeePayer) PublicKey() solana.PublicKey {
	return p.key.PublicKey()
}

// SignTransaction adds the fee payer's signature to the transaction.
func (p *LocalFeePayer) SignTransaction(_ context.Context, tx *solana.Transaction) error {
	_, err := tx.PartialSign(func(key solana.PublicKey) *solana.PrivateKey {
		if p.key.PublicKey().Equals(key) {
			return &p.key
		}
		return nil
	})
	return err
}

// RemoteFeePayer delegates signing to an externally-mediated wallet prompt.
type RemoteFeePayer struct {
	Address  solana.PublicKey
	SignFunc func(ctx context.Context, tx *solana.Transaction) error
}

// PublicKey returns the remote wallet's address.
func (p *RemoteFeePayer) PublicKey() solana.PublicKey {
	return p.Address
}

// SignTransaction asks the remote wallet to co-sign. Blocks until the user
// responds or ctx is cancelled.
func (p *RemoteFeePayer) SignTransaction(ctx context.Context, tx *solana.Transaction) error {
	return p.SignFunc(ctx, tx)
}

// Builder assembles and submits claim transactions.
type Builder struct {
	chain chainReader
	log   *zap.Logger
}

// NewBuilder creates a Builder over the Solana client.
func NewBuilder(chain *client.SolanaClient, log *zap.Logger) *Builder {
	return &Builder{chain: chain, log: log}
}

// ClaimAll sweeps everything the disposable key holds to a single
// destination and returns the submitted signature.
func (b *Builder) ClaimAll(ctx context.Context, disposable solana.PrivateKey, destination solana.PublicKey, payer FeePayer) (solana.Signature, error) {
	return b.claim(ctx, disposable, []Destination{{Address: destination, Percentage: 100}}, payer)
}

// ClaimSplit sweeps everything the disposable key holds, dividing each asset
// across the destinations by percentage. The last destination absorbs
// rounding remainders.
func (b *Builder) ClaimSplit(ctx context.Context, disposable solana.PrivateKey, dests []Destination, payer FeePayer) (solana.Signature, error) {
	return b.claim(ctx, disposable, dests, payer)
}

func (b *Builder) claim(ctx context.Context, disposable solana.PrivateKey, dests []Destination, payer FeePayer) (solana.Signature, error) {
	if len(disposable) != 64 {
		return solana.Signature{}, fmt.Errorf("invalid disposable key length: expected 64 bytes, got %d", len(disposable))
	}
	source := disposable.PublicKey()

	var payerKey *solana.PublicKey
	if payer != nil {
		pk := payer.PublicKey()
		payerKey = &pk
	}

	instructions, err := b.plan(ctx, source, dests, payerKey)
	if err != nil {
		return solana.Signature{}, err
	}

	feePayerPubkey := source
	if payerKey != nil {
		feePayerPubkey = *payerKey
	}

	recent, _, err := b.chain.LatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, err
	}

	tx, err := solana.NewTransaction(
		instructions,
		recent,
		solana.TransactionPayer(feePayerPubkey),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to create transaction: %w", err)
	}

	// Re-fetch the checkpoint right before signing to minimize staleness.
	fresh, _, err := b.chain.LatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, err
	}
	tx.Message.RecentBlockhash = fresh

	if _, err := tx.PartialSign(func(key solana.PublicKey) *solana.PrivateKey {
		if source.Equals(key) {
			return &disposable
		}
		return nil
	}); err != nil {
		return solana.Signature{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if payer != nil {
		if err := payer.SignTransaction(ctx, tx); err != nil {
			return solana.Signature{}, fmt.Errorf("fee payer signature: %w", err)
		}
	}

	b.log.Info("submitting claim transaction",
		zap.String("source", source.String()),
		zap.Int("destinations", len(dests)),
		zap.Int("instructions", len(instructions)))

	sig, err := b.chain.SendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, err
	}

	if err := b.chain.ConfirmTransaction(ctx, sig, fresh); err != nil {
		return sig, err
	}
	return sig, nil
}

// plan reads the source account's holdings and produces the full instruction
// list for the claim. payerKey is nil when the disposable key pays its own
// fee. Validation failures surface here, before anything touches the chain
// state.
func (b *Builder) plan(ctx context.Context, source solana.PublicKey, dests []Destination, payerKey *solana.PublicKey) ([]solana.Instruction, error) {
	if err := ValidateDestinations(dests); err != nil {
		return nil, err
	}
	single := len(dests) == 1

	// Rent refunds and ATA creation are paid by the external payer when one
	// exists, otherwise by the disposable key.
	refundTo := source
	if payerKey != nil {
		refundTo = *payerKey
	}

	lamports, err := b.chain.GetLamports(ctx, source)
	if err != nil {
		return nil, err
	}

	holdings, err := b.chain.GetTokenHoldings(ctx, source)
	if err != nil {
		return nil, err
	}

	var instructions []solana.Instruction
	var wsolAmount uint64

	for _, h := range holdings {
		if h.Amount == 0 {
			continue
		}

		// Wrapped SOL is not transferred as a token: closing its account
		// releases the underlying lamports. Single-destination claims release
		// straight to the destination; split claims release to the source so
		// the amount merges into the native pool and splits numerically.
		if h.Mint.Equals(solana.SolMint) {
			if single {
				instructions = append(instructions, token.NewCloseAccountInstruction(
					h.Account,
					dests[0].Address,
					source,
					nil,
				).Build())
			} else {
				wsolAmount += h.Amount
				instructions = append(instructions, token.NewCloseAccountInstruction(
					h.Account,
					source,
					source,
					nil,
				).Build())
			}
			continue
		}

		shares := splitShares(h.Amount, dests)
		for i, d := range dests {
			if shares[i] == 0 {
				continue
			}

			destATA, _, err := solana.FindAssociatedTokenAddress(d.Address, h.Mint)
			if err != nil {
				return nil, fmt.Errorf("failed to derive token account for %s: %w", d.Address, err)
			}

			exists, err := b.chain.AccountExists(ctx, destATA)
			if err != nil {
				return nil, err
			}
			if !exists {
				instructions = append(instructions, associatedtokenaccount.NewCreateInstruction(
					refundTo,  // payer
					d.Address, // owner
					h.Mint,
				).Build())
			}

			instructions = append(instructions, token.NewTransferCheckedInstruction(
				shares[i],
				h.Decimals,
				h.Account,
				h.Mint,
				destATA,
				source,
				nil,
			).Build())
		}

		// Close the emptied source account once, refunding its rent.
		instructions = append(instructions, token.NewCloseAccountInstruction(
			h.Account,
			refundTo,
			source,
			nil,
		).Build())
	}

	// Native distribution: the balance read above, plus anything the split
	// unwrap released. The fee buffer is reserved only when the disposable
	// key pays for itself.
	totalLamports := lamports
	if !single {
		totalLamports += wsolAmount
	}

	var feeReserve uint64
	if payerKey == nil {
		feeReserve = feeReserveLamports
	}

	if totalLamports > feeReserve {
		distributable := totalLamports - feeReserve
		if single {
			instructions = append(instructions, system.NewTransferInstruction(
				distributable,
				source,
				dests[0].Address,
			).Build())
		} else {
			shares := splitShares(distributable, dests)
			for i, d := range dests {
				if shares[i] == 0 {
					continue
				}
				instructions = append(instructions, system.NewTransferInstruction(
					shares[i],
					source,
					d.Address,
				).Build())
			}
		}
	}

	if len(instructions) == 0 {
		return nil, ErrNothingToClaim
	}

	// Tokens exist but nothing covers the fee. In split mode unwrapped wSOL
	// counts as coverage - the release merges into the native pool.
	if payerKey == nil && lamports == 0 && (single || wsolAmount == 0) {
		return nil, ErrNoFeePayer
	}

	return instructions, nil
}
