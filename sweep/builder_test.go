package sweep

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xvoidlabs/pridge/internal/client"
)

// SPL token program instruction indexes used in assertions.
const (
	tokenIxTransferChecked = 12
	tokenIxCloseAccount    = 9
)

type stubChain struct {
	lamports uint64
	holdings []client.TokenHolding
	existing map[solana.PublicKey]bool

	sentTx *solana.Transaction
}

func (s *stubChain) GetLamports(ctx context.Context, owner solana.PublicKey) (uint64, error) {
	return s.lamports, nil
}

func (s *stubChain) GetTokenHoldings(ctx context.Context, owner solana.PublicKey) ([]client.TokenHolding, error) {
	return s.holdings, nil
}

func (s *stubChain) AccountExists(ctx context.Context, account solana.PublicKey) (bool, error) {
	return s.existing[account], nil
}

func (s *stubChain) LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error) {
	return solana.Hash{1}, 100, nil
}

func (s *stubChain) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	s.sentTx = tx
	return solana.Signature{2}, nil
}

func (s *stubChain) ConfirmTransaction(ctx context.Context, sig solana.Signature, blockhash solana.Hash) error {
	return nil
}

func newTestBuilder(chain chainReader) *Builder {
	return &Builder{chain: chain, log: zap.NewNop()}
}

func ixKind(t *testing.T, ix solana.Instruction) (solana.PublicKey, byte) {
	t.Helper()
	data, err := ix.Data()
	require.NoError(t, err)
	if len(data) == 0 {
		// The associated token account create instruction carries no data.
		return ix.ProgramID(), 0xff
	}
	return ix.ProgramID(), data[0]
}

func transferCheckedAmount(t *testing.T, ix solana.Instruction) uint64 {
	t.Helper()
	data, err := ix.Data()
	require.NoError(t, err)
	require.Equal(t, byte(tokenIxTransferChecked), data[0])
	return binary.LittleEndian.Uint64(data[1:9])
}

func systemTransferLamports(t *testing.T, ix solana.Instruction) uint64 {
	t.Helper()
	require.Equal(t, solana.SystemProgramID, ix.ProgramID())
	data, err := ix.Data()
	require.NoError(t, err)
	require.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[0:4]))
	return binary.LittleEndian.Uint64(data[4:12])
}

func wsolHolding(amount uint64) client.TokenHolding {
	return client.TokenHolding{
		Account:  solana.NewWallet().PublicKey(),
		Mint:     solana.SolMint,
		Amount:   amount,
		Decimals: 9,
		UIAmount: float64(amount) / 1e9,
	}
}

func TestPlanNothingToClaim(t *testing.T) {
	chain := &stubChain{}
	b := newTestBuilder(chain)

	_, err := b.plan(context.Background(), solana.NewWallet().PublicKey(),
		[]Destination{dest(100)}, nil)
	assert.True(t, errors.Is(err, ErrNothingToClaim))
}

func TestPlanInvalidDestinationsBeforeAnyRead(t *testing.T) {
	b := newTestBuilder(&stubChain{lamports: 1_000_000})

	_, err := b.plan(context.Background(), solana.NewWallet().PublicKey(),
		[]Destination{dest(50), dest(49)}, nil)
	assert.True(t, errors.Is(err, ErrInvalidDestinations))
}

func TestPlanWrappedSolOnlySingleDestination(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	chain := &stubChain{holdings: []client.TokenHolding{wsolHolding(1_000_000)}}
	b := newTestBuilder(chain)

	instructions, err := b.plan(context.Background(), solana.NewWallet().PublicKey(),
		[]Destination{dest(100)}, &payer)
	require.NoError(t, err)

	// The unwrap is the whole claim: one close, no transfer.
	require.Len(t, instructions, 1)
	program, kind := ixKind(t, instructions[0])
	assert.Equal(t, solana.TokenProgramID, program)
	assert.Equal(t, byte(tokenIxCloseAccount), kind)
}

func TestPlanNoFeePayer(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	chain := &stubChain{
		holdings: []client.TokenHolding{{
			Account:  solana.NewWallet().PublicKey(),
			Mint:     mint,
			Amount:   500,
			Decimals: 6,
			UIAmount: 0.0005,
		}},
	}
	b := newTestBuilder(chain)

	_, err := b.plan(context.Background(), solana.NewWallet().PublicKey(),
		[]Destination{dest(100)}, nil)
	assert.True(t, errors.Is(err, ErrNoFeePayer))
}

func TestPlanSingleDestinationToken(t *testing.T) {
	source := solana.NewWallet().PublicKey()
	destination := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	chain := &stubChain{
		lamports: 1_000_000,
		holdings: []client.TokenHolding{{
			Account:  solana.NewWallet().PublicKey(),
			Mint:     mint,
			Amount:   42_000,
			Decimals: 6,
			UIAmount: 0.042,
		}},
		existing: map[solana.PublicKey]bool{},
	}
	b := newTestBuilder(chain)

	instructions, err := b.plan(context.Background(), source,
		[]Destination{{Address: destination, Percentage: 100}}, nil)
	require.NoError(t, err)

	// Create missing ATA, checked transfer, close source account, then the
	// fee-reserved native sweep.
	require.Len(t, instructions, 4)

	program, _ := ixKind(t, instructions[0])
	assert.Equal(t, solana.SPLAssociatedTokenAccountProgramID, program)

	assert.Equal(t, uint64(42_000), transferCheckedAmount(t, instructions[1]))

	program, kind := ixKind(t, instructions[2])
	assert.Equal(t, solana.TokenProgramID, program)
	assert.Equal(t, byte(tokenIxCloseAccount), kind)

	assert.Equal(t, uint64(1_000_000-5000), systemTransferLamports(t, instructions[3]))
}

func TestPlanSkipsATACreationWhenAccountExists(t *testing.T) {
	source := solana.NewWallet().PublicKey()
	destination := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	destATA, _, err := solana.FindAssociatedTokenAddress(destination, mint)
	require.NoError(t, err)

	chain := &stubChain{
		lamports: 100_000,
		holdings: []client.TokenHolding{{
			Account:  solana.NewWallet().PublicKey(),
			Mint:     mint,
			Amount:   7,
			Decimals: 0,
			UIAmount: 7,
		}},
		existing: map[solana.PublicKey]bool{destATA: true},
	}
	b := newTestBuilder(chain)

	instructions, err := b.plan(context.Background(), source,
		[]Destination{{Address: destination, Percentage: 100}}, nil)
	require.NoError(t, err)

	// transfer, close, native sweep - no ATA creation.
	require.Len(t, instructions, 3)
	assert.Equal(t, uint64(7), transferCheckedAmount(t, instructions[0]))
}

func TestPlanSplitTokenShares(t *testing.T) {
	source := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	dests := []Destination{dest(60), dest(25), dest(15)}

	chain := &stubChain{
		lamports: 50_000,
		holdings: []client.TokenHolding{{
			Account:  solana.NewWallet().PublicKey(),
			Mint:     mint,
			Amount:   1000,
			Decimals: 6,
			UIAmount: 0.001,
		}},
		existing: map[solana.PublicKey]bool{},
	}
	payer := solana.NewWallet().PublicKey()
	b := newTestBuilder(chain)

	instructions, err := b.plan(context.Background(), source, dests, &payer)
	require.NoError(t, err)

	var transfers []uint64
	var closes, creates int
	var nativeTotal uint64
	for _, ix := range instructions {
		program, kind := ixKind(t, ix)
		switch {
		case program.Equals(solana.SPLAssociatedTokenAccountProgramID):
			creates++
		case program.Equals(solana.TokenProgramID) && kind == tokenIxTransferChecked:
			transfers = append(transfers, transferCheckedAmount(t, ix))
		case program.Equals(solana.TokenProgramID) && kind == tokenIxCloseAccount:
			closes++
		case program.Equals(solana.SystemProgramID):
			nativeTotal += systemTransferLamports(t, ix)
		}
	}

	assert.Equal(t, []uint64{600, 250, 150}, transfers)
	assert.Equal(t, 3, creates)
	assert.Equal(t, 1, closes, "source token account closed exactly once")
	// External payer: nothing reserved, the full native balance splits.
	assert.Equal(t, uint64(50_000), nativeTotal)
}

func TestPlanSplitUnwrapMergesIntoNativePool(t *testing.T) {
	source := solana.NewWallet().PublicKey()
	dests := []Destination{dest(50), dest(50)}
	payer := solana.NewWallet().PublicKey()

	chain := &stubChain{
		lamports: 1000,
		holdings: []client.TokenHolding{wsolHolding(9000)},
	}
	b := newTestBuilder(chain)

	instructions, err := b.plan(context.Background(), source, dests, &payer)
	require.NoError(t, err)

	// Close-to-source unwrap, then two native transfers covering balance
	// plus unwrap proceeds.
	require.Len(t, instructions, 3)

	program, kind := ixKind(t, instructions[0])
	assert.Equal(t, solana.TokenProgramID, program)
	assert.Equal(t, byte(tokenIxCloseAccount), kind)

	assert.Equal(t, uint64(5000), systemTransferLamports(t, instructions[1]))
	assert.Equal(t, uint64(5000), systemTransferLamports(t, instructions[2]))
}

func TestPlanSkipsZeroShares(t *testing.T) {
	source := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	dests := []Destination{dest(1), dest(99)}
	payer := solana.NewWallet().PublicKey()

	chain := &stubChain{
		holdings: []client.TokenHolding{{
			Account:  solana.NewWallet().PublicKey(),
			Mint:     mint,
			Amount:   50,
			Decimals: 2,
			UIAmount: 0.5,
		}},
		existing: map[solana.PublicKey]bool{},
	}
	b := newTestBuilder(chain)

	instructions, err := b.plan(context.Background(), source, dests, &payer)
	require.NoError(t, err)

	var transfers []uint64
	for _, ix := range instructions {
		program, kind := ixKind(t, ix)
		if program.Equals(solana.TokenProgramID) && kind == tokenIxTransferChecked {
			transfers = append(transfers, transferCheckedAmount(t, ix))
		}
	}
	// The 1% share floors to zero and is skipped; 99% destination gets all 50.
	assert.Equal(t, []uint64{50}, transfers)
}

func TestClaimAllSignsAndSubmits(t *testing.T) {
	disposable := solana.NewWallet().PrivateKey
	destination := solana.NewWallet().PublicKey()

	chain := &stubChain{lamports: 2_000_000}
	b := newTestBuilder(chain)

	sig, err := b.ClaimAll(context.Background(), disposable, destination, nil)
	require.NoError(t, err)
	assert.NotEqual(t, solana.Signature{}, sig)

	require.NotNil(t, chain.sentTx)
	assert.Equal(t, disposable.PublicKey(), chain.sentTx.Message.AccountKeys[0], "disposable key is fee payer")
	require.Len(t, chain.sentTx.Signatures, 1)
	assert.NotEqual(t, solana.Signature{}, chain.sentTx.Signatures[0])
}

func TestClaimAllWithExternalFeePayer(t *testing.T) {
	disposable := solana.NewWallet().PrivateKey
	destination := solana.NewWallet().PublicKey()
	payerKey := solana.NewWallet().PrivateKey

	payer, err := NewLocalFeePayer(payerKey)
	require.NoError(t, err)

	chain := &stubChain{lamports: 2_000_000}
	b := newTestBuilder(chain)

	_, err = b.ClaimAll(context.Background(), disposable, destination, payer)
	require.NoError(t, err)

	require.NotNil(t, chain.sentTx)
	assert.Equal(t, payerKey.PublicKey(), chain.sentTx.Message.AccountKeys[0], "external payer is fee payer")

	// Both required signatures present and populated.
	require.Len(t, chain.sentTx.Signatures, 2)
	for _, s := range chain.sentTx.Signatures {
		assert.NotEqual(t, solana.Signature{}, s)
	}
}
