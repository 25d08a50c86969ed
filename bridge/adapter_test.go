package bridge

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xvoidlabs/pridge/internal/client"
)

type stubWallet struct {
	allowance *big.Int
	receipts  map[common.Hash]uint64

	approved     *big.Int
	approveSpend common.Address
	sentTo       common.Address
	sentData     []byte
	sentValue    *big.Int
	sendErr      error
}

func (w *stubWallet) Address() common.Address {
	return common.HexToAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
}
func (w *stubWallet) ChainID() int64          { return 1 }

func (w *stubWallet) Allowance(ctx context.Context, token, spender common.Address) (*big.Int, error) {
	return w.allowance, nil
}

func (w *stubWallet) Approve(ctx context.Context, token, spender common.Address, amount *big.Int) (common.Hash, error) {
	w.approved = amount
	w.approveSpend = spender
	return common.HexToHash("0xa1"), nil
}

func (w *stubWallet) SendPayload(ctx context.Context, to common.Address, data []byte, value *big.Int) (common.Hash, error) {
	if w.sendErr != nil {
		return common.Hash{}, w.sendErr
	}
	w.sentTo = to
	w.sentData = data
	w.sentValue = value
	return common.HexToHash("0xb2"), nil
}

func (w *stubWallet) WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	status, ok := w.receipts[hash]
	if !ok {
		status = types.ReceiptStatusSuccessful
	}
	return &types.Receipt{Status: status, TxHash: hash}, nil
}

func executableQuote(value string) *client.Quote {
	q := &client.Quote{
		OrderID: "0xorder",
		Tx: client.TxPayload{
			To:    "0xeF4fB24aD0916217251F553c0596F8Edc630EB66",
			Data:  "0xdeadbeef",
			Value: value,
		},
	}
	q.Estimation.SrcChainTokenIn.Amount = "1000000"
	return q
}

func TestExecuteNativeToken(t *testing.T) {
	wallet := &stubWallet{}
	a := &Adapter{wallet: wallet, log: zap.NewNop()}

	hash, err := a.Execute(context.Background(), client.NativeToken, executableQuote("5000"))
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash("0xb2"), hash)

	// Native source: the allowance path is never touched.
	assert.Nil(t, wallet.approved)
	assert.Equal(t, common.HexToAddress("0xeF4fB24aD0916217251F553c0596F8Edc630EB66"), wallet.sentTo)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, wallet.sentData)
	assert.Equal(t, big.NewInt(5000), wallet.sentValue)
}

func TestExecuteERC20ApprovesWhenAllowanceShort(t *testing.T) {
	wallet := &stubWallet{allowance: big.NewInt(10)}
	a := &Adapter{wallet: wallet, log: zap.NewNop()}

	_, err := a.Execute(context.Background(),
		"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", executableQuote("0"))
	require.NoError(t, err)

	require.NotNil(t, wallet.approved)
	assert.Equal(t, maxApproval, wallet.approved, "unlimited approval requested")
	assert.Equal(t, common.HexToAddress("0xeF4fB24aD0916217251F553c0596F8Edc630EB66"), wallet.approveSpend,
		"payload target is the spender")
}

func TestExecuteERC20SkipsApprovalWhenCovered(t *testing.T) {
	wallet := &stubWallet{allowance: big.NewInt(2_000_000)}
	a := &Adapter{wallet: wallet, log: zap.NewNop()}

	_, err := a.Execute(context.Background(),
		"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", executableQuote("0"))
	require.NoError(t, err)
	assert.Nil(t, wallet.approved)
}

func TestExecuteFailedReceipt(t *testing.T) {
	wallet := &stubWallet{
		receipts: map[common.Hash]uint64{
			common.HexToHash("0xb2"): types.ReceiptStatusFailed,
		},
	}
	a := &Adapter{wallet: wallet, log: zap.NewNop()}

	hash, err := a.Execute(context.Background(), client.NativeToken, executableQuote("0"))
	assert.True(t, errors.Is(err, ErrTransactionFailed))
	assert.Equal(t, common.HexToHash("0xb2"), hash, "hash still reported for explorer lookup")
}

func TestExecutePassesThroughUserRejection(t *testing.T) {
	wallet := &stubWallet{sendErr: client.ErrUserRejected}
	a := &Adapter{wallet: wallet, log: zap.NewNop()}

	_, err := a.Execute(context.Background(), client.NativeToken, executableQuote("0"))
	assert.True(t, errors.Is(err, client.ErrUserRejected))
}

func TestExecuteRejectsEmptyPayload(t *testing.T) {
	a := &Adapter{wallet: &stubWallet{}, log: zap.NewNop()}

	_, err := a.Execute(context.Background(), client.NativeToken, nil)
	assert.Error(t, err)

	_, err = a.Execute(context.Background(), client.NativeToken, &client.Quote{})
	assert.Error(t, err)
}

func TestGetQuoteNilOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no route", http.StatusBadRequest)
	}))
	defer srv.Close()

	a := &Adapter{api: client.NewDeBridgeClient(srv.URL, zap.NewNop()), log: zap.NewNop()}
	assert.Nil(t, a.GetQuote(context.Background(), client.QuoteParams{}))
}

func TestCreateTransactionRequiresPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Valid quote body but no executable payload.
		fmt.Fprint(w, `{"orderId":"0xorder","estimation":{"srcChainTokenIn":{"amount":"1"}}}`)
	}))
	defer srv.Close()

	a := &Adapter{api: client.NewDeBridgeClient(srv.URL, zap.NewNop()), log: zap.NewNop()}
	assert.Nil(t, a.CreateTransaction(context.Background(), client.QuoteParams{}))
}

func TestChainCatalogue(t *testing.T) {
	c, ok := ChainByID(8453)
	require.True(t, ok)
	assert.Equal(t, "Base", c.Name)

	_, ok = ChainByID(99999)
	assert.False(t, ok)

	assert.Equal(t, "https://arbiscan.io/tx/0xabc", ExplorerTxURL(42161, "0xabc"))
	assert.Equal(t, "https://etherscan.io/tx/0xabc", ExplorerTxURL(99999, "0xabc"))
}

func TestTokenAddress(t *testing.T) {
	assert.Equal(t, "0xdAC17F958D2ee523a2206206994597C13D831ec7", TokenAddress("USDT", 1))
	assert.Equal(t, client.NativeToken, TokenAddress("NATIVE", 137))
	assert.Empty(t, TokenAddress("USDT", 8453), "no USDT deployment on Base")
	assert.Empty(t, TokenAddress("DOGE", 1))
}
