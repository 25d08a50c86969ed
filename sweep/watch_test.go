package sweep

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWatcherDeliversBalanceChanges(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var sub map[string]any
		if err := conn.ReadJSON(&sub); err != nil {
			return
		}
		assert.Equal(t, "accountSubscribe", sub["method"])

		// Subscription confirmation, then one account notification.
		conn.WriteJSON(map[string]any{"jsonrpc": "2.0", "id": 1, "result": 42})
		conn.WriteJSON(map[string]any{
			"jsonrpc": "2.0",
			"method":  "accountNotification",
			"params": map[string]any{
				"result": map[string]any{
					"value": map[string]any{"lamports": 777},
				},
				"subscription": 42,
			},
		})

		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWatcher("ws"+strings.TrimPrefix(srv.URL, "http"), zap.NewNop())
	updates, err := w.Watch(ctx, solana.NewWallet().PublicKey())
	require.NoError(t, err)

	select {
	case lamports := <-updates:
		assert.Equal(t, uint64(777), lamports)
	case <-time.After(2 * time.Second):
		t.Fatal("no balance update received")
	}

	// Cancellation closes the stream.
	cancel()
	select {
	case _, open := <-updates:
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("updates channel not closed after cancel")
	}
}

func TestWatcherServerCloseEndsWatchWithoutLeak(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		var sub map[string]any
		if err := conn.ReadJSON(&sub); err != nil {
			return
		}
		conn.WriteJSON(map[string]any{"jsonrpc": "2.0", "id": 1, "result": 42})
		// Hang up from the server side while the client's ctx stays alive.
		conn.Close()
	}))
	defer srv.Close()

	before := runtime.NumGoroutine()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWatcher("ws"+strings.TrimPrefix(srv.URL, "http"), zap.NewNop())
	updates, err := w.Watch(ctx, solana.NewWallet().PublicKey())
	require.NoError(t, err)

	select {
	case _, open := <-updates:
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("updates channel not closed after server hangup")
	}

	// Both the reader and its cancellation helper must be gone even though
	// ctx was never cancelled.
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, 2*time.Second, 10*time.Millisecond, "goroutines left behind after server hangup")
}

func TestWatcherDialFailure(t *testing.T) {
	w := NewWatcher("ws://127.0.0.1:1", zap.NewNop())
	_, err := w.Watch(context.Background(), solana.NewWallet().PublicKey())
	assert.Error(t, err)
}
