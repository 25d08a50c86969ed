package sweep

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Watcher is a push-based companion to the Poller: it subscribes to account
// changes over the RPC websocket and signals when the watched address's
// lamport balance moves. Balance detail still comes from a fresh read - a
// notification is a hint, not a snapshot.
type Watcher struct {
	endpoint string
	log      *zap.Logger
}

// NewWatcher creates a watcher for a ws:// or wss:// RPC endpoint.
func NewWatcher(endpoint string, log *zap.Logger) *Watcher {
	return &Watcher{endpoint: endpoint, log: log}
}

type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type wsMessage struct {
	ID     uint64          `json:"id"`
	Method string          `json:"method"`
	Result json.RawMessage `json:"result"`
	Params struct {
		Result struct {
			Value struct {
				Lamports uint64 `json:"lamports"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Watch subscribes to the address and sends its lamport balance on every
// account change until ctx is cancelled. The returned channel is closed when
// the subscription ends.
func (w *Watcher) Watch(ctx context.Context, address solana.PublicKey) (<-chan uint64, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, w.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}

	sub := wsRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "accountSubscribe",
		Params: []interface{}{
			address.String(),
			map[string]string{"encoding": "base64", "commitment": "confirmed"},
		},
	}
	if err := conn.WriteJSON(sub); err != nil {
		conn.Close()
		return nil, fmt.Errorf("accountSubscribe: %w", err)
	}

	updates := make(chan uint64, 1)
	done := make(chan struct{})

	// Unblock ReadJSON on cancellation. Exits with the read loop, so a
	// server-side close does not strand it on a long-lived ctx.
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	go func() {
		defer close(updates)
		defer conn.Close()
		defer close(done)

		for {
			var msg wsMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if ctx.Err() == nil {
					w.log.Warn("account subscription closed", zap.String("address", address.String()), zap.Error(err))
				}
				return
			}

			if msg.Error != nil {
				w.log.Warn("subscription error",
					zap.Int("code", msg.Error.Code),
					zap.String("message", msg.Error.Message))
				return
			}

			if msg.Method != "accountNotification" {
				continue
			}

			select {
			case updates <- msg.Params.Result.Value.Lamports:
			default:
				// Drop when the consumer lags; a fresh read follows anyway.
			}
		}
	}()

	return updates, nil
}
