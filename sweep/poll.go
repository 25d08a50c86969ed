package sweep

import (
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// DefaultPollInterval is how often balances are re-read while waiting for
// funds to arrive.
const DefaultPollInterval = 5 * time.Second

// Poller repeatedly re-reads an address's balances until cancelled. One loop
// per Poller: starting a new loop cancels the previous one.
type Poller struct {
	reader   *Reader
	interval time.Duration
	log      *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewPoller creates a poller over the reader. A non-positive interval falls
// back to the default.
func NewPoller(reader *Reader, interval time.Duration, log *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		reader:   reader,
		interval: interval,
		log:      log,
	}
}

// Start begins polling immediately and invokes onUpdate with every snapshot
// read. Individual read failures are logged and swallowed - a failed poll
// does not stop the loop. The returned function cancels the loop.
func (p *Poller) Start(address solana.PublicKey, onUpdate func(*Snapshot)) (cancel func()) {
	ctx, cancelCtx := context.WithCancel(context.Background())

	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.cancel = cancelCtx
	p.mu.Unlock()

	go p.loop(ctx, address, onUpdate)
	return cancelCtx
}

func (p *Poller) loop(ctx context.Context, address solana.PublicKey, onUpdate func(*Snapshot)) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		snapshot, err := p.reader.GetBalances(ctx, address)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.log.Warn("poll read failed", zap.String("address", address.String()), zap.Error(err))
		} else {
			onUpdate(snapshot)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
