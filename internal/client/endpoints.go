package client

import (
	"errors"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// Cooldown between shared rotations. Prevents a burst of concurrent failures
// from spinning through the whole list faster than endpoints can recover.
const rotateCooldown = 2 * time.Second

// ErrAllEndpointsUnavailable is returned when every endpoint in the pool
// failed for a single call.
var ErrAllEndpointsUnavailable = errors.New("all RPC endpoints unavailable")

// Endpoints is an ordered pool of Solana read endpoints. A failing read walks
// the list starting at the shared index; the shared index itself advances at
// most once per cooldown window. Rotation is a best-effort optimization, not
// a correctness dependency.
type Endpoints struct {
	urls []string
	log  *zap.Logger

	mu         sync.Mutex
	index      int
	lastRotate time.Time
	clients    map[string]*rpc.Client
}

// NewEndpoints creates a pool over the ordered endpoint list.
func NewEndpoints(urls []string, log *zap.Logger) *Endpoints {
	return &Endpoints{
		urls:    urls,
		log:     log,
		clients: make(map[string]*rpc.Client, len(urls)),
	}
}

// Len returns the number of endpoints in the pool.
func (e *Endpoints) Len() int {
	return len(e.urls)
}

// Start returns the shared index a fallback walk should begin at.
func (e *Endpoints) Start() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index
}

// At returns an RPC client for position i in the rotation order. Clients are
// cached per URL.
func (e *Endpoints) At(i int) *rpc.Client {
	e.mu.Lock()
	defer e.mu.Unlock()

	url := e.urls[i%len(e.urls)]
	cl, ok := e.clients[url]
	if !ok {
		cl = rpc.New(url)
		e.clients[url] = cl
	}
	return cl
}

// URLAt returns the endpoint URL at position i in the rotation order.
func (e *Endpoints) URLAt(i int) string {
	return e.urls[i%len(e.urls)]
}

// Current returns an RPC client for the current shared endpoint.
func (e *Endpoints) Current() *rpc.Client {
	return e.At(e.Start())
}

// Rotate advances the shared index, unless a rotation happened within the
// cooldown window. Reports whether the pool actually rotated.
func (e *Endpoints) Rotate() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if time.Since(e.lastRotate) < rotateCooldown {
		return false
	}

	e.index++
	e.lastRotate = time.Now()
	e.log.Info("rotated RPC endpoint", zap.String("endpoint", e.urls[e.index%len(e.urls)]))
	return true
}
