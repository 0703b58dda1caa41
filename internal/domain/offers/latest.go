package offers

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is the cancellation cause of a request replaced by a newer one.
var ErrSuperseded = errors.New("superseded by a newer request")

// LatestGate keeps at most one in-flight request per key. Starting a new
// request for a key cancels the previous one, so only the latest result for a
// key is ever delivered.
type LatestGate struct {
	mu       sync.Mutex
	seq      uint64
	inflight map[string]gateEntry
}

type gateEntry struct {
	id     uint64
	cancel context.CancelCauseFunc
}

func NewLatestGate() *LatestGate {
	return &LatestGate{inflight: make(map[string]gateEntry)}
}

// Begin registers a request for key and returns its context. The returned
// func must be called when the request finishes.
func (g *LatestGate) Begin(parent context.Context, key string) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(parent)

	g.mu.Lock()
	if prev, ok := g.inflight[key]; ok {
		prev.cancel(ErrSuperseded)
	}
	g.seq++
	id := g.seq
	g.inflight[key] = gateEntry{id: id, cancel: cancel}
	g.mu.Unlock()

	return ctx, func() {
		g.mu.Lock()
		if cur, ok := g.inflight[key]; ok && cur.id == id {
			delete(g.inflight, key)
		}
		g.mu.Unlock()
		cancel(nil)
	}
}

// Cancel aborts whatever is in flight for key.
func (g *LatestGate) Cancel(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if cur, ok := g.inflight[key]; ok {
		cur.cancel(ErrSuperseded)
		delete(g.inflight, key)
	}
}

// InFlight returns the number of keys with a running request.
func (g *LatestGate) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inflight)
}

// Superseded reports whether ctx was cancelled by a newer request.
func Superseded(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), ErrSuperseded)
}
