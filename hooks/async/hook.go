// usage:
//
// import (
//
//	"log/slog"
//
//	"github.com/unkn0wn-root/tiercache"
//	"github.com/unkn0wn-root/tiercache/codec"
//	"github.com/unkn0wn-root/tiercache/hooks/async"
//	"github.com/unkn0wn-root/tiercache/loghooks"
//
// )
//
//	raw := loghooks.New(slog.Default(), loghooks.Options{
//	    DemoteEvery:  100, // sample logs: ~every 100th demotion
//	    DiscardEvery: 1,   // log every discard
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
//	cache, _ := tiercache.New[User](tiercache.Options[User]{
//	    Codec: codec.JSON[User]{},
//	    Hooks: hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/tiercache"
)

// Hooks forwards events to an inner tiercache.Hooks on worker goroutines.
// The engine calls hooks while holding its lock, so anything slow (logging,
// metrics export) should go through this wrapper. Events are dropped when the
// queue is full rather than blocking the cache.
type Hooks struct {
	inner tiercache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ tiercache.Hooks = (*Hooks)(nil)

func New(inner tiercache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) Promoted(k string)     { h.try(func() { h.inner.Promoted(k) }) }
func (h *Hooks) Demoted(k string)      { h.try(func() { h.inner.Demoted(k) }) }
func (h *Hooks) Discarded(k, r string) { h.try(func() { h.inner.Discarded(k, r) }) }
func (h *Hooks) Swept(hot, warm int)   { h.try(func() { h.inner.Swept(hot, warm) }) }
