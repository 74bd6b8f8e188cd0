package tiercache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/singleflight"

	c "github.com/unkn0wn-root/tiercache/codec"
	"github.com/unkn0wn-root/tiercache/internal/tier"
)

const (
	defaultHotCapacity  = 10_000
	defaultWarmCapacity = 50_000
	defaultTTL          = 5 * time.Minute
)

// engine owns both tiers. One mutex covers every operation; each public call
// is a critical section, so the key set and access index can never be
// observed half-updated. Contention is bounded by the eviction batch size.
type engine[V any] struct {
	codec c.Codec[V]
	clk   clock.Clock
	log   Logger
	hooks Hooks

	defaultTTL time.Duration

	mu   sync.Mutex
	hot  *tier.Tier[V]
	warm *tier.Tier[[]byte]

	hotHits, hotMisses   uint64
	warmHits, warmMisses uint64
	evictions            uint64
	invalidations        uint64

	group singleflight.Group

	// optional expiry sweep
	ticker    *clock.Ticker
	stopCh    chan struct{}
	closeWg   sync.WaitGroup
	closeOnce sync.Once
}

func newEngine[V any](opts Options[V]) (*engine[V], error) {
	if opts.Codec == nil {
		return nil, fmt.Errorf("tiercache: codec is required")
	}

	e := &engine[V]{codec: opts.Codec}

	// defaults; a negative capacity stays negative and disables the tier
	e.clk = coalesce[clock.Clock](opts.Clock, clock.New())
	e.log = coalesce[Logger](opts.Logger, NopLogger{})
	e.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	e.defaultTTL = coalesce[time.Duration](opts.DefaultTTL, defaultTTL)
	e.hot = tier.New[V](coalesce[int](opts.HotCapacity, defaultHotCapacity))
	e.warm = tier.New[[]byte](coalesce[int](opts.WarmCapacity, defaultWarmCapacity))

	if opts.SweepInterval > 0 {
		e.ticker = e.clk.Ticker(opts.SweepInterval)
		e.stopCh = make(chan struct{})
		e.closeWg.Add(1)
		go e.sweepLoop()
	}
	return e, nil
}

func (e *engine[V]) Close(_ context.Context) error {
	e.closeOnce.Do(func() {
		if e.stopCh != nil {
			close(e.stopCh)
			e.closeWg.Wait()
			e.ticker.Stop()
		}
	})
	return nil
}

func (e *engine[V]) Get(key string) (V, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clk.Now()
	if ent, ok := e.hot.Lookup(key); ok {
		if !ent.Expired(now) {
			e.hot.Touch(key, now)
			ent.AccessCount++
			e.hotHits++
			return ent.Payload, true
		}
		// lazy expiry; fall through to warm
		e.hot.Remove(key)
		e.hooks.Discarded(key, ReasonExpired)
	}

	if ent, ok := e.warm.Lookup(key); ok {
		switch {
		case ent.Expired(now):
			e.warm.Remove(key)
			e.hooks.Discarded(key, ReasonExpired)
		default:
			v, err := e.codec.Decode(ent.Payload)
			if err != nil {
				// self-heal undecodable payload; treat as a full miss
				e.warm.Remove(key)
				e.hooks.Discarded(key, ReasonDecodeError)
				e.log.Warn("dropped undecodable warm entry", Fields{"key": key, "err": err})
			} else {
				e.warmHits++
				e.promote(key, ent, v, now)
				return v, true
			}
		}
	}

	e.hotMisses++
	e.warmMisses++
	var zero V
	return zero, false
}

func (e *engine[V]) Set(key string, value V) {
	e.set(key, value, e.defaultTTL)
}

// SetTTL stores value with an explicit TTL. Unlike Set, a non-positive ttl is
// honored as given: the entry is born expired and unreadable.
func (e *engine[V]) SetTTL(key string, value V, ttl time.Duration) {
	e.set(key, value, ttl)
}

func (e *engine[V]) set(key string, value V, ttl time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clk.Now()
	ent := &tier.Entry[V]{
		Payload:     value,
		ExpiresAt:   now.Add(ttl),
		CreatedAt:   now,
		AccessCount: 1,
	}

	// a set always starts the key fresh in the hot tier; removing both copies
	// first keeps single-tier membership even when eviction runs below
	e.hot.Remove(key)
	e.warm.Remove(key)

	if e.hot.Capacity() < 1 {
		// hot tier disabled: the insertion immediately evicts
		e.evictions++
		e.demote(key, ent, now)
		return
	}
	e.ensureHotSpace()
	e.hot.Put(key, ent, now)
}

func (e *engine[V]) GetOrLoad(ctx context.Context, key string, load LoadFunc[V]) (V, error) {
	if v, ok := e.Get(key); ok {
		return v, nil
	}
	v, err, _ := e.group.Do(key, func() (any, error) {
		// another caller may have loaded while we queued
		if v, ok := e.Get(key); ok {
			return v, nil
		}
		val, err := load(ctx)
		if err != nil {
			return nil, err
		}
		e.Set(key, val)
		return val, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

func (e *engine[V]) Invalidate(keys []string, pattern string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	removed := 0
	switch {
	case len(keys) > 0:
		// a key transiently present in both tiers counts once per tier
		for _, k := range keys {
			if e.hot.Remove(k) {
				removed++
			}
			if e.warm.Remove(k) {
				removed++
			}
		}
	case pattern != "":
		for _, k := range e.hot.Match(pattern) {
			e.hot.Remove(k)
			removed++
		}
		for _, k := range e.warm.Match(pattern) {
			e.warm.Remove(k)
			removed++
		}
	}

	e.invalidations += uint64(removed)
	if removed > 0 {
		e.log.Debug("invalidated entries", Fields{"removed": removed, "pattern": pattern})
	}
	return removed
}

func (e *engine[V]) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Stats{
		HotHits:        e.hotHits,
		HotMisses:      e.hotMisses,
		WarmHits:       e.warmHits,
		WarmMisses:     e.warmMisses,
		Evictions:      e.evictions,
		Invalidations:  e.invalidations,
		HotSize:        e.hot.Len(),
		WarmSize:       e.warm.Len(),
		HotHitRate:     hitRate(e.hotHits, e.hotMisses),
		WarmHitRate:    hitRate(e.warmHits, e.warmMisses),
		OverallHitRate: hitRate(e.hotHits+e.warmHits, e.hotMisses+e.warmMisses),
	}
}

// promote moves a warm hit into the hot tier. The original expiry is kept:
// promotion is not a TTL refresh.
func (e *engine[V]) promote(key string, ent *tier.Entry[[]byte], v V, now time.Time) {
	if e.hot.Capacity() < 1 {
		// nowhere to promote to; serve from warm and record the access there
		e.warm.Touch(key, now)
		ent.AccessCount++
		return
	}
	e.warm.Remove(key)
	e.ensureHotSpace()
	e.hot.Put(key, &tier.Entry[V]{
		Payload:     v,
		ExpiresAt:   ent.ExpiresAt,
		CreatedAt:   ent.CreatedAt,
		AccessCount: ent.AccessCount + 1,
	}, now)
	e.hooks.Promoted(key)
}

// ensureHotSpace evicts the least-recently-used batch when the hot tier is at
// capacity. Batch size is a quarter of capacity (never less than one), so a
// burst of inserts does not evict one-by-one.
func (e *engine[V]) ensureHotSpace() {
	if !e.hot.Full() {
		return
	}
	batch := e.hot.Capacity() / 4
	if batch < 1 {
		batch = 1
	}
	now := e.clk.Now()
	for _, k := range e.hot.LRUKeys(batch) {
		ent, ok := e.hot.Take(k)
		if !ok {
			continue
		}
		e.evictions++
		if ent.Expired(now) {
			// no point demoting a dead entry
			e.hooks.Discarded(k, ReasonExpired)
			continue
		}
		e.demote(k, ent, now)
	}
}

// demote inserts a (still live) hot entry into the warm tier, encoding its
// payload through the codec.
func (e *engine[V]) demote(key string, ent *tier.Entry[V], now time.Time) {
	if e.warm.Capacity() < 1 {
		e.hooks.Discarded(key, ReasonWarmEvict)
		return
	}
	payload, err := e.codec.Encode(ent.Payload)
	if err != nil {
		e.hooks.Discarded(key, ReasonEncodeError)
		e.log.Warn("dropped unencodable entry on demotion", Fields{"key": key, "err": err})
		return
	}
	e.ensureWarmSpace()
	e.warm.Put(key, &tier.Entry[[]byte]{
		Payload:     payload,
		ExpiresAt:   ent.ExpiresAt,
		CreatedAt:   ent.CreatedAt,
		AccessCount: ent.AccessCount,
	}, now)
	e.hooks.Demoted(key)
}

// ensureWarmSpace applies the same LRU policy to the warm tier. Evicted
// entries are discarded for good; there is no third tier.
func (e *engine[V]) ensureWarmSpace() {
	if !e.warm.Full() {
		return
	}
	batch := e.warm.Capacity() / 4
	if batch < 1 {
		batch = 1
	}
	for _, k := range e.warm.LRUKeys(batch) {
		e.warm.Remove(k)
		e.evictions++
		e.hooks.Discarded(k, ReasonWarmEvict)
	}
}

func (e *engine[V]) sweepLoop() {
	defer e.closeWg.Done()
	for {
		select {
		case <-e.ticker.C:
			e.sweep()
		case <-e.stopCh:
			return
		}
	}
}

func (e *engine[V]) sweep() {
	now := e.clk.Now()
	e.mu.Lock()
	hot := e.hot.RemoveExpired(now)
	warm := e.warm.RemoveExpired(now)
	e.mu.Unlock()

	if hot > 0 || warm > 0 {
		e.hooks.Swept(hot, warm)
		e.log.Debug("sweep removed expired entries", Fields{"hot": hot, "warm": warm})
	}
}
