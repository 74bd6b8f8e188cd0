package tiercache

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	c "github.com/unkn0wn-root/tiercache/codec"
)

// LoadFunc produces the value for a key on a cache miss. It may block on I/O;
// the context is the caller's.
type LoadFunc[V any] func(ctx context.Context) (V, error)

// Cache is the public surface of the two-tier engine. V is the caller's value
// type. A miss is (zero, false), never an error.
type Cache[V any] interface {
	// Get returns the cached value for key, promoting a warm-tier hit into
	// the hot tier. Expired entries are removed lazily and reported absent.
	Get(key string) (V, bool)

	// Set inserts value into the hot tier with the default TTL, replacing
	// any existing copy in either tier.
	Set(key string, value V)

	// SetTTL is Set with an explicit TTL. A TTL of zero or less stores an
	// entry that is already expired: the next Get removes it and misses.
	SetTTL(key string, value V, ttl time.Duration)

	// GetOrLoad returns the cached value or runs load to produce it, storing
	// the result with the default TTL. Concurrent callers for the same key
	// share one load. Load errors are returned and never cached.
	GetOrLoad(ctx context.Context, key string, load LoadFunc[V]) (V, error)

	// Invalidate removes entries from both tiers and returns how many
	// tier-removals happened. Exact keys take precedence over pattern;
	// pattern matches by substring. With neither, nothing is removed.
	Invalidate(keys []string, pattern string) int

	// Stats returns a snapshot of counters, sizes and hit rates.
	Stats() Stats

	// Close stops the optional sweep loop. Safe to call more than once.
	Close(ctx context.Context) error
}

// Options tune the engine. Only Codec is required; zero values take defaults.
// A negative capacity disables that tier: insertions aimed at it are
// immediately demoted (hot) or discarded (warm).
type Options[V any] struct {
	// Required. Warm-tier entries are stored codec-encoded; demotion encodes
	// and promotion decodes, so warm memory is bounded by payload bytes.
	Codec c.Codec[V]

	HotCapacity  int           // 0 => 10_000
	WarmCapacity int           // 0 => 50_000
	DefaultTTL   time.Duration // 0 => 5m

	// SweepInterval enables a background pass that removes expired entries
	// proactively. Zero disables it; expiry stays correct either way because
	// reads check it lazily.
	SweepInterval time.Duration

	Clock  clock.Clock // nil => wall clock; tests inject clock.NewMock()
	Logger Logger      // nil => NopLogger
	Hooks  Hooks       // nil => NopHooks
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newEngine[V](opts)
}
