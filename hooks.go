package tiercache

// Discard reasons passed to Hooks.Discarded.
const (
	ReasonExpired     = "expired"      // entry hit its TTL
	ReasonWarmEvict   = "warm_evict"   // pushed out of the warm tier for space
	ReasonEncodeError = "encode_error" // codec failed on demotion
	ReasonDecodeError = "decode_error" // codec failed on promotion (self-heal)
)

// Hooks are lightweight callbacks for high-signal tier events.
// Implementations MUST be cheap and non-blocking; the engine calls them
// while holding its lock. Wrap with hooks/async to offload.
type Hooks interface {
	// An entry moved warm -> hot on a warm-tier hit.
	Promoted(key string)

	// An entry moved hot -> warm under capacity pressure.
	Demoted(key string)

	// An entry left the cache without landing in another tier.
	Discarded(key, reason string)

	// A background sweep removed expired entries.
	Swept(hot, warm int)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) Promoted(string)          {}
func (NopHooks) Demoted(string)           {}
func (NopHooks) Discarded(string, string) {}
func (NopHooks) Swept(int, int)           {}
