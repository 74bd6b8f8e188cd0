// Package tiercache implements a single-process, two-tier cache with TTL
// expiry and LRU demotion. The hot tier holds live values and is checked
// first; the warm tier holds codec-encoded payloads and backs hot-tier
// overflow. A warm hit promotes the entry back into hot with its original
// expiry intact.
//
// Components:
//   - Codec[V]: (de)serializes V <-> []byte for warm-tier storage.
//   - Logger: pluggable structured logging (zap/logrus/slog adapters).
//   - Hooks: cheap callbacks for promotion/demotion/discard events.
//
// Invariants:
//   - a key lives in at most one tier at any instant
//   - a tier never exceeds its configured capacity
//   - an expired entry is never returned, even before physical removal
//
// Eviction removes the least-recently-used quarter of a full tier, ordered by
// last access (key order on ties, so the batch is deterministic). Hot-tier
// evictees that are still live demote into warm; warm-tier evictees are gone.
//
// Expiry is checked lazily on read. An optional SweepInterval adds a
// background pass for proactive cleanup; correctness never depends on it.
package tiercache
