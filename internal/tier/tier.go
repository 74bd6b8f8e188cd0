// Package tier implements the bounded key/entry store used for each cache level.
//
// A Tier keeps the entry map and a parallel last-access index. The index is
// separate so a read-hit only rewrites one timestamp and never touches the
// entry itself. Tiers hold no locks; the engine serializes all access.
package tier

import (
	"sort"
	"strings"
	"time"
)

// Entry is a single cached record. Payload is the tier's storage shape:
// live values in the hot tier, codec-encoded bytes in the warm tier.
type Entry[P any] struct {
	Payload     P
	ExpiresAt   time.Time
	CreatedAt   time.Time
	AccessCount uint64
}

// Expired reports whether the entry is logically absent at now.
// An entry expires the instant now reaches ExpiresAt.
func (e *Entry[P]) Expired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}

// Tier is a capacity-bounded map of entries. A capacity below one means the
// tier stores nothing; callers must divert or discard before Put.
type Tier[P any] struct {
	capacity int
	entries  map[string]*Entry[P]
	access   map[string]time.Time
}

func New[P any](capacity int) *Tier[P] {
	return &Tier[P]{
		capacity: capacity,
		entries:  make(map[string]*Entry[P]),
		access:   make(map[string]time.Time),
	}
}

func (t *Tier[P]) Capacity() int { return t.capacity }

func (t *Tier[P]) Len() int { return len(t.entries) }

// Full reports whether an insertion of a new key needs eviction first.
func (t *Tier[P]) Full() bool {
	return t.capacity >= 1 && len(t.entries) >= t.capacity
}

func (t *Tier[P]) Lookup(key string) (*Entry[P], bool) {
	e, ok := t.entries[key]
	return e, ok
}

func (t *Tier[P]) Contains(key string) bool {
	_, ok := t.entries[key]
	return ok
}

// Put stores e under key and stamps its last access. The caller is
// responsible for making room first.
func (t *Tier[P]) Put(key string, e *Entry[P], now time.Time) {
	t.entries[key] = e
	t.access[key] = now
}

// Touch refreshes the last-access timestamp of an existing key.
func (t *Tier[P]) Touch(key string, now time.Time) {
	if _, ok := t.entries[key]; ok {
		t.access[key] = now
	}
}

// Remove deletes key from both maps and reports whether it was present.
func (t *Tier[P]) Remove(key string) bool {
	if _, ok := t.entries[key]; !ok {
		return false
	}
	delete(t.entries, key)
	delete(t.access, key)
	return true
}

// Take removes key and returns its entry.
func (t *Tier[P]) Take(key string) (*Entry[P], bool) {
	e, ok := t.entries[key]
	if !ok {
		return nil, false
	}
	delete(t.entries, key)
	delete(t.access, key)
	return e, true
}

// LRUKeys returns up to n keys in eviction order: ascending last-access time,
// ascending key on equal timestamps. The tie-break keeps eviction
// deterministic when many entries share a timestamp.
func (t *Tier[P]) LRUKeys(n int) []string {
	if n <= 0 || len(t.entries) == 0 {
		return nil
	}
	keys := make([]string, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ai, aj := t.access[keys[i]], t.access[keys[j]]
		if ai.Equal(aj) {
			return keys[i] < keys[j]
		}
		return ai.Before(aj)
	})
	if n < len(keys) {
		keys = keys[:n]
	}
	return keys
}

// Match returns all keys containing substr.
func (t *Tier[P]) Match(substr string) []string {
	var out []string
	for k := range t.entries {
		if strings.Contains(k, substr) {
			out = append(out, k)
		}
	}
	return out
}

// RemoveExpired drops every entry expired at now and returns how many.
func (t *Tier[P]) RemoveExpired(now time.Time) int {
	removed := 0
	for k, e := range t.entries {
		if e.Expired(now) {
			delete(t.entries, k)
			delete(t.access, k)
			removed++
		}
	}
	return removed
}
