package tiercache

// Stats is a point-in-time snapshot of the engine's counters.
//
// A full miss increments both HotMisses and WarmMisses; a warm hit increments
// only WarmHits. Evictions counts entries removed from a tier under capacity
// pressure, whether they were demoted or discarded. Invalidations counts
// tier-removals performed by Invalidate.
type Stats struct {
	HotHits    uint64
	HotMisses  uint64
	WarmHits   uint64
	WarmMisses uint64

	Evictions     uint64
	Invalidations uint64

	HotSize  int
	WarmSize int

	// Derived ratios; zero when the denominator is zero.
	HotHitRate     float64
	WarmHitRate    float64
	OverallHitRate float64
}

func hitRate(hits, misses uint64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
