package tracker

import (
	"time"

	"github.com/lcalzada-xor/wifitrack/internal/core/domain"
)

// ScanResultUpdater keeps a rolling, deduplicated cache of recent scan
// observations. Two observations of the same physical BSS (same SSID and
// BSSID) collapse to the newest one. The updater has no opinion on entry
// identity; callers group the returned snapshot by key.
type ScanResultUpdater struct {
	results   map[string]domain.Observation
	retention time.Duration
	clock     func() time.Time
}

// NewScanResultUpdater creates an updater that forgets observations older
// than retention on the next Update. retention must cover the widest age
// window callers will ever query. clock is injected for tests; nil means
// time.Now.
func NewScanResultUpdater(retention time.Duration, clock func() time.Time) *ScanResultUpdater {
	if clock == nil {
		clock = time.Now
	}
	return &ScanResultUpdater{
		results:   make(map[string]domain.Observation),
		retention: retention,
		clock:     clock,
	}
}

func observationKey(o domain.Observation) string {
	return o.SSID + "/" + o.BSSID
}

// Update merges a new observation batch into the cache and expires
// observations past the retention horizon. Newer timestamps win; stale
// duplicates are ignored.
func (u *ScanResultUpdater) Update(observations []domain.Observation) {
	for _, o := range observations {
		if !o.Valid() {
			continue
		}
		k := observationKey(o)
		if existing, ok := u.results[k]; ok && existing.Timestamp.After(o.Timestamp) {
			continue
		}
		u.results[k] = o
	}

	horizon := u.clock().Add(-u.retention)
	for k, o := range u.results {
		if !o.Timestamp.After(horizon) {
			delete(u.results, k)
		}
	}
}

// Results returns a snapshot of all observations strictly newer than
// now - maxAge, in arbitrary order. Side-effect-free, so a caller may query
// a widened window after a narrow one within the same retention horizon.
func (u *ScanResultUpdater) Results(maxAge time.Duration) []domain.Observation {
	cutoff := u.clock().Add(-maxAge)
	out := make([]domain.Observation, 0, len(u.results))
	for _, o := range u.results {
		if o.Timestamp.After(cutoff) {
			out = append(out, o)
		}
	}
	return out
}
