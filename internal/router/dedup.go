package router

import (
	"sync"
	"time"
)

// dedupMaxTrackedKeys bounds memory use the same way
// internal/channels.WebhookRateLimiter does for its own TTL set.
const dedupMaxTrackedKeys = 4096

// Dedup suppresses duplicate deliveries of the same (provider, messageID)
// pair within a short TTL window, per spec.md §4.6 ("Channel adapters can
// deliver the same platform event multiple times (retries, reconnects)").
// Safe for concurrent use.
type Dedup struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[string]time.Time
}

// NewDedup returns a Dedup with the given TTL window.
func NewDedup(ttl time.Duration) *Dedup {
	return &Dedup{ttl: ttl, seen: make(map[string]time.Time)}
}

func dedupKey(provider, messageID string) string {
	return provider + "\x00" + messageID
}

// Seen records (provider, messageID) and reports whether it was already
// seen within the TTL window. The first call for a given pair returns
// false (not a duplicate); subsequent calls within the window return true
// until the window elapses, after which the pair is treated as new again.
func (d *Dedup) Seen(provider, messageID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	key := dedupKey(provider, messageID)

	if len(d.seen) >= dedupMaxTrackedKeys {
		for k, t := range d.seen {
			if now.Sub(t) >= d.ttl {
				delete(d.seen, k)
			}
		}
		for len(d.seen) >= dedupMaxTrackedKeys {
			for k := range d.seen {
				delete(d.seen, k)
				break
			}
		}
	}

	last, ok := d.seen[key]
	if ok && now.Sub(last) < d.ttl {
		return true
	}
	d.seen[key] = now
	return false
}
