package registry

import (
	"sync"
	"time"

	"github.com/okian/mela/pkg/metrics"
)

// snapshot is one parsed view of the spreadsheet.
type snapshot struct {
	headers  []string
	byRegNo  map[string]int // regNo -> index into rows
	rows     []parsedRow
	events   []string // unique event names in first-seen row order
	loadedAt time.Time
}

// cache holds the current snapshot with a TTL. Every write path must call
// Invalidate; the TTL only covers edits made behind the service's back
// (someone editing the spreadsheet directly).
type cache struct {
	mu  sync.Mutex
	ttl time.Duration
	cur *snapshot
}

func newCache(ttl time.Duration) *cache {
	return &cache{ttl: ttl}
}

// get returns the cached snapshot, or nil when absent or expired.
func (c *cache) get() *snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur == nil || time.Since(c.cur.loadedAt) > c.ttl {
		metrics.RecordCacheMiss()
		return nil
	}
	metrics.RecordCacheHit()
	return c.cur
}

func (c *cache) put(s *snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = s
}

// Invalidate drops the cached snapshot. Called on every write path.
func (c *cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = nil
}
