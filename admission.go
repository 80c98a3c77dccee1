// admission.go: W-TinyLFU admission cache

package cacheme

import (
	"sync"
	"time"
)

// admissionCache composes the window, the SLRU main store and the
// frequency sketch into the W-TinyLFU policy described in the design: every
// new key enters the window; once the window is full, its evictee competes
// against the SLRU's current victim for a spot, the sketch breaking the
// tie. It backs the local (in-process) storage tier.
//
// Not reentrant: every exported method takes mu, matching the single
// "one task at a time" assumption the design calls out for the admission
// cache specifically.
type admissionCache struct {
	mu       sync.Mutex
	arena    *arena
	index    map[string]int
	window   *admissionWindow
	slru     *segmentedLRU
	sketch   *countMinSketch
	total    int
	evictions int64
}

// newAdmissionCache builds a W-TinyLFU cache sized for roughly `total`
// resident keys: 1% (minimum 1) goes to the window, the remainder to the
// SLRU, split 80/20 between protected and probation.
func newAdmissionCache(total int) *admissionCache {
	if total < 1 {
		total = 1
	}
	windowCap := total / 100
	if windowCap < 1 {
		windowCap = 1
	}
	slruCap := total - windowCap
	if slruCap < 1 {
		slruCap = 1
	}
	a := newArena(total)
	index := make(map[string]int, total)
	return &admissionCache{
		arena:  a,
		index:  index,
		window: newAdmissionWindow(a, index, windowCap),
		slru:   newSegmentedLRU(a, index, slruCap),
		sketch: newCountMinSketch(total),
		total:  total,
	}
}

// newLRUCache builds a degenerate W-TinyLFU that is window-only: every key
// lands in a single LRU ordered by recency, the SLRU/sketch machinery
// unused. This backs the local://lru storage scheme.
func newLRUCache(total int) *admissionCache {
	if total < 1 {
		total = 1
	}
	a := newArena(total)
	index := make(map[string]int, total)
	return &admissionCache{
		arena:  a,
		index:  index,
		window: newAdmissionWindow(a, index, total),
		slru:   newSegmentedLRU(a, index, 0),
		sketch: newCountMinSketch(total),
		total:  total,
	}
}

// Get looks a key up, recording the access in the frequency sketch
// regardless of hit or miss, and promoting SLRU probation hits to
// protected. Expired entries are evicted on the spot and reported as a
// miss.
func (c *admissionCache) Get(key string, now time.Time) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sketch.Add(HashKey(key))

	idx, ok := c.index[key]
	if !ok {
		return nil, false
	}
	sl := &c.arena.slots[idx]
	if !sl.expireAt.IsZero() && !now.Before(sl.expireAt) {
		c.unlink(idx)
		return nil, false
	}
	if sl.seg == segWindow {
		c.window.list.MoveToFront(idx)
	} else {
		c.slru.access(idx)
	}
	return sl.value, true
}

// Set stores key, admitting it into the window unconditionally and letting
// the displaced window entry contest the SLRU's current victim, via the
// sketch, when the SLRU is full. It reports the key evicted from the cache
// entirely, if any, so the caller can account an eviction metric.
func (c *admissionCache) Set(key string, value interface{}, expireAt time.Time) (evictedKey string, evicted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if idx, ok := c.index[key]; ok {
		// Overwrite in place; membership and position are unaffected.
		c.arena.slots[idx].value = value
		c.arena.slots[idx].expireAt = expireAt
		return "", false
	}

	candidate, hadEviction := c.window.set(key, value, expireAt)
	if !hadEviction {
		return "", false
	}
	if c.slru.cap() == 0 {
		// Degenerate LRU mode: candidates that fall out of the window are
		// simply dropped, there is nowhere else for them to go.
		c.evictions++
		return candidate.key, true
	}

	victimKey, hasVictim := c.slru.victim()
	if !hasVictim {
		c.slru.set(candidate.key, candidate.value, candidate.expireAt)
		return "", false
	}

	candidateFreq := c.sketch.Estimate(HashKey(candidate.key))
	victimFreq := c.sketch.Estimate(HashKey(victimKey))
	if candidateFreq > victimFreq {
		evictedKey, _ = c.slru.set(candidate.key, candidate.value, candidate.expireAt)
		c.evictions++
		return evictedKey, true
	}
	c.evictions++
	return candidate.key, true
}

// Remove deletes key if present; it is a no-op otherwise.
func (c *admissionCache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx, ok := c.index[key]
	if !ok {
		return
	}
	c.unlink(idx)
}

// unlink detaches the slot at idx from whichever list owns it, drops it
// from the index and releases it back to the arena. Callers hold mu.
func (c *admissionCache) unlink(idx int) {
	sl := c.arena.slots[idx]
	delete(c.index, sl.key)
	switch sl.seg {
	case segWindow:
		c.window.list.Remove(idx)
	case segProbation:
		c.slru.probation.Remove(idx)
	case segProtected:
		c.slru.protected.Remove(idx)
	}
	c.arena.release(idx)
}

// Len reports the number of live entries across every segment.
func (c *admissionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

// sweepExpired removes up to max expired entries found scanning from the
// LRU end of the window and probation lists, where the oldest insertions
// accumulate. It is strictly an optimization: Get always re-checks expiry
// on its own, so a sweep that finds nothing to do is harmless.
func (c *admissionCache) sweepExpired(now time.Time, max int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, l := range []*list{c.window.list, c.slru.probation} {
		for removed < max {
			idx, ok := l.Back()
			if !ok {
				break
			}
			sl := c.arena.slots[idx]
			if sl.expireAt.IsZero() || now.Before(sl.expireAt) {
				break
			}
			c.unlink(idx)
			removed++
		}
	}
	return removed
}
