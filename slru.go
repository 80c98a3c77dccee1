// slru.go: segmented LRU main store (probation + protected)

package cacheme

import "time"

// segmentedLRU is the SLRU main store: every admission lands in probation;
// a hit promotes the entry to protected, demoting protected's LRU member
// back to probation if protected is over capacity.
type segmentedLRU struct {
	arena        *arena
	index        map[string]int
	probation    *list
	protected    *list
	probationCap int
	protectedCap int
}

func newSegmentedLRU(a *arena, index map[string]int, capacity int) *segmentedLRU {
	protectedCap := int(float64(capacity) * 0.8)
	probationCap := capacity - protectedCap
	return &segmentedLRU{
		arena:        a,
		index:        index,
		probation:    newList(a, segProbation),
		protected:    newList(a, segProtected),
		probationCap: probationCap,
		protectedCap: protectedCap,
	}
}

func (s *segmentedLRU) cap() int { return s.probationCap + s.protectedCap }

func (s *segmentedLRU) size() int { return s.probation.Len() + s.protected.Len() }

// set always targets probation. While there's room anywhere in the SLRU the
// key is simply inserted; once full, the probation LRU member is evicted in
// place and returned.
func (s *segmentedLRU) set(key string, value interface{}, expireAt time.Time) (evictedKey string, hadEviction bool) {
	if s.probation.Len() < s.probationCap || s.size() < s.cap() {
		i := s.arena.alloc(key, value, expireAt)
		s.probation.PushFront(i)
		s.index[key] = i
		return "", false
	}
	backIdx, ok := s.probation.Back()
	if !ok {
		i := s.arena.alloc(key, value, expireAt)
		s.probation.PushFront(i)
		s.index[key] = i
		return "", false
	}
	old := s.arena.slots[backIdx]
	delete(s.index, old.key)
	s.arena.slots[backIdx].key = key
	s.arena.slots[backIdx].value = value
	s.arena.slots[backIdx].expireAt = expireAt
	s.probation.MoveToFront(backIdx)
	s.index[key] = backIdx
	return old.key, true
}

// victim returns the current probation LRU member, but only once the SLRU
// is actually full; an SLRU with room never has a victim.
func (s *segmentedLRU) victim() (key string, ok bool) {
	if s.size() < s.cap() {
		return "", false
	}
	backIdx, ok := s.probation.Back()
	if !ok {
		return "", false
	}
	return s.arena.slots[backIdx].key, true
}

// access records a hit on the slot at idx: protected members move to the
// protected MRU end; probation members are promoted to protected, demoting
// protected's LRU member back to probation if that pushes protected over
// capacity.
func (s *segmentedLRU) access(idx int) {
	sl := &s.arena.slots[idx]
	if sl.seg == segProtected {
		s.protected.MoveToFront(idx)
		return
	}
	s.probation.Remove(idx)
	s.protected.PushFront(idx)
	if s.protected.Len() > s.protectedCap {
		demoteIdx, ok := s.protected.Back()
		if ok {
			s.protected.Remove(demoteIdx)
			s.probation.PushFront(demoteIdx)
		}
	}
}
