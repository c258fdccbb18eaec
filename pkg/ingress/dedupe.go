package ingress

import (
	"container/list"
	"sync"
	"time"
)

type seenEntry struct {
	stamped time.Time
	element *list.Element
}

// seenUpdates remembers recently accepted update ids. Telegram redelivers an
// update when the acknowledgment is slow, so a repeat within the window is
// acked without running orchestration again. Insertion order is kept in a
// linked list for O(1) eviction when the cache is full.
type seenUpdates struct {
	mu      sync.Mutex
	entries map[int64]*seenEntry
	order   *list.List
	ttl     time.Duration
	maxSize int

	done      chan struct{}
	closeOnce sync.Once
}

func newSeenUpdates(ttl time.Duration, maxSize int) *seenUpdates {
	s := &seenUpdates{
		entries: make(map[int64]*seenEntry),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		done:    make(chan struct{}),
	}
	go s.sweep()
	return s
}

// CheckAndMark reports whether the id was already seen inside the window,
// marking it as seen if it was not. Check and mark are one critical section
// so two concurrent deliveries of the same update cannot both pass.
func (s *seenUpdates) CheckAndMark(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[id]; ok && time.Since(entry.stamped) < s.ttl {
		return true
	}

	now := time.Now()
	if entry, ok := s.entries[id]; ok {
		entry.stamped = now
		s.order.MoveToBack(entry.element)
		return false
	}

	if len(s.entries) >= s.maxSize {
		if front := s.order.Front(); front != nil {
			oldest, _ := front.Value.(int64)
			s.order.Remove(front)
			delete(s.entries, oldest)
		}
	}

	elem := s.order.PushBack(id)
	s.entries[id] = &seenEntry{stamped: now, element: elem}
	return false
}

func (s *seenUpdates) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expire()
		case <-s.done:
			return
		}
	}
}

func (s *seenUpdates) expire() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, entry := range s.entries {
		if now.Sub(entry.stamped) > s.ttl {
			s.order.Remove(entry.element)
			delete(s.entries, id)
		}
	}
}

// Close stops the background sweeper. Safe to call more than once.
func (s *seenUpdates) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}
