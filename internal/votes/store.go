package votes

import "sync"

// Store holds the one authoritative projection per item. Every view of an
// item reads from and subscribes to the same entry.
type Store struct {
	mu    sync.RWMutex
	items map[ItemKey]Projection
	subs  map[ItemKey]map[int]chan Projection
	next  int
}

func NewStore() *Store {
	return &Store{
		items: make(map[ItemKey]Projection),
		subs:  make(map[ItemKey]map[int]chan Projection),
	}
}

// Get returns the projection for key and whether it has been seeded.
func (s *Store) Get(key ItemKey) (Projection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.items[key]
	return p, ok
}

// Set replaces the projection for key and notifies subscribers.
func (s *Store) Set(key ItemKey, p Projection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = p
	for _, ch := range s.subs[key] {
		// Subscribers only care about the latest value.
		select {
		case <-ch:
		default:
		}
		ch <- p
	}
}

// Subscribe returns a channel that receives the latest projection of key
// after every Set. The returned func unsubscribes and closes the channel.
func (s *Store) Subscribe(key ItemKey) (<-chan Projection, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Projection, 1)
	id := s.next
	s.next++
	if s.subs[key] == nil {
		s.subs[key] = make(map[int]chan Projection)
	}
	s.subs[key][id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs[key], id)
			if len(s.subs[key]) == 0 {
				delete(s.subs, key)
			}
			close(ch)
		})
	}
}
