package oauthstore

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the single-process Store. A janitor goroutine evicts
// entries past the TTL so abandoned handshakes do not grow the map forever.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Pending
	ttl     time.Duration
	done    chan struct{}
	once    sync.Once
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &MemoryStore{
		entries: make(map[string]Pending),
		ttl:     ttl,
		done:    make(chan struct{}),
	}
	go s.janitor()
	return s
}

func (s *MemoryStore) Put(ctx context.Context, requestToken string, p Pending) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	s.mu.Lock()
	s.entries[requestToken] = p
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Take(ctx context.Context, requestToken string) (*Pending, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.entries[requestToken]
	if !ok {
		return nil, false, nil
	}
	delete(s.entries, requestToken)
	if time.Since(p.CreatedAt) > s.ttl {
		return nil, false, nil
	}
	return &p, true, nil
}

func (s *MemoryStore) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *MemoryStore) janitor() {
	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-s.ttl)
			s.mu.Lock()
			for token, p := range s.entries {
				if p.CreatedAt.Before(cutoff) {
					delete(s.entries, token)
				}
			}
			s.mu.Unlock()
		}
	}
}
