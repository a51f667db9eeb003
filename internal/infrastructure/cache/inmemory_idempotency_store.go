// Package cache provides idempotency stores for bulk payment submission,
// backed by Redis or process memory.
package cache

import (
	"context"
	"sync"
	"time"

	appinvoicing "github.com/florexport/backend/internal/application/invoicing"
)

const cleanupInterval = 5 * time.Minute

// InMemoryIdempotencyStore tracks idempotency claims in a process-local map.
// It only protects a single instance; multi-instance deployments need the
// Redis store.
type InMemoryIdempotencyStore struct {
	mu        sync.RWMutex
	deadlines map[string]time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

var _ appinvoicing.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)

// NewInMemoryIdempotencyStore returns a store with a background sweeper that
// drops expired claims. Call Close to stop the sweeper.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		deadlines: make(map[string]time.Time),
		stopChan:  make(chan struct{}),
	}
	s.wg.Add(1)
	go s.sweepLoop()
	return s
}

// Reserve claims key for ttl. Returns false when a live claim already exists.
func (s *InMemoryIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if deadline, ok := s.deadlines[key]; ok && time.Now().Before(deadline) {
		return false, nil
	}
	s.deadlines[key] = time.Now().Add(ttl)
	return true, nil
}

// Release drops the claim for key. Releasing an unclaimed key is a no-op.
func (s *InMemoryIdempotencyStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.deadlines, key)
	return nil
}

// Close stops the sweeper. Safe to call more than once.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryIdempotencyStore) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryIdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, deadline := range s.deadlines {
		if now.After(deadline) {
			delete(s.deadlines, key)
		}
	}
}

// Size reports the number of claims currently held, expired or not.
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.deadlines)
}
