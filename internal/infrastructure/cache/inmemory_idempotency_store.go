package cache

import (
	"context"
	"sync"
	"time"

	"github.com/sewline/backend/internal/domain/shared"
)

const idempotencyCleanupInterval = 5 * time.Minute

// InMemoryIdempotencyStore tracks processed event IDs with a TTL so
// replayed receipt and invoice events are dropped instead of applied
// twice. Suitable for single-instance deployments; a multi-node setup
// needs the Redis-backed store instead.
type InMemoryIdempotencyStore struct {
	mu        sync.RWMutex
	deadlines map[string]time.Time
	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		deadlines: make(map[string]time.Time),
		stop:      make(chan struct{}),
	}

	s.wg.Add(1)
	go s.sweep()

	return s
}

// MarkProcessed claims the event ID for ttl. It reports true when the
// claim is new; a still-live existing claim reports false. Expired
// claims can be taken again.
func (s *InMemoryIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if deadline, ok := s.deadlines[eventID]; ok && now.Before(deadline) {
		return false, nil
	}
	s.deadlines[eventID] = now.Add(ttl)
	return true, nil
}

// IsProcessed reports whether the event ID holds a live claim.
func (s *InMemoryIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deadline, ok := s.deadlines[eventID]
	return ok && time.Now().Before(deadline), nil
}

// Size reports the number of tracked IDs, expired ones included until
// the next sweep.
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.deadlines)
}

// Close stops the background sweep. Safe to call more than once.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryIdempotencyStore) sweep() {
	defer s.wg.Done()

	ticker := time.NewTicker(idempotencyCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryIdempotencyStore) cleanup() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for eventID, deadline := range s.deadlines {
		if now.After(deadline) {
			delete(s.deadlines, eventID)
		}
	}
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
