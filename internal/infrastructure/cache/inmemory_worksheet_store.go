package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/erp/subcontracting/internal/domain/shared"
	"github.com/erp/subcontracting/internal/domain/subcontracting"
	"github.com/google/uuid"
)

// entry is a stored worksheet or submission marker with expiration
type entry struct {
	payload   []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// InMemoryWorksheetStore implements WorksheetStore using an in-memory map.
// Worksheets are stored encoded, so callers never share state with the store.
// This is suitable for single-instance deployments and testing.
type InMemoryWorksheetStore struct {
	ttl       time.Duration
	mu        sync.RWMutex
	sheets    map[uuid.UUID]entry
	submitted map[uuid.UUID]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryWorksheetStore creates a new in-memory worksheet store.
// It starts a background goroutine to clean up expired entries.
func NewInMemoryWorksheetStore(ttl time.Duration) *InMemoryWorksheetStore {
	if ttl <= 0 {
		ttl = DefaultWorksheetTTL
	}
	store := &InMemoryWorksheetStore{
		ttl:       ttl,
		sheets:    make(map[uuid.UUID]entry),
		submitted: make(map[uuid.UUID]entry),
		stopChan:  make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// Save creates or replaces a worksheet and refreshes its expiry
func (s *InMemoryWorksheetStore) Save(_ context.Context, w *subcontracting.Worksheet) error {
	payload, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("failed to encode worksheet: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheets[w.ID] = entry{payload: payload, expiresAt: time.Now().Add(s.ttl)}
	return nil
}

// Get returns a copy of the worksheet
func (s *InMemoryWorksheetStore) Get(_ context.Context, id uuid.UUID) (*subcontracting.Worksheet, error) {
	s.mu.RLock()
	e, exists := s.sheets[id]
	s.mu.RUnlock()

	if !exists || e.expired(time.Now()) {
		return nil, shared.ErrNotFound
	}
	var w subcontracting.Worksheet
	if err := json.Unmarshal(e.payload, &w); err != nil {
		return nil, fmt.Errorf("failed to decode worksheet: %w", err)
	}
	return &w, nil
}

// Delete removes a worksheet
func (s *InMemoryWorksheetStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sheets, id)
	return nil
}

// MarkSubmitted records a commit of the worksheet.
// Returns true if the worksheet was newly marked, false if it already was.
func (s *InMemoryWorksheetStore) MarkSubmitted(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, exists := s.submitted[id]; exists && !e.expired(time.Now()) {
		return false, nil
	}
	s.submitted[id] = entry{expiresAt: time.Now().Add(s.ttl)}
	return true, nil
}

// ReleaseSubmitted clears the submission marker
func (s *InMemoryWorksheetStore) ReleaseSubmitted(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.submitted, id)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryWorksheetStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryWorksheetStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
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

// cleanup removes expired entries from the store
func (s *InMemoryWorksheetStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, e := range s.sheets {
		if e.expired(now) {
			delete(s.sheets, id)
		}
	}
	for id, e := range s.submitted {
		if e.expired(now) {
			delete(s.submitted, id)
		}
	}
}

// Size returns the number of stored worksheets (for testing/monitoring)
func (s *InMemoryWorksheetStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sheets)
}

var _ subcontracting.WorksheetStore = (*InMemoryWorksheetStore)(nil)
