package event

import (
	"slices"
	"sync"

	"github.com/erp/subcontracting/internal/domain/shared"
)

// subscriptions routes event types to handlers. Handlers subscribed without
// types receive every event after the typed ones.
type subscriptions struct {
	mu     sync.RWMutex
	byType map[string][]shared.EventHandler
	all    []shared.EventHandler
}

func newSubscriptions() *subscriptions {
	return &subscriptions{byType: make(map[string][]shared.EventHandler)}
}

func (s *subscriptions) add(h shared.EventHandler, eventTypes []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(eventTypes) == 0 {
		s.all = append(s.all, h)
		return
	}
	for _, t := range eventTypes {
		s.byType[t] = append(s.byType[t], h)
	}
}

func (s *subscriptions) remove(h shared.EventHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	match := func(other shared.EventHandler) bool { return other == h }
	s.all = slices.DeleteFunc(s.all, match)
	for t, hs := range s.byType {
		if hs = slices.DeleteFunc(hs, match); len(hs) == 0 {
			delete(s.byType, t)
		} else {
			s.byType[t] = hs
		}
	}
}

// handlersFor returns a snapshot, so dispatch runs without the lock held
func (s *subscriptions) handlersFor(eventType string) []shared.EventHandler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Concat(s.byType[eventType], s.all)
}
