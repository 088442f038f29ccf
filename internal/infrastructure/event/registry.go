package event

import (
	"sync"

	"github.com/rentledger/backend/internal/domain/shared"
)

// subscription is one handler and the event types it wants. A nil set
// means every event.
type subscription struct {
	handler shared.EventHandler
	types   map[string]struct{}
}

func (s subscription) wants(eventType string) bool {
	if s.types == nil {
		return true
	}
	_, ok := s.types[eventType]
	return ok
}

// subscriptions keeps handlers in subscription order. A handler appears
// once however many times it subscribes, so it never sees the same event
// twice.
type subscriptions struct {
	mu   sync.RWMutex
	list []subscription
}

// add subscribes handler to eventTypes, widening an existing subscription
func (s *subscriptions) add(handler shared.EventHandler, eventTypes ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.list {
		if s.list[i].handler != handler {
			continue
		}
		if len(eventTypes) == 0 {
			s.list[i].types = nil
		} else if s.list[i].types != nil {
			for _, t := range eventTypes {
				s.list[i].types[t] = struct{}{}
			}
		}
		return
	}

	sub := subscription{handler: handler}
	if len(eventTypes) > 0 {
		sub.types = make(map[string]struct{}, len(eventTypes))
		for _, t := range eventTypes {
			sub.types[t] = struct{}{}
		}
	}
	s.list = append(s.list, sub)
}

func (s *subscriptions) remove(handler shared.EventHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.list[:0]
	for _, sub := range s.list {
		if sub.handler != handler {
			kept = append(kept, sub)
		}
	}
	s.list = kept
}

// matching returns the handlers for eventType in subscription order
func (s *subscriptions) matching(eventType string) []shared.EventHandler {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []shared.EventHandler
	for _, sub := range s.list {
		if sub.wants(eventType) {
			out = append(out, sub.handler)
		}
	}
	return out
}

func (s *subscriptions) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.list)
}
