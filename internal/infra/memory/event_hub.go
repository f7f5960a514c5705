package memory

import (
	"context"
	"sync"

	"careerpath-service/internal/domain"
)

// EventHub is an in-process app.EventBus. Each subscriber gets a small
// buffered channel; when it is full the oldest event is dropped so a slow
// reader never blocks publishers.
type EventHub struct {
	buffer int

	mu   sync.Mutex
	subs map[string]map[chan domain.TeamEvent]struct{}
}

func NewEventHub(buffer int) *EventHub {
	if buffer <= 0 {
		buffer = 8
	}
	return &EventHub{buffer: buffer, subs: make(map[string]map[chan domain.TeamEvent]struct{})}
}

func (h *EventHub) Publish(_ context.Context, event domain.TeamEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[event.TeamID] {
		select {
		case ch <- event:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
	return nil
}

func (h *EventHub) Subscribe(_ context.Context, teamID string) (<-chan domain.TeamEvent, func(), error) {
	ch := make(chan domain.TeamEvent, h.buffer)

	h.mu.Lock()
	if h.subs[teamID] == nil {
		h.subs[teamID] = make(map[chan domain.TeamEvent]struct{})
	}
	h.subs[teamID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		set := h.subs[teamID]
		if _, ok := set[ch]; !ok {
			return
		}
		delete(set, ch)
		close(ch)
		if len(set) == 0 {
			delete(h.subs, teamID)
		}
	}
	return ch, cancel, nil
}
