package engine

import (
	"sync"
	"time"

	"github.com/workiq/weave/pkg/api"
)

type (
	// EventType classifies chain execution events
	EventType string

	// Event describes one observable moment of a chain execution
	Event struct {
		At          time.Time `json:"at"`
		ExecutionID string    `json:"execution_id"`
		Type        EventType `json:"type"`
		Chain       api.Name  `json:"chain"`
		StepName    api.Name  `json:"step_name,omitempty"`
		Endpoint    api.Name  `json:"endpoint,omitempty"`
		Error       string    `json:"error,omitempty"`
		StepIndex   int       `json:"step_index"`
	}

	// Hub fans chain execution events out to subscribers. Publishing
	// never blocks; a subscriber that falls behind loses events rather
	// than stalling the executor
	Hub struct {
		subs map[chan Event]struct{}
		mu   sync.RWMutex
	}
)

const (
	EventChainStarted   EventType = "chain_started"
	EventStepCompleted  EventType = "step_completed"
	EventChainSucceeded EventType = "chain_succeeded"
	EventChainFailed    EventType = "chain_failed"
)

const subscriberBuffer = 16

// NewHub creates an event hub with no subscribers
func NewHub() *Hub {
	return &Hub{
		subs: map[chan Event]struct{}{},
	}
}

// Subscribe registers a new subscriber. The returned cancel function must
// be called to release the subscription; the channel is closed by it
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// Publish delivers an event to all current subscribers, dropping it for
// any subscriber whose buffer is full
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
