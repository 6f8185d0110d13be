package api

import (
	"sync"
)

// PlanEvent is a fan-out notification about plan activity. TopicAll carries
// every event; per-plan topics carry events for one plan id.
type PlanEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

const TopicAll = "all"

// EventBroker fans plan events out to SSE and WebSocket subscribers.
type EventBroker interface {
	Subscribe(topic string) chan PlanEvent
	Unsubscribe(topic string, ch chan PlanEvent)
	Publish(topic string, evt PlanEvent)
}

// Broker is the in-process EventBroker used when no REDIS_URL is set.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan PlanEvent]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: map[string]map[chan PlanEvent]struct{}{}}
}

func (b *Broker) Subscribe(topic string) chan PlanEvent {
	ch := make(chan PlanEvent, 8)
	b.mu.Lock()
	if b.subs[topic] == nil {
		b.subs[topic] = map[chan PlanEvent]struct{}{}
	}
	b.subs[topic][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(topic string, ch chan PlanEvent) {
	b.mu.Lock()
	if m := b.subs[topic]; m != nil {
		delete(m, ch)
		if len(m) == 0 {
			delete(b.subs, topic)
		}
	}
	b.mu.Unlock()
	close(ch)
}

// Publish never blocks; slow subscribers drop events.
func (b *Broker) Publish(topic string, evt PlanEvent) {
	b.mu.Lock()
	for ch := range b.subs[topic] {
		select {
		case ch <- evt:
		default:
		}
	}
	b.mu.Unlock()
}
