package events

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Subscription receives the frames published to one topic.
type Subscription struct {
	// C delivers frames in publish order. It is closed when the topic closes
	// or the subscription is cancelled.
	C <-chan json.RawMessage

	ch    chan json.RawMessage
	topic string
	hub   *Hub
	once  sync.Once
}

// Close detaches the subscription from its topic. Safe to call more than once
// and after the topic has been closed.
func (s *Subscription) Close() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()

	if subs, ok := s.hub.topics[s.topic]; ok {
		delete(subs, s)
		if len(subs) == 0 {
			delete(s.hub.topics, s.topic)
		}
	}
	s.closeChannel()
}

func (s *Subscription) closeChannel() {
	s.once.Do(func() { close(s.ch) })
}

// Hub fans out frames to per-topic subscribers.
type Hub struct {
	mu     sync.Mutex
	topics map[string]map[*Subscription]struct{}
	logger *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		topics: make(map[string]map[*Subscription]struct{}),
		logger: logger.With("component", "event_hub"),
	}
}

// Subscribe registers a subscriber on topic with room for buffer frames.
// Frames in initial are queued before anything published later.
func (h *Hub) Subscribe(topic string, buffer int, initial ...json.RawMessage) *Subscription {
	if buffer < len(initial)+1 {
		buffer = len(initial) + 1
	}

	ch := make(chan json.RawMessage, buffer)
	for _, frame := range initial {
		ch <- frame
	}
	sub := &Subscription{C: ch, ch: ch, topic: topic, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.topics[topic] = subs
	}
	subs[sub] = struct{}{}

	h.logger.Debug("subscriber added", "topic", topic, "subscribers", len(subs))
	return sub
}

// Publish delivers frame to every subscriber of topic without blocking and
// returns the number of subscribers that received it.
func (h *Hub) Publish(topic string, frame json.RawMessage) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for sub := range h.topics[topic] {
		select {
		case sub.ch <- frame:
			delivered++
		default:
			h.logger.Warn("subscriber buffer full, frame dropped", "topic", topic)
		}
	}
	return delivered
}

// CloseTopic closes every subscriber of topic and forgets the topic.
func (h *Hub) CloseTopic(topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.topics[topic]
	delete(h.topics, topic)
	for sub := range subs {
		sub.closeChannel()
	}
	if len(subs) > 0 {
		h.logger.Debug("topic closed", "topic", topic, "subscribers", len(subs))
	}
}

// Subscribers returns the number of live subscribers on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[topic])
}
