package ws

import (
	"context"
	"sync"

	"membership_webapp/internal/logger"
	"membership_webapp/internal/metrics"
)

// SnapshotFunc builds the current state of topic as seen by userID.
type SnapshotFunc func(ctx context.Context, topic string, userID int64) (any, error)

// Hub fans jackpot changes out to subscribed clients. A subscription is
// a set membership, so repeating it changes nothing except that a fresh
// snapshot is sent; reconnecting clients resync that way.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]map[string]struct{}
	snapshot SnapshotFunc
}

func NewHub(snapshot SnapshotFunc) *Hub {
	return &Hub{
		clients:  make(map[*Client]map[string]struct{}),
		snapshot: snapshot,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.clients[c] = make(map[string]struct{})
		metrics.FeedClients.Inc()
	}
	h.mu.Unlock()
}

// Unregister drops c and closes its send channel. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.Send)
	metrics.FeedClients.Dec()
}

// Subscribe adds topic to c's set and sends it a snapshot. It reports
// whether the subscription is new.
func (h *Hub) Subscribe(ctx context.Context, c *Client, topic string) bool {
	h.mu.Lock()
	topics, ok := h.clients[c]
	if !ok {
		h.mu.Unlock()
		return false
	}
	_, existed := topics[topic]
	topics[topic] = struct{}{}
	h.mu.Unlock()

	h.sendSnapshot(ctx, c, topic, MsgSnapshot)
	return !existed
}

func (h *Hub) Unsubscribe(c *Client, topic string) {
	h.mu.Lock()
	if topics, ok := h.clients[c]; ok {
		delete(topics, topic)
	}
	h.mu.Unlock()
}

// Topics returns the topics c is subscribed to.
func (h *Hub) Topics(c *Client) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []string
	for t := range h.clients[c] {
		out = append(out, t)
	}
	return out
}

// Broadcast pushes an update of every topic to its subscribers. The
// shared jackpot snapshot is built once per call.
func (h *Hub) Broadcast(ctx context.Context) {
	type target struct {
		client *Client
		topic  string
	}

	h.mu.RLock()
	var targets []target
	for c, topics := range h.clients {
		for t := range topics {
			targets = append(targets, target{client: c, topic: t})
		}
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	var shared []byte
	for _, tg := range targets {
		if tg.topic == TopicJackpot {
			if shared == nil {
				shared = h.build(ctx, TopicJackpot, 0, MsgUpdate)
			}
			h.deliver(tg.client, shared)
			continue
		}
		h.deliver(tg.client, h.build(ctx, tg.topic, tg.client.UserID, MsgUpdate))
	}
}

func (h *Hub) sendSnapshot(ctx context.Context, c *Client, topic, kind string) {
	h.deliver(c, h.build(ctx, topic, c.UserID, kind))
}

func (h *Hub) build(ctx context.Context, topic string, userID int64, kind string) []byte {
	data, err := h.snapshot(ctx, topic, userID)
	if err != nil {
		logger.Error("jackpot snapshot failed", "topic", topic, "user_id", userID, "error", err)
		return encode(Outbound{Type: MsgError, Topic: topic, Data: ErrorPayload{Message: "snapshot unavailable"}})
	}
	return encode(Outbound{Type: kind, Topic: topic, Data: data})
}

// deliver never blocks; a client with a full buffer misses the message.
func (h *Hub) deliver(c *Client, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.Send <- msg:
	default:
		logger.Warn("feed client too slow, message dropped", "user_id", c.UserID)
	}
}
