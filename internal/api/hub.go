package api

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/nerrad567/datacollector/internal/infrastructure/config"
	"github.com/nerrad567/datacollector/internal/infrastructure/logging"
	"github.com/nerrad567/datacollector/internal/person"
)

// WebSocket message types.
const (
	WSTypeSubscribe   = "subscribe"
	WSTypeUnsubscribe = "unsubscribe"
	WSTypePing        = "ping"
	WSTypePong        = "pong"
	WSTypeEvent       = "event"
	WSTypeResponse    = "response"
	WSTypeError       = "error"
)

// WSMessage is the envelope for every frame in both directions.
type WSMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// WSSubscribePayload is the payload of subscribe and unsubscribe messages.
// Channels are person event types such as "person.created".
type WSSubscribePayload struct {
	Channels []string `json:"channels"`
}

func newWSMessage(msgType, id string, payload any) WSMessage {
	return WSMessage{
		Type:      msgType,
		ID:        id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	}
}

// Hub tracks websocket clients and fans person events out to the ones
// subscribed to the event's type. It implements person.Notifier.
type Hub struct {
	cfg    config.WebSocketConfig
	logger *logging.Logger

	mu      sync.RWMutex
	clients map[*WSClient]struct{}
	gauge   ClientGauge
}

var _ person.Notifier = (*Hub)(nil)

// NewHub creates an empty hub. Call Run to tie its lifetime to a context.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[*WSClient]struct{}),
	}
}

// SetGauge sets where client counts are reported. May be nil.
func (h *Hub) SetGauge(g ClientGauge) {
	h.mu.Lock()
	h.gauge = g
	h.mu.Unlock()
}

// Run blocks until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*WSClient]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.shutdown()
	}
	h.reportCount()
}

// Register adds c to the set of clients that receive broadcasts.
func (h *Hub) Register(c *WSClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	n := h.reportCount()
	h.logger.Debug("websocket client connected", "clients", n, "subject", c.subject)
}

// Unregister removes c and closes its outbound queue. Calling it twice is
// harmless.
func (h *Hub) Unregister(c *WSClient) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()

	if !ok {
		return
	}
	c.closeSend()
	n := h.reportCount()
	h.logger.Debug("websocket client disconnected", "clients", n, "subject", c.subject)
}

// Notify relays a committed person change on the channel named by its type.
func (h *Hub) Notify(e person.Event) {
	h.Broadcast(string(e.Type), e)
}

// Broadcast queues an event for every client subscribed to channel.
// Slow clients drop messages rather than block the caller.
func (h *Hub) Broadcast(channel string, payload any) {
	msg := newWSMessage(WSTypeEvent, "", payload)
	msg.EventType = channel

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("encoding websocket event failed", "channel", channel, "error", err)
		return
	}

	// Snapshot so the hub lock is never held together with a client lock.
	h.mu.RLock()
	targets := make([]*WSClient, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range targets {
		if c.isSubscribed(channel) && c.trySend(data) {
			sent++
		}
	}
	if sent > 0 {
		h.logger.Debug("websocket event sent", "channel", channel, "recipients", sent)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// reportCount pushes the current client count to the gauge and returns it.
func (h *Hub) reportCount() int {
	h.mu.RLock()
	g, n := h.gauge, len(h.clients)
	h.mu.RUnlock()

	if g != nil {
		g.SetWebSocketClients(n)
	}
	return n
}
