package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/datacollector/internal/infrastructure/config"
)

// wsSendBufferSize is the per-client outbound queue length.
const wsSendBufferSize = 256


// WSClient is one websocket connection registered with the hub.
type WSClient struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	subject string // token subject; empty when auth is disabled

	mu            sync.RWMutex
	subscriptions map[string]struct{}
	closed        bool
}

// wsTiming holds the keepalive durations derived from config.
type wsTiming struct {
	pingEvery time.Duration
	readWait  time.Duration
	writeWait time.Duration
}

// Fallbacks for a non-positive interval, which time.NewTicker rejects.
const (
	defaultWSPingInterval = 30 * time.Second
	defaultWSPongTimeout  = 10 * time.Second
)

func newWSTiming(cfg config.WebSocketConfig) wsTiming {
	ping := time.Duration(cfg.PingInterval) * time.Second
	if ping <= 0 {
		ping = defaultWSPingInterval
	}
	pong := time.Duration(cfg.PongTimeout) * time.Second
	if pong <= 0 {
		pong = defaultWSPongTimeout
	}
	return wsTiming{pingEvery: ping, readWait: ping + pong, writeWait: pong}
}

// handleWebSocket upgrades the connection. authMiddleware has already
// checked the token when auth is enabled.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err,
			"request_id", requestID(r.Context()))
		return
	}

	c := &WSClient{
		hub:           s.hub,
		conn:          conn,
		send:          make(chan []byte, wsSendBufferSize),
		subject:       subject(r),
		subscriptions: make(map[string]struct{}),
	}
	s.hub.Register(c)

	timing := newWSTiming(s.wsCfg)
	go c.writeLoop(timing)
	go c.readLoop(int64(s.wsCfg.MaxMessageSize), timing)
}

// upgrader admits handshakes from the configured CORS origins. Browsers do
// not apply CORS to websockets, so the check has to happen here. Requests
// without an Origin header come from non-browser clients and are allowed.
func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.isAllowedOrigin(origin)
		},
	}
}

// readLoop handles inbound frames until the connection fails, then
// unregisters the client.
func (c *WSClient) readLoop(limit int64, t wsTiming) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	extend := func() error { return c.conn.SetReadDeadline(time.Now().Add(t.readWait)) }

	c.conn.SetReadLimit(limit)
	//nolint:errcheck // a failed deadline surfaces as a read error
	extend()
	c.conn.SetPongHandler(func(string) error { return extend() })

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "error", err)
			}
			return
		}
		//nolint:errcheck // any inbound frame proves liveness
		extend()
		c.handleMessage(data)
	}
}

// writeLoop drains the send queue and pings on an interval. It exits when
// the queue is closed or a write fails.
func (c *WSClient) writeLoop(t wsTiming) {
	ticker := time.NewTicker(t.pingEvery)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	write := func(kind int, data []byte) error {
		//nolint:errcheck // a failed deadline surfaces as a write error
		c.conn.SetWriteDeadline(time.Now().Add(t.writeWait))
		return c.conn.WriteMessage(kind, data)
	}

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				//nolint:errcheck // peer may already be gone
				write(websocket.CloseMessage, nil)
				return
			}
			if write(websocket.TextMessage, data) != nil {
				return
			}
		case <-ticker.C:
			if write(websocket.PingMessage, nil) != nil {
				return
			}
		}
	}
}

func (c *WSClient) handleMessage(data []byte) {
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.reply(newWSMessage(WSTypeError, "", errorPayload("invalid JSON message")))
		return
	}

	switch msg.Type {
	case WSTypeSubscribe, WSTypeUnsubscribe:
		c.updateSubscriptions(msg)
	case WSTypePing:
		c.reply(newWSMessage(WSTypePong, msg.ID, nil))
	default:
		c.reply(newWSMessage(WSTypeError, msg.ID, errorPayload("unknown message type: "+msg.Type)))
	}
}

func (c *WSClient) updateSubscriptions(msg WSMessage) {
	channels, ok := parseChannels(msg.Payload)
	if !ok {
		c.reply(newWSMessage(WSTypeError, msg.ID, errorPayload("invalid "+msg.Type+" payload")))
		return
	}

	subscribe := msg.Type == WSTypeSubscribe
	c.mu.Lock()
	for _, ch := range channels {
		if subscribe {
			c.subscriptions[ch] = struct{}{}
		} else {
			delete(c.subscriptions, ch)
		}
	}
	c.mu.Unlock()

	key := "unsubscribed"
	if subscribe {
		key = "subscribed"
	}
	c.hub.logger.Debug("websocket subscriptions changed", key, channels, "subject", c.subject)
	c.reply(newWSMessage(WSTypeResponse, msg.ID, map[string]any{key: channels}))
}

// parseChannels decodes the channel list from a (un)subscribe payload,
// which arrives as a generic JSON value.
func parseChannels(payload any) ([]string, bool) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, false
	}
	var sub WSSubscribePayload
	if err := json.Unmarshal(raw, &sub); err != nil {
		return nil, false
	}
	return sub.Channels, true
}

func errorPayload(message string) map[string]string {
	return map[string]string{"message": message}
}

func (c *WSClient) reply(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.trySend(data)
}

// trySend queues data without blocking. It reports false when the client
// is closed or its queue is full.
func (c *WSClient) trySend(data []byte) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *WSClient) isSubscribed(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.subscriptions[channel]
	return ok
}

// closeSend closes the outbound queue once, which stops writeLoop.
func (c *WSClient) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// shutdown is used by the hub on server stop.
func (c *WSClient) shutdown() {
	c.closeSend()
	if c.conn != nil {
		c.conn.Close()
	}
}
