package mqtt

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/datacollector/internal/infrastructure/config"
)

// Logger is the subset of logging.Logger the client uses.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Client publishes people change events to an MQTT broker.
// All methods are safe for concurrent use.
type Client struct {
	client pahomqtt.Client
	cfg    config.MQTTConfig
	topics Topics

	connected atomic.Bool

	logMu  sync.RWMutex
	logger Logger
}

// Connect dials the broker and waits for the session, bounded by ctx and
// connectTimeout. A retained "online" status is published on every
// (re)connect and the LWT flips it to "offline" if the process dies.
func Connect(ctx context.Context, cfg config.MQTTConfig) (*Client, error) {
	c := &Client{
		cfg:    cfg,
		topics: Topics{Prefix: cfg.TopicPrefix},
	}

	opts := buildClientOptions(cfg).
		SetOnConnectHandler(func(pahomqtt.Client) { c.onConnect() }).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.onConnectionLost(err) })
	configureLWT(opts, c.topics, cfg.Broker.ClientID)

	c.client = pahomqtt.NewClient(opts)
	if err := waitToken(ctx, c.client.Connect(), connectTimeout); err != nil {
		c.client.Disconnect(0)
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// onConnect runs asynchronously; set the flag here too so
	// IsConnected is accurate as soon as Connect returns.
	c.connected.Store(true)
	return c, nil
}

// Topics returns the topic builder for this client's prefix.
func (c *Client) Topics() Topics {
	return c.topics
}

func (c *Client) onConnect() {
	c.connected.Store(true)
	c.client.Publish(c.topics.SystemStatus(), byte(c.cfg.QoS), true, //nolint:gosec // QoS validated by config
		buildStatusPayload(c.cfg.Broker.ClientID, statusOnline, ""))

	if l := c.getLogger(); l != nil {
		l.Info("mqtt connected", "broker", c.cfg.Broker.Host)
	}
}

func (c *Client) onConnectionLost(err error) {
	c.connected.Store(false)
	if l := c.getLogger(); l != nil {
		l.Warn("mqtt connection lost", "error", err)
	}
}

// Close publishes a graceful offline status and disconnects.
// Closing an unconnected client is not an error.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	if c.connected.Swap(false) {
		token := c.client.Publish(c.topics.SystemStatus(), byte(c.cfg.QoS), true, //nolint:gosec // QoS validated by config
			buildStatusPayload(c.cfg.Broker.ClientID, statusOffline, "graceful_shutdown"))
		token.WaitTimeout(publishTimeout)
	}
	c.client.Disconnect(disconnectQuiesceMS)
	return nil
}

// HealthCheck reports ErrNotConnected when the broker link is down.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mqtt health check: %w", err)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected reports the broker link state. Safe on a nil or zero Client.
func (c *Client) IsConnected() bool {
	if c == nil || c.client == nil {
		return false
	}
	return c.connected.Load() && c.client.IsConnected()
}

// SetLogger sets a logger for connection events.
func (c *Client) SetLogger(logger Logger) {
	c.logMu.Lock()
	c.logger = logger
	c.logMu.Unlock()
}

func (c *Client) getLogger() Logger {
	c.logMu.RLock()
	defer c.logMu.RUnlock()
	return c.logger
}
