package mqtt

import (
	"fmt"
	"sync"

	"motion_security/internal/config"
	"motion_security/internal/logger"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// MessageHandler receives the topic and raw payload of one message.
// Handlers run on paho goroutines and must not block for long.
type MessageHandler func(topic string, payload []byte) error

type subscription struct {
	topic   string
	qos     byte
	handler MessageHandler
}

// Client wraps paho with lazy, on-demand connection. Subscriptions are
// restored on every reconnect. Safe for concurrent use.
type Client struct {
	client pahomqtt.Client
	cfg    config.MQTTConfig
	topics Topics
	log    *logger.Logger

	connMu sync.Mutex

	subMu         sync.RWMutex
	subscriptions map[string]subscription
}

// New builds a client without connecting. An empty broker is ErrNoBroker.
func New(cfg config.MQTTConfig, log *logger.Logger) (*Client, error) {
	if cfg.Broker == "" {
		return nil, ErrNoBroker
	}
	if cfg.QoS < 0 || cfg.QoS > maxQoS {
		return nil, ErrInvalidQoS
	}

	c := &Client{
		cfg:           cfg,
		topics:        Topics{Prefix: cfg.TopicPrefix},
		log:           logger.OrNop(log),
		subscriptions: make(map[string]subscription),
	}

	opts := buildClientOptions(cfg)
	configureLWT(opts, c.topics)
	opts.SetOnConnectHandler(func(_ pahomqtt.Client) { c.handleConnect() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.log.Warnw("mqtt_connection_lost", "err", err)
	})

	c.client = pahomqtt.NewClient(opts)
	return c, nil
}

func (c *Client) Topics() Topics { return c.topics }

// QoS is the configured default quality of service.
func (c *Client) QoS() byte { return byte(c.cfg.QoS) }

func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

// EnsureConnected connects if the client is not connected yet. Concurrent
// callers share one attempt.
func (c *Client) EnsureConnected() error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.client.IsConnected() {
		return nil
	}

	timeout := connectTimeout(c.cfg)
	token := c.client.Connect()
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	c.log.Infow("mqtt_connected", "broker", c.cfg.Broker, "client_id", c.cfg.ClientID)
	return nil
}

// Close publishes the offline status and disconnects.
func (c *Client) Close() {
	if c.client.IsConnected() {
		token := c.client.Publish(c.topics.SystemStatus(), 1, true, statusOffline)
		token.WaitTimeout(defaultPublishTimeout)
	}
	c.client.Disconnect(defaultDisconnectQuiesce)
}

func (c *Client) handleConnect() {
	c.subMu.RLock()
	for _, sub := range c.subscriptions {
		c.client.Subscribe(sub.topic, sub.qos, c.wrapHandler(sub.handler))
	}
	c.subMu.RUnlock()

	c.client.Publish(c.topics.SystemStatus(), 1, true, statusOnline)
}

// wrapHandler adds panic recovery and error logging.
func (c *Client) wrapHandler(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				c.log.Errorw("mqtt_handler_panic", "topic", msg.Topic(), "panic", r)
			}
		}()
		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			c.log.Warnw("mqtt_handler_failed", "topic", msg.Topic(), "err", err)
		}
	}
}
