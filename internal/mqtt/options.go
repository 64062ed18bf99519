package mqtt

import (
	"time"

	"motion_security/internal/config"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	defaultConnectTimeout    = 5 * time.Second
	defaultPublishTimeout    = 3 * time.Second
	defaultDisconnectQuiesce = 500 // milliseconds
	defaultKeepAlive         = 30 * time.Second
	maxReconnectInterval     = 30 * time.Second
	maxQoS                   = 2
	maxPayloadSize           = 256 << 10
)

// buildClientOptions maps the config onto paho options. Connect retry is off:
// callers reconnect on demand, paho only auto-reconnects established sessions.
func buildClientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(false)
	opts.SetMaxReconnectInterval(maxReconnectInterval)
	opts.SetConnectTimeout(connectTimeout(cfg))
	opts.SetKeepAlive(defaultKeepAlive)
	opts.SetOrderMatters(false)

	return opts
}

// configureLWT marks the service offline on the status topic if the
// connection drops without a clean disconnect.
func configureLWT(opts *pahomqtt.ClientOptions, topics Topics) {
	opts.SetWill(topics.SystemStatus(), statusOffline, 1, true)
}

func connectTimeout(cfg config.MQTTConfig) time.Duration {
	if cfg.ConnectTimeout > 0 {
		return cfg.ConnectTimeout
	}
	return defaultConnectTimeout
}
