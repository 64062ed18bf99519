// Package bulb drives a smart bulb through an MQTT bridge.
package bulb

import (
	"encoding/json"
	"errors"
	"fmt"

	"motion_security/internal/logger"
)

var ErrNoTransport = errors.New("bulb: no mqtt transport configured")

// Publisher is the subset of the MQTT client the bulb needs.
type Publisher interface {
	EnsureConnected() error
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// command is the bridge payload: {"power":bool} or {"rgb":[r,g,b]}.
type command struct {
	Power *bool     `json:"power,omitempty"`
	RGB   *[3]uint8 `json:"rgb,omitempty"`
}

// Bulb implements the security light. Every call reconnects the transport
// when needed and is attempted once.
type Bulb struct {
	pub   Publisher
	topic string
	qos   byte
	log   *logger.Logger
}

func New(pub Publisher, topic string, qos byte, log *logger.Logger) *Bulb {
	return &Bulb{pub: pub, topic: topic, qos: qos, log: logger.OrNop(log)}
}

func (b *Bulb) Connect() error {
	if b.pub == nil {
		return ErrNoTransport
	}
	if err := b.pub.EnsureConnected(); err != nil {
		return fmt.Errorf("bulb connect: %w", err)
	}
	return nil
}

func (b *Bulb) TurnOn() error {
	on := true
	return b.send(command{Power: &on})
}

func (b *Bulb) TurnOff() error {
	off := false
	return b.send(command{Power: &off})
}

func (b *Bulb) SetColor(r, g, bl uint8) error {
	return b.send(command{RGB: &[3]uint8{r, g, bl}})
}

func (b *Bulb) send(cmd command) error {
	if err := b.Connect(); err != nil {
		return err
	}
	payload, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	if err := b.pub.Publish(b.topic, payload, b.qos, false); err != nil {
		return fmt.Errorf("bulb command: %w", err)
	}
	b.log.Debugw("bulb_command_sent", "topic", b.topic, "payload", string(payload))
	return nil
}
