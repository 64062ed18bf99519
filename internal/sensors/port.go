package sensors

import (
	"errors"
	"fmt"
	"io"

	"motion_security/internal/config"

	"go.bug.st/serial"
)

const defaultBaud = 115200

var ErrNoPort = errors.New("sensors: no serial port configured")

// Port is the minimal serial port surface the board needs.
type Port interface {
	io.ReadWriter
	io.Closer
}

// serialMode is 8N1 at the configured baud rate.
func serialMode(cfg config.SensorsConfig) *serial.Mode {
	baud := cfg.Baud
	if baud <= 0 {
		baud = defaultBaud
	}
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// OpenPort opens the serial device named in cfg.
func OpenPort(cfg config.SensorsConfig) (Port, error) {
	if cfg.Port == "" {
		return nil, ErrNoPort
	}
	p, err := serial.Open(cfg.Port, serialMode(cfg))
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", cfg.Port, err)
	}
	return p, nil
}
