// Package sensors talks to the microcontroller carrying the PIR motion
// sensor, the light sensor and the camera indicator LED.
//
// The board speaks a line protocol:
//
//	L <level>   ambient light reading (lower is darker)
//	M           motion rising edge
//
// and accepts "LED 1" / "LED 0".
package sensors

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"motion_security/internal/logger"
)

var (
	ErrNoReading   = errors.New("sensors: no light reading received yet")
	ErrWriteFailed = errors.New("sensors: short write to serial port")
)

type Board struct {
	port Port
	log  *logger.Logger

	level    atomic.Int64
	hasLevel atomic.Bool

	cbMu     sync.RWMutex
	onMotion func()

	commandMu sync.Mutex
}

func NewBoard(port Port, log *logger.Logger) *Board {
	return &Board{port: port, log: logger.OrNop(log)}
}

// ReadLevel returns the most recent light reading.
func (b *Board) ReadLevel() (int, error) {
	if !b.hasLevel.Load() {
		return 0, ErrNoReading
	}
	return int(b.level.Load()), nil
}

// OnMotion registers the motion callback. It runs on its own goroutine per
// edge so a long response never stalls the reader.
func (b *Board) OnMotion(fn func()) {
	b.cbMu.Lock()
	b.onMotion = fn
	b.cbMu.Unlock()
}

// Indicator returns the camera LED.
func (b *Board) Indicator() *LED { return &LED{board: b} }

// SendCommand writes one newline-terminated command.
func (b *Board) SendCommand(command string) error {
	b.commandMu.Lock()
	defer b.commandMu.Unlock()
	if !strings.HasSuffix(command, "\n") {
		command += "\n"
	}
	n, err := b.port.Write([]byte(command))
	if err != nil {
		return err
	}
	if n != len(command) {
		return ErrWriteFailed
	}
	return nil
}

// Monitor reads lines until ctx is done or the port fails. A closed port
// ends the loop with a nil error.
func (b *Board) Monitor(ctx context.Context) error {
	scan := bufio.NewScanner(b.port)

	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		for scan.Scan() {
			select {
			case lines <- scan.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scan.Err(); err != nil {
			scanErr <- err
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-scanErr:
			return err
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			b.handleLine(line)
		}
	}
}

func (b *Board) handleLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	fields := strings.Fields(line)
	switch fields[0] {
	case "L":
		if len(fields) != 2 {
			b.log.Debugw("sensor_line_malformed", "line", line)
			return
		}
		v, err := strconv.Atoi(fields[1])
		if err != nil {
			b.log.Debugw("sensor_line_malformed", "line", line, "err", err)
			return
		}
		b.level.Store(int64(v))
		b.hasLevel.Store(true)
	case "M":
		b.cbMu.RLock()
		fn := b.onMotion
		b.cbMu.RUnlock()
		if fn != nil {
			go fn()
		}
	default:
		b.log.Debugw("sensor_line_unknown", "line", line)
	}
}

func (b *Board) Close() error { return b.port.Close() }

// LED is the indicator lit while the camera is watching.
type LED struct {
	board *Board
}

func (l *LED) On() error { return l.set(true) }
func (l *LED) Off() error { return l.set(false) }

func (l *LED) set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := l.board.SendCommand(fmt.Sprintf("LED %d", v)); err != nil {
		return fmt.Errorf("indicator: %w", err)
	}
	return nil
}
