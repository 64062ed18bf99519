package sensors

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"motion_security/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

type fakePort struct {
	r io.Reader

	mu     sync.Mutex
	w      bytes.Buffer
	short  bool
	closed bool
}

func newFakePort(input string) *fakePort {
	return &fakePort{r: strings.NewReader(input)}
}

func (p *fakePort) Read(b []byte) (int, error) { return p.r.Read(b) }

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.short {
		return len(b) - 1, nil
	}
	return p.w.Write(b)
}

func (p *fakePort) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

func (p *fakePort) Written() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.w.String()
}

func TestBoard_ReadLevelBeforeAnyReading(t *testing.T) {
	b := NewBoard(newFakePort(""), nil)
	_, err := b.ReadLevel()
	assert.ErrorIs(t, err, ErrNoReading)
}

func TestBoard_MonitorParsesLines(t *testing.T) {
	port := newFakePort("L 812\nnoise\nL abc\nL 300\r\nM\n\nM\n")
	b := NewBoard(port, nil)

	var (
		mu    sync.Mutex
		edges int
	)
	b.OnMotion(func() {
		mu.Lock()
		edges++
		mu.Unlock()
	})

	require.NoError(t, b.Monitor(context.Background()))

	level, err := b.ReadLevel()
	require.NoError(t, err)
	assert.Equal(t, 300, level)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return edges == 2
	}, time.Second, 5*time.Millisecond)
}

func TestBoard_MonitorDoesNotBlockOnSlowCallback(t *testing.T) {
	port := newFakePort("M\nL 42\n")
	b := NewBoard(port, nil)

	release := make(chan struct{})
	defer close(release)
	b.OnMotion(func() { <-release })

	done := make(chan error, 1)
	go func() { done <- b.Monitor(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("monitor blocked on the motion callback")
	}
	level, err := b.ReadLevel()
	require.NoError(t, err)
	assert.Equal(t, 42, level)
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

func TestBoard_MonitorReturnsPortError(t *testing.T) {
	boom := errors.New("device unplugged")
	b := NewBoard(&fakePort{r: errReader{boom}}, nil)
	assert.ErrorIs(t, b.Monitor(context.Background()), boom)
}

func TestBoard_MonitorStopsOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	b := NewBoard(&fakePort{r: pr}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Monitor(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("monitor ignored cancellation")
	}
}

func TestLED_Commands(t *testing.T) {
	port := newFakePort("")
	b := NewBoard(port, nil)
	led := b.Indicator()

	require.NoError(t, led.On())
	require.NoError(t, led.Off())
	assert.Equal(t, "LED 1\nLED 0\n", port.Written())

	port.short = true
	assert.ErrorIs(t, led.On(), ErrWriteFailed)

	require.NoError(t, b.Close())
	assert.True(t, port.closed)
}

func TestSerialMode(t *testing.T) {
	m := serialMode(config.SensorsConfig{Baud: 9600})
	assert.Equal(t, 9600, m.BaudRate)
	assert.Equal(t, 8, m.DataBits)
	assert.Equal(t, serial.NoParity, m.Parity)
	assert.Equal(t, serial.OneStopBit, m.StopBits)

	assert.Equal(t, defaultBaud, serialMode(config.SensorsConfig{}).BaudRate)
}

func TestOpenPort_RequiresPath(t *testing.T) {
	_, err := OpenPort(config.SensorsConfig{})
	assert.ErrorIs(t, err, ErrNoPort)
}

func TestDisabled(t *testing.T) {
	var d Disabled
	_, err := d.ReadLevel()
	assert.ErrorIs(t, err, ErrNoPort)
	assert.NoError(t, d.On())
	assert.NoError(t, d.Off())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, d.Monitor(ctx), context.Canceled)
}
