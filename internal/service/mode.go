package service

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
)

type OperationMode int32

const (
	ModeAuto OperationMode = iota
	ModeManual
)

var ErrInvalidMode = errors.New("invalid mode: must be auto or manual")

func (m OperationMode) String() string {
	if m == ModeManual {
		return "manual"
	}
	return "auto"
}

// ParseMode accepts exactly "auto" or "manual" (case-insensitive).
func ParseMode(s string) (OperationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto":
		return ModeAuto, nil
	case "manual":
		return ModeManual, nil
	default:
		return ModeAuto, ErrInvalidMode
	}
}

// ModeFromSignal maps a dashboard switch value to a mode. "1", "auto", "on"
// and "true" select Auto; anything else selects Manual.
func ModeFromSignal(s string) OperationMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "auto", "on", "true":
		return ModeAuto
	default:
		return ModeManual
	}
}

// ModeGate holds the auto/manual switch. Writes are last-write-wins.
type ModeGate struct {
	mode atomic.Int32

	// setMu orders a swap together with its notifications, so listeners
	// see changes in the order they were stored.
	setMu sync.Mutex

	mu        sync.Mutex
	listeners []func(prev, next OperationMode)
}

func NewModeGate(initial OperationMode) *ModeGate {
	g := &ModeGate{}
	g.mode.Store(int32(initial))
	return g
}

func (g *ModeGate) CurrentMode() OperationMode {
	return OperationMode(g.mode.Load())
}

// SetMode stores m and notifies listeners when the mode actually changed.
// Listeners must not call SetMode.
func (g *ModeGate) SetMode(m OperationMode) {
	g.setMu.Lock()
	defer g.setMu.Unlock()

	prev := OperationMode(g.mode.Swap(int32(m)))
	if prev == m {
		return
	}

	g.mu.Lock()
	ls := make([]func(prev, next OperationMode), len(g.listeners))
	copy(ls, g.listeners)
	g.mu.Unlock()

	for _, fn := range ls {
		fn(prev, m)
	}
}

// OnChange registers fn to run synchronously after every mode change.
func (g *ModeGate) OnChange(fn func(prev, next OperationMode)) {
	g.mu.Lock()
	g.listeners = append(g.listeners, fn)
	g.mu.Unlock()
}
