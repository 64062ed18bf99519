package service

import (
	"sync/atomic"
	"time"

	"motion_security/internal/models"
)

// EventCounter numbers motion events. Ordinals start at 1.
type EventCounter struct {
	n   atomic.Uint64
	now Clock
}

func NewEventCounter(clock Clock) *EventCounter {
	if clock == nil {
		clock = time.Now
	}
	return &EventCounter{now: clock}
}

func (c *EventCounter) Next() models.MotionEvent {
	return models.MotionEvent{
		Ordinal:   c.n.Add(1),
		Timestamp: c.now().UTC(),
	}
}

func (c *EventCounter) Count() uint64 { return c.n.Load() }
