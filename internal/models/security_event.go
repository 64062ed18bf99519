package models

import "time"

// Event types recorded in the security event log.
const (
	EventMotion        = "MOTION"
	EventDroppedManual = "DROPPED_MANUAL"
	EventDroppedBright = "DROPPED_BRIGHT"
	EventActivated     = "ACTIVATED"
	EventRecognized    = "RECOGNIZED"
	EventTimedOut      = "TIMED_OUT"
	EventStreamError   = "STREAM_ERROR"
	EventDeactivated   = "DEACTIVATED"
	EventActuatorError = "ACTUATOR_ERROR"
	EventModeChange    = "MODE_CHANGE"
)

// EventTypes lists every type the log can hold.
var EventTypes = []string{
	EventMotion, EventDroppedManual, EventDroppedBright, EventActivated, EventRecognized,
	EventTimedOut, EventStreamError, EventDeactivated, EventActuatorError, EventModeChange,
}

// IsEventType reports whether s is one of EventTypes (exact match).
func IsEventType(s string) bool {
	for _, t := range EventTypes {
		if t == s {
			return true
		}
	}
	return false
}

// SecurityEvent is a single log entry.
type SecurityEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}

// MotionEvent is produced once per detected motion edge. Ordinals start at 1
// and never repeat within a process lifetime.
type MotionEvent struct {
	Ordinal   uint64    `json:"ordinal"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionSummary describes a finished security session.
type SessionSummary struct {
	SessionID string    `json:"session_id"`
	Ordinal   uint64    `json:"ordinal"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Outcome   string    `json:"outcome"`
	Identity  string    `json:"identity,omitempty"`
	Color     string    `json:"color,omitempty"`
}
