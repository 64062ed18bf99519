package service

import "time"

// ModeParams is the body of a mode switch request.
type ModeParams struct {
	Mode string // "auto" | "manual"
}

// LogFilter selects security events by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "MOTION", "ACTIVATED", "RECOGNIZED", "TIMED_OUT", ...
}
