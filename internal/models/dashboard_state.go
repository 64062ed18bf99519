package models

import "time"

// DashboardState mirrors what the remote dashboard displays. Each field is
// written independently; the last write wins.
type DashboardState struct {
	ID             int       `json:"id"`
	Power          bool      `json:"power"`
	Color          string    `json:"color"`          // colour name, "none" when off
	Mode           string    `json:"mode"`           // auto | manual
	LatestIdentity string    `json:"latest_identity,omitempty"`
	LatestSeenAt   time.Time `json:"latest_seen_at,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SecurityState is the monitoring view: dashboard fields plus orchestrator status.
type SecurityState struct {
	DashboardState
	Running       bool   `json:"running"`
	SessionActive bool   `json:"session_active"`
	MotionCount   uint64 `json:"motion_count"`
}
