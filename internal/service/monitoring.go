package service

import (
	"context"
	"time"

	"motion_security/internal/models"
	"motion_security/internal/repository"
)

const dashboardStateRowID = 1

// StateSnapshotter returns the live dashboard view.
type StateSnapshotter interface {
	Snapshot() models.DashboardState
}

type MonitoringService struct {
	stateRepo repository.StateRepo
	live      StateSnapshotter
	orch      *Orchestrator
}

// NewMonitoringService reads from live when set, else from the persisted row.
func NewMonitoringService(stateRepo repository.StateRepo, live StateSnapshotter, orch *Orchestrator) *MonitoringService {
	return &MonitoringService{stateRepo: stateRepo, live: live, orch: orch}
}

// GetState returns the dashboard state plus orchestrator status.
// If nothing is known yet, returns a baseline "lights off" snapshot.
func (s *MonitoringService) GetState(ctx context.Context) (models.SecurityState, error) {
	var (
		ds  models.DashboardState
		err error
	)
	if s.live != nil {
		ds = s.live.Snapshot()
	} else if s.stateRepo != nil {
		ds, err = s.stateRepo.Load(ctx)
		if err != nil {
			return models.SecurityState{}, err
		}
	}
	if ds.ID == 0 {
		ds = s.baselineState()
	}
	ds.UpdatedAt = toUTC(ds.UpdatedAt)
	ds.LatestSeenAt = toUTC(ds.LatestSeenAt)

	st := models.SecurityState{DashboardState: ds}
	if s.orch != nil {
		st.Running = s.orch.Running()
		st.SessionActive = s.orch.Active()
		st.MotionCount = s.orch.MotionCount()
		st.Mode = s.orch.Mode().CurrentMode().String()
	}
	return st, nil
}

// baselineState returns the snapshot of a system that has not acted yet.
func (s *MonitoringService) baselineState() models.DashboardState {
	return models.DashboardState{
		ID:        dashboardStateRowID,
		Power:     false,
		Color:     models.ColorNone,
		Mode:      ModeAuto.String(),
		UpdatedAt: time.Now().UTC(),
	}
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
