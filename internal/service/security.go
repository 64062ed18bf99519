package service

import (
	"context"
	"fmt"
	"time"

	"motion_security/internal/logger"
	"motion_security/internal/models"
	"motion_security/internal/repository"
)

// SecurityService is the command side used by the HTTP API.
type SecurityService struct {
	orch      *Orchestrator
	eventRepo repository.EventRepo
	log       *logger.Logger
}

// NewSecurityService wires o and records a MODE_CHANGE event on every switch,
// whichever surface it came from.
func NewSecurityService(o *Orchestrator, eventRepo repository.EventRepo, log *logger.Logger) *SecurityService {
	s := &SecurityService{orch: o, eventRepo: eventRepo, log: logger.OrNop(log)}
	o.Mode().OnChange(s.modeChanged)
	return s
}

// TriggerMotion feeds a simulated motion edge; the response runs in the background.
func (s *SecurityService) TriggerMotion(ctx context.Context) error {
	return s.orch.Trigger()
}

// SetMode switches the gate. Only "auto" and "manual" are accepted.
func (s *SecurityService) SetMode(ctx context.Context, p ModeParams) error {
	m, err := ParseMode(p.Mode)
	if err != nil {
		return err
	}
	s.orch.Mode().SetMode(m)
	return nil
}

func (s *SecurityService) CurrentMode() OperationMode {
	return s.orch.Mode().CurrentMode()
}

func (s *SecurityService) modeChanged(prev, next OperationMode) {
	s.log.Infow("operation_mode_changed", "from", prev.String(), "to", next.String())
	if s.eventRepo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := s.eventRepo.Append(ctx, models.SecurityEvent{
		OccurredAt:  time.Now().UTC(),
		Type:        models.EventModeChange,
		Description: fmt.Sprintf("Mode changed to %s", next),
		Metadata:    map[string]any{"from": prev.String(), "to": next.String()},
	}); err != nil {
		s.log.Warnw("event_append_failed", "err", err, "type", models.EventModeChange)
	}
}
