package service

import (
	"context"

	"motion_security/internal/config"
	"motion_security/internal/logger"
	"motion_security/internal/models"
	"motion_security/internal/repository"
)

type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Security exposes the commands an operator can issue.
type Security interface {
	TriggerMotion(ctx context.Context) error
	SetMode(ctx context.Context, p ModeParams) error
	CurrentMode() OperationMode
}

// Identities exposes the registered identity cache.
type Identities interface {
	List(ctx context.Context) []models.RegisteredIdentity
	Reload(ctx context.Context) (int, error)
}

// Monitoring exposes read-only state (light, mode, latest identity, session status).
type Monitoring interface {
	GetState(ctx context.Context) (models.SecurityState, error)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.SecurityEvent, error)
}

// Service aggregates all sub-services used by the HTTP layer.
type Service struct {
	Security
	Identities
	Monitoring
	EventLog
	Authorization
}

// Core carries the long-lived security objects built at startup.
type Core struct {
	Orchestrator *Orchestrator
	Cache        *RecognitionCache
	Live         StateSnapshotter
}

func NewService(repos *repository.Repository, core Core, auth config.AuthConfig, log *logger.Logger) *Service {
	return &Service{
		Security:      NewSecurityService(core.Orchestrator, repos.EventRepo, log),
		Identities:    NewIdentityService(core.Cache),
		Monitoring:    NewMonitoringService(repos.StateRepo, core.Live, core.Orchestrator),
		EventLog:      NewEventLogService(repos.EventRepo),
		Authorization: NewAuthService(repos.Auth, auth),
	}
}
