package repository

import (
	"context"
	"database/sql"
	"time"

	"motion_security/internal/models"
)

type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// StateRepo persists the single dashboard snapshot so the operating mode and
// last known light state survive a restart.
type StateRepo interface {
	Save(ctx context.Context, s models.DashboardState) error
	Load(ctx context.Context) (models.DashboardState, error)
}

// EventRepo is the append-only security event log.
type EventRepo interface {
	Append(ctx context.Context, e models.SecurityEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.SecurityEvent, error)
}

type Repository struct {
	StateRepo StateRepo
	EventRepo EventRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StateRepo: NewStateSQLite(db),
		EventRepo: NewEventSQLite(db),
		Auth:      NewUserRepository(db),
	}
}
