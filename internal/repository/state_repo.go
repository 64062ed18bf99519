package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"motion_security/internal/models"
)

type StateSQLite struct {
	db *sql.DB
}

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db}
}

const (
	dashboardStateRowID = 1

	upsertStateSQL = `
		INSERT INTO dashboard_state (id, power, color, mode, latest_identity, latest_seen_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			power=excluded.power,
			color=excluded.color,
			mode=excluded.mode,
			latest_identity=excluded.latest_identity,
			latest_seen_at=excluded.latest_seen_at,
			updated_at=excluded.updated_at
	`

	selectStateSQL = `
		SELECT id, power, color, mode, latest_identity, latest_seen_at, updated_at
		FROM dashboard_state WHERE id=?
	`
)

// nullableTime maps the zero time to NULL.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

// Save upserts the dashboard_state row (id always 1).
func (r *StateSQLite) Save(ctx context.Context, state models.DashboardState) error {
	ts := state.UpdatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	} else {
		ts = ts.UTC()
	}

	_, err := r.db.ExecContext(ctx, upsertStateSQL,
		dashboardStateRowID,
		state.Power,
		state.Color,
		state.Mode,
		state.LatestIdentity,
		nullableTime(state.LatestSeenAt),
		ts,
	)
	return err
}

// Load fetches the dashboard_state row. A zero value (ID == 0) means nothing
// has been persisted yet.
func (r *StateSQLite) Load(ctx context.Context) (models.DashboardState, error) {
	row := r.db.QueryRowContext(ctx, selectStateSQL, dashboardStateRowID)

	var (
		s      models.DashboardState
		seenAt sql.NullTime
	)
	if err := row.Scan(
		&s.ID,
		&s.Power,
		&s.Color,
		&s.Mode,
		&s.LatestIdentity,
		&seenAt,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DashboardState{}, nil
		}
		return models.DashboardState{}, err
	}
	if seenAt.Valid {
		s.LatestSeenAt = seenAt.Time.UTC()
	}
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}
