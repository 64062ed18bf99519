// Package dashboard mirrors the light, mode and latest visitor to the remote
// dashboard over MQTT and persists the same snapshot to sqlite.
package dashboard

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"motion_security/internal/logger"
	"motion_security/internal/models"
	"motion_security/internal/mqtt"
	"motion_security/internal/repository"
)

const defaultSyncInterval = 2 * time.Second

// Transport is the part of the MQTT client the hub uses.
type Transport interface {
	EnsureConnected() error
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Hub keeps the dashboard snapshot. Fields are written independently and the
// last write wins. A nil transport or repo disables that side of the sync.
type Hub struct {
	tr       Transport
	topics   mqtt.Topics
	qos      byte
	repo     repository.StateRepo
	interval time.Duration
	log      *logger.Logger
	now      func() time.Time

	mu    sync.RWMutex
	state models.DashboardState

	kick chan struct{}
}

type statePayload struct {
	models.DashboardState
	LatestText string `json:"latest_text"`
}

func NewHub(tr Transport, topics mqtt.Topics, qos byte, repo repository.StateRepo, interval time.Duration, log *logger.Logger) *Hub {
	if interval <= 0 {
		interval = defaultSyncInterval
	}
	return &Hub{
		tr:       tr,
		topics:   topics,
		qos:      qos,
		repo:     repo,
		interval: interval,
		log:      logger.OrNop(log),
		now:      time.Now,
		state: models.DashboardState{
			ID:    1,
			Color: models.ColorNone,
			Mode:  "auto",
		},
		kick: make(chan struct{}, 1),
	}
}

// Restore seeds the snapshot from a persisted row. The light is always
// reported off after a restart.
func (h *Hub) Restore(s models.DashboardState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s.Mode != "" {
		h.state.Mode = s.Mode
	}
	h.state.LatestIdentity = s.LatestIdentity
	h.state.LatestSeenAt = s.LatestSeenAt
}

func (h *Hub) UpdateLight(power bool, color string) {
	color = models.BaseColorName(strings.ToLower(color))
	if color == "" {
		color = models.ColorNone
	}
	h.update(func(s *models.DashboardState) {
		s.Power = power
		s.Color = color
	})
}

func (h *Hub) RecordRecognition(name string) {
	at := h.now()
	h.update(func(s *models.DashboardState) {
		s.LatestIdentity = name
		s.LatestSeenAt = at
	})
}

func (h *Hub) SetMode(mode string) {
	h.update(func(s *models.DashboardState) { s.Mode = mode })
}

func (h *Hub) update(fn func(*models.DashboardState)) {
	h.mu.Lock()
	fn(&h.state)
	h.state.UpdatedAt = h.now().UTC()
	h.mu.Unlock()

	select {
	case h.kick <- struct{}{}:
	default:
	}
}

func (h *Hub) Snapshot() models.DashboardState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// LatestText is the visitor line shown on the dashboard.
func (h *Hub) LatestText() string {
	return latestText(h.Snapshot())
}

func latestText(s models.DashboardState) string {
	if s.LatestIdentity == "" || s.LatestSeenAt.IsZero() {
		return "No user detected"
	}
	return "Latest User: " + s.LatestIdentity + "\nDetected at: " + s.LatestSeenAt.Format("15:04:05")
}

// SubscribeModeCommands forwards payloads from the mode switch topic to fn.
func (h *Hub) SubscribeModeCommands(fn func(payload string)) error {
	if h.tr == nil {
		return nil
	}
	return h.tr.Subscribe(h.topics.DashboardModeSet(), h.qos, func(_ string, payload []byte) error {
		fn(strings.TrimSpace(string(payload)))
		return nil
	})
}

// Run pushes the snapshot on every change and every interval until ctx is
// canceled.
func (h *Hub) Run(ctx context.Context) {
	t := time.NewTicker(h.interval)
	defer t.Stop()

	h.Sync(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.kick:
			h.Sync(ctx)
		case <-t.C:
			h.Sync(ctx)
		}
	}
}

// Sync publishes and persists the current snapshot once. Failures are logged
// and retried on the next round.
func (h *Hub) Sync(ctx context.Context) {
	st := h.Snapshot()

	if h.repo != nil {
		if err := h.repo.Save(ctx, st); err != nil {
			h.log.Warnw("dashboard_persist_failed", "err", err)
		}
	}
	if h.tr == nil {
		return
	}
	if err := h.tr.EnsureConnected(); err != nil {
		h.log.Debugw("dashboard_offline", "err", err)
		return
	}
	payload, err := json.Marshal(statePayload{DashboardState: st, LatestText: latestText(st)})
	if err != nil {
		h.log.Errorw("dashboard_encode_failed", "err", err)
		return
	}
	if err := h.tr.Publish(h.topics.DashboardState(), payload, h.qos, true); err != nil {
		h.log.Warnw("dashboard_publish_failed", "err", err)
	}
}
