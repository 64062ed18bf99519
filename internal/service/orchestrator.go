package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"motion_security/internal/config"
	"motion_security/internal/logger"
	"motion_security/internal/models"
	"motion_security/internal/repository"

	"github.com/google/uuid"
)

// Response tells what OnMotion did with one motion event.
type Response int

const (
	ResponseCompleted Response = iota
	ResponseDroppedManual
	ResponseDroppedBright
	ResponseAborted
	ResponseStopped
)

func (r Response) String() string {
	switch r {
	case ResponseCompleted:
		return "completed"
	case ResponseDroppedManual:
		return "dropped_manual"
	case ResponseDroppedBright:
		return "dropped_bright"
	case ResponseAborted:
		return "aborted"
	case ResponseStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

var ErrStopped = errors.New("orchestrator stopped")

const recordTimeout = 2 * time.Second

// Deps are the collaborators the orchestrator drives. Light, Actuator,
// Camera and Recognizer are required; the rest fall back to no-ops.
type Deps struct {
	Light      LightSensor
	Actuator   Actuator
	Indicator  Indicator
	Camera     StreamSource
	Recognizer Recognizer
	Cache      *RecognitionCache
	Mode       *ModeGate
	Counter    *EventCounter
	Dashboard  Dashboard
	Events     repository.EventRepo
	Observer   SessionObserver
	Clock      Clock
	Log        *logger.Logger
}

// SecuritySession tracks one motion response from activation to deactivation.
type SecuritySession struct {
	ID             string
	Ordinal        uint64
	StartedAt      time.Time
	FaceTimer      *Timer
	ActuationTimer *Timer

	mu         sync.Mutex
	closed     bool
	recognized bool
	identity   string
	color      string
}

// Recognized reports whether a strong match changed the light colour.
func (s *SecuritySession) Recognized() (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recognized, s.color
}

// apply runs fn unless the session has already been deactivated.
func (s *SecuritySession) apply(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	fn()
	return true
}

func (s *SecuritySession) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Orchestrator sequences the response to motion events. Responses are
// serialized: one session at a time, held from gate-pass to TurnOff.
type Orchestrator struct {
	cfg  config.SecurityConfig
	deps Deps
	log  *logger.Logger

	window *RecognitionWindow

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	active atomic.Bool

	// trigMu pairs the running check in Trigger with wg.Add so that no
	// Add happens once Stop has returned.
	trigMu sync.Mutex
	wg     sync.WaitGroup
}

func NewOrchestrator(cfg config.SecurityConfig, deps Deps) *Orchestrator {
	if deps.Indicator == nil {
		deps.Indicator = nopIndicator{}
	}
	if deps.Dashboard == nil {
		deps.Dashboard = nopDashboard{}
	}
	if deps.Mode == nil {
		deps.Mode = NewModeGate(ModeAuto)
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Counter == nil {
		deps.Counter = NewEventCounter(deps.Clock)
	}
	deps.Log = logger.OrNop(deps.Log)

	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		cfg:    cfg,
		deps:   deps,
		log:    deps.Log,
		window: NewRecognitionWindow(deps.Recognizer, deps.Indicator, cfg.FaceThreshold, cfg.FramePause, deps.Log),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Stop cancels the running session and makes every later OnMotion a no-op.
func (o *Orchestrator) Stop() {
	o.trigMu.Lock()
	o.cancel()
	o.trigMu.Unlock()
}

// Wait blocks until responses started through Trigger have returned.
// Call it after Stop.
func (o *Orchestrator) Wait() { o.wg.Wait() }

func (o *Orchestrator) Running() bool { return o.ctx.Err() == nil }

// Active reports whether a session currently holds the light.
func (o *Orchestrator) Active() bool { return o.active.Load() }

func (o *Orchestrator) MotionCount() uint64 { return o.deps.Counter.Count() }

func (o *Orchestrator) Mode() *ModeGate { return o.deps.Mode }

// Trigger runs OnMotion on its own goroutine.
func (o *Orchestrator) Trigger() error {
	o.trigMu.Lock()
	if !o.Running() {
		o.trigMu.Unlock()
		return ErrStopped
	}
	o.wg.Add(1)
	o.trigMu.Unlock()

	go func() {
		defer o.wg.Done()
		o.OnMotion()
	}()
	return nil
}

// OnMotion handles one motion edge and returns once the response is over.
// A call arriving while another session is active blocks until that
// session's light has been switched off.
func (o *Orchestrator) OnMotion() Response {
	if !o.Running() {
		return ResponseStopped
	}
	if o.deps.Mode.CurrentMode() == ModeManual {
		o.log.Infow("motion_dropped_manual")
		o.record(models.EventDroppedManual, "motion ignored in manual mode", nil)
		return ResponseDroppedManual
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.Running() {
		return ResponseStopped
	}
	// the mode may have flipped while this event was queued
	if o.deps.Mode.CurrentMode() == ModeManual {
		o.log.Infow("motion_dropped_manual", "queued", true)
		o.record(models.EventDroppedManual, "motion ignored in manual mode", nil)
		return ResponseDroppedManual
	}

	ev := o.deps.Counter.Next()
	o.log.Infow("motion_detected", "ordinal", ev.Ordinal)
	o.record(models.EventMotion, fmt.Sprintf("motion #%d", ev.Ordinal), map[string]any{"ordinal": ev.Ordinal})

	level, err := o.deps.Light.ReadLevel()
	if err != nil {
		o.log.Errorw("light_read_failed", "err", err, "ordinal", ev.Ordinal)
		return ResponseAborted
	}
	if level >= o.cfg.LightThreshold {
		o.log.Infow("motion_dropped_bright", "ordinal", ev.Ordinal, "level", level, "threshold", o.cfg.LightThreshold)
		o.record(models.EventDroppedBright, "bright environment, no action",
			map[string]any{"ordinal": ev.Ordinal, "level": level})
		return ResponseDroppedBright
	}

	if err := o.activate(ev, level); err != nil {
		o.log.Errorw("actuator_connect_failed", "err", err, "ordinal", ev.Ordinal)
		o.record(models.EventActuatorError, "actuator unreachable, response aborted",
			map[string]any{"ordinal": ev.Ordinal, "err": err.Error()})
		return ResponseAborted
	}

	s := o.newSession(ev)
	o.active.Store(true)
	defer o.active.Store(false)

	o.runSession(s)
	return ResponseCompleted
}

// activate connects to the light, switches it on and sets the default colour.
// Only a connect failure is fatal for the response.
func (o *Orchestrator) activate(ev models.MotionEvent, level int) error {
	if err := o.deps.Actuator.Connect(); err != nil {
		return err
	}
	if err := o.deps.Actuator.TurnOn(); err != nil {
		o.log.Warnw("actuator_turn_on_failed", "err", err, "ordinal", ev.Ordinal)
	}
	o.setColor(o.cfg.DefaultColor, ev.Ordinal)
	o.deps.Dashboard.UpdateLight(true, o.cfg.DefaultColor)

	o.log.Infow("security_response_activated", "ordinal", ev.Ordinal, "level", level)
	return nil
}

func (o *Orchestrator) newSession(ev models.MotionEvent) *SecuritySession {
	now := o.deps.Clock
	s := &SecuritySession{
		ID:             uuid.NewString(),
		Ordinal:        ev.Ordinal,
		FaceTimer:      NewTimerWithClock(o.cfg.FaceWindow, now),
		ActuationTimer: NewTimerWithClock(o.cfg.ActuationWindow, now),
	}
	s.FaceTimer.Start()
	s.ActuationTimer.Start()
	s.StartedAt = now().UTC()

	o.record(models.EventActivated, fmt.Sprintf("session %s started", s.ID), map[string]any{
		"ordinal":          s.Ordinal,
		"session_id":       s.ID,
		"face_window":      o.cfg.FaceWindow.String(),
		"actuation_window": o.cfg.ActuationWindow.String(),
	})
	return s
}

// runSession starts recognition, waits out the actuation window and then
// switches the light off.
func (o *Orchestrator) runSession(s *SecuritySession) {
	sessCtx, cancel := context.WithCancel(o.ctx)
	defer cancel()

	done := make(chan Outcome, 1)
	go func() {
		done <- o.recognize(sessCtx, s)
	}()

	o.waitActuation(s.ActuationTimer)

	cancel()
	s.close()
	if err := o.deps.Actuator.TurnOff(); err != nil {
		o.log.Errorw("actuator_turn_off_failed", "err", err, "ordinal", s.Ordinal)
	}
	o.deps.Dashboard.UpdateLight(false, models.ColorNone)

	out := <-done
	ended := o.deps.Clock().UTC()

	summary := models.SessionSummary{
		SessionID: s.ID,
		Ordinal:   s.Ordinal,
		StartedAt: s.StartedAt,
		EndedAt:   ended,
		Outcome:   out.Kind.String(),
	}
	s.mu.Lock()
	if s.recognized {
		summary.Identity = s.identity
		summary.Color = s.color
	}
	s.mu.Unlock()

	o.log.Infow("security_response_deactivated", "ordinal", s.Ordinal, "outcome", summary.Outcome,
		"identity", summary.Identity, "duration", ended.Sub(s.StartedAt))
	o.record(models.EventDeactivated, fmt.Sprintf("session %s ended", s.ID), summary)

	if o.deps.Observer != nil {
		ctx, c := context.WithTimeout(context.Background(), recordTimeout)
		o.deps.Observer.SessionFinished(ctx, summary)
		c()
	}
}

// waitActuation polls until the timer expires or the orchestrator stops.
func (o *Orchestrator) waitActuation(t *Timer) {
	poll := o.cfg.WaitPoll
	if poll <= 0 {
		poll = time.Second
	}
	if left := t.Remaining(); left < poll {
		poll = max(left, time.Millisecond)
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for !t.HasExpired() {
		select {
		case <-o.ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// recognize runs on its own goroutine and applies the outcome to the light.
// The indicator stays on from session start until recognition ends.
func (o *Orchestrator) recognize(ctx context.Context, s *SecuritySession) Outcome {
	if err := o.deps.Indicator.On(); err != nil {
		o.log.Warnw("indicator_on_failed", "err", err, "ordinal", s.Ordinal)
	}
	defer func() {
		if err := o.deps.Indicator.Off(); err != nil {
			o.log.Warnw("indicator_off_failed", "err", err, "ordinal", s.Ordinal)
		}
	}()

	if every := o.cfg.RefreshEvery; every > 0 && o.deps.Cache != nil && s.Ordinal%uint64(every) == 0 {
		_, _ = o.deps.Cache.Load(ctx)
	}

	var set *models.FaceSet
	if o.deps.Cache != nil {
		set = o.deps.Cache.Current()
	}

	stream, err := o.deps.Camera.Open(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return Outcome{Kind: OutcomeCanceled}
		}
		o.log.Errorw("camera_open_failed", "err", err, "ordinal", s.Ordinal)
		o.record(models.EventStreamError, "failed to open frame stream", map[string]any{"ordinal": s.Ordinal, "err": err.Error()})
		return Outcome{Kind: OutcomeStreamError, Err: err}
	}
	defer func() {
		if cerr := stream.Close(); cerr != nil {
			o.log.Warnw("camera_close_failed", "err", cerr)
		}
	}()

	o.log.Infow("face_recognition_started", "ordinal", s.Ordinal, "identities", set.Len(), "window", s.FaceTimer.Duration())
	out := o.window.watch(ctx, stream, set, s.FaceTimer, s.ActuationTimer)

	switch out.Kind {
	case OutcomeRecognized:
		name, color := out.Identity.Name, out.Color()
		applied := s.apply(func() {
			o.setColor(color, s.Ordinal)
			o.deps.Dashboard.UpdateLight(true, color)
			o.deps.Dashboard.RecordRecognition(name)
			s.recognized = true
			s.identity = name
			s.color = color
		})
		if !applied {
			o.log.Infow("face_recognized_after_deactivation", "ordinal", s.Ordinal, "identity", name)
			return Outcome{Kind: OutcomeCanceled, Frames: out.Frames}
		}
		o.log.Infow("face_recognized", "ordinal", s.Ordinal, "identity", name, "color", color, "distance", out.Distance)
		o.record(models.EventRecognized, "recognized "+name, map[string]any{
			"ordinal": s.Ordinal, "identity": name, "color": color, "distance": out.Distance,
		})

	case OutcomeTimedOut:
		applied := false
		if o.Running() && !s.ActuationTimer.HasExpired() {
			applied = s.apply(func() {
				o.setColor(models.ColorRed, s.Ordinal)
				o.deps.Dashboard.UpdateLight(true, models.ColorRed)
			})
		}
		o.log.Infow("face_not_recognized", "ordinal", s.Ordinal, "frames", out.Frames, "alert", applied)
		o.record(models.EventTimedOut, "no face recognized during the detection period",
			map[string]any{"ordinal": s.Ordinal, "frames": out.Frames, "alert": applied})

	case OutcomeStreamError:
		o.log.Errorw("frame_stream_failed", "err", out.Err, "ordinal", s.Ordinal, "frames", out.Frames)
		o.record(models.EventStreamError, "frame stream failed", map[string]any{"ordinal": s.Ordinal, "err": errString(out.Err)})

	case OutcomeCanceled:
		o.log.Debugw("face_recognition_canceled", "ordinal", s.Ordinal, "frames", out.Frames)
	}
	return out
}

func (o *Orchestrator) setColor(name string, ordinal uint64) {
	c := models.ColorRGB(name)
	if err := o.deps.Actuator.SetColor(c.R, c.G, c.B); err != nil {
		o.log.Warnw("actuator_set_color_failed", "err", err, "color", name, "ordinal", ordinal)
	}
}

func (o *Orchestrator) record(typ, desc string, meta any) {
	if o.deps.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := o.deps.Events.Append(ctx, models.SecurityEvent{
		OccurredAt:  o.deps.Clock().UTC(),
		Type:        typ,
		Description: desc,
		Metadata:    meta,
	}); err != nil {
		o.log.Warnw("event_append_failed", "err", err, "type", typ)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
