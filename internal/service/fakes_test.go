package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"motion_security/internal/models"
)

// callLog records collaborator calls in order across goroutines.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(format string, args ...any) {
	l.mu.Lock()
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

func (l *callLog) All() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.calls))
	copy(out, l.calls)
	return out
}

func (l *callLog) Count(call string) int {
	n := 0
	for _, c := range l.All() {
		if c == call {
			n++
		}
	}
	return n
}

type fakeActuator struct {
	log         *callLog
	connectErr  error
	turnOnErr   error
	turnOffErr  error
	setColorErr error
}

func (a *fakeActuator) Connect() error {
	a.log.add("Connect")
	return a.connectErr
}

func (a *fakeActuator) TurnOn() error {
	a.log.add("TurnOn")
	return a.turnOnErr
}

func (a *fakeActuator) TurnOff() error {
	a.log.add("TurnOff")
	return a.turnOffErr
}

func (a *fakeActuator) SetColor(r, g, b uint8) error {
	a.log.add("SetColor(%d,%d,%d)", r, g, b)
	return a.setColorErr
}

type fakeLight struct {
	log   *callLog
	level atomic.Int64
	err   error
}

func newFakeLight(log *callLog, level int) *fakeLight {
	l := &fakeLight{log: log}
	l.level.Store(int64(level))
	return l
}

func (l *fakeLight) ReadLevel() (int, error) {
	l.log.add("ReadLevel")
	return int(l.level.Load()), l.err
}

type fakeIndicator struct {
	on   atomic.Bool
	ons  atomic.Int32
	offs atomic.Int32
}

func (i *fakeIndicator) On() error {
	i.on.Store(true)
	i.ons.Add(1)
	return nil
}

func (i *fakeIndicator) Off() error {
	i.on.Store(false)
	i.offs.Add(1)
	return nil
}

type fakeDashboard struct {
	log *callLog
}

func (d *fakeDashboard) UpdateLight(power bool, color string) {
	d.log.add("Dashboard(%t,%s)", power, color)
}

func (d *fakeDashboard) RecordRecognition(name string) {
	d.log.add("Latest(%s)", name)
}

// fakeStream yields blank frames until limit (0 = endless), then io.EOF.
type fakeStream struct {
	limit  int
	pulled atomic.Int32
	closed atomic.Bool
	err    error
}

func (s *fakeStream) Next(ctx context.Context) (models.Frame, error) {
	if err := ctx.Err(); err != nil {
		return models.Frame{}, err
	}
	if s.err != nil {
		return models.Frame{}, s.err
	}
	n := s.pulled.Add(1)
	if s.limit > 0 && int(n) > s.limit {
		return models.Frame{}, io.EOF
	}
	return models.Frame{Seq: uint64(n), Timestamp: time.Now()}, nil
}

func (s *fakeStream) Close() error {
	s.closed.Store(true)
	return nil
}

type fakeSource struct {
	stream *fakeStream
	err    error
	opens  atomic.Int32
}

func (s *fakeSource) Open(ctx context.Context) (FrameStream, error) {
	s.opens.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.stream, nil
}

// fakeRecognizer returns results once a frame with Seq >= matchAt arrives.
type fakeRecognizer struct {
	matchAt uint64
	results []models.RecognitionResult
	calls   atomic.Int32
}

func (r *fakeRecognizer) Recognize(ctx context.Context, frame models.Frame, set *models.FaceSet) ([]models.RecognitionResult, error) {
	r.calls.Add(1)
	if r.matchAt == 0 || frame.Seq < r.matchAt {
		return nil, nil
	}
	return r.results, nil
}

// slowRecognizer ignores ctx and answers every frame after delay.
type slowRecognizer struct {
	delay   time.Duration
	results []models.RecognitionResult
}

func (r *slowRecognizer) Recognize(ctx context.Context, frame models.Frame, set *models.FaceSet) ([]models.RecognitionResult, error) {
	time.Sleep(r.delay)
	return r.results, nil
}

type recordingEvents struct {
	mu     sync.Mutex
	events []models.SecurityEvent
}

func (r *recordingEvents) Append(ctx context.Context, e models.SecurityEvent) error {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	return nil
}

func (r *recordingEvents) List(ctx context.Context, from, to time.Time, typ string) ([]models.SecurityEvent, error) {
	return nil, errors.New("not implemented")
}

func (r *recordingEvents) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingObserver struct {
	mu       sync.Mutex
	sessions []models.SessionSummary
}

func (o *recordingObserver) SessionFinished(ctx context.Context, s models.SessionSummary) {
	o.mu.Lock()
	o.sessions = append(o.sessions, s)
	o.mu.Unlock()
}

func (o *recordingObserver) All() []models.SessionSummary {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]models.SessionSummary(nil), o.sessions...)
}

func identity(name, color string) *models.RegisteredIdentity {
	return &models.RegisteredIdentity{Name: name, PreferredColor: color}
}
