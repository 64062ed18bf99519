package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"motion_security/internal/models"
	"motion_security/internal/mqtt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

type fakeTransport struct {
	mu         sync.Mutex
	connectErr error
	pubs       []published
	subs       map[string]mqtt.MessageHandler
}

func (f *fakeTransport) EnsureConnected() error { return f.connectErr }

func (f *fakeTransport) Publish(topic string, payload []byte, qos byte, retained bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pubs = append(f.pubs, published{topic, payload, qos, retained})
	return nil
}

func (f *fakeTransport) Subscribe(topic string, _ byte, h mqtt.MessageHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs == nil {
		f.subs = map[string]mqtt.MessageHandler{}
	}
	f.subs[topic] = h
	return nil
}

func (f *fakeTransport) published() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.pubs...)
}

type fakeRepo struct {
	mu    sync.Mutex
	saved []models.DashboardState
	err   error
}

func (r *fakeRepo) Save(_ context.Context, s models.DashboardState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, s)
	return r.err
}

func (r *fakeRepo) Load(context.Context) (models.DashboardState, error) {
	return models.DashboardState{}, nil
}

func (r *fakeRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saved)
}

var topics = mqtt.Topics{Prefix: "test"}

func TestHub_FieldsLastWriteWins(t *testing.T) {
	h := NewHub(nil, topics, 1, nil, time.Second, nil)

	h.UpdateLight(true, "white")
	h.UpdateLight(true, "Blue_2024")
	h.SetMode("manual")

	s := h.Snapshot()
	assert.True(t, s.Power)
	assert.Equal(t, "blue", s.Color)
	assert.Equal(t, "manual", s.Mode)
	assert.Equal(t, 1, s.ID)

	h.UpdateLight(false, "none")
	s = h.Snapshot()
	assert.False(t, s.Power)
	assert.Equal(t, "none", s.Color)
	assert.Equal(t, "manual", s.Mode, "mode untouched by light update")
}

func TestHub_LatestText(t *testing.T) {
	h := NewHub(nil, topics, 1, nil, time.Second, nil)
	assert.Equal(t, "No user detected", h.LatestText())

	at := time.Date(2024, 1, 2, 13, 4, 5, 0, time.UTC)
	h.now = func() time.Time { return at }
	h.RecordRecognition("alice")

	assert.Equal(t, "Latest User: alice\nDetected at: 13:04:05", h.LatestText())
	assert.Equal(t, at, h.Snapshot().LatestSeenAt)
}

func TestHub_Restore(t *testing.T) {
	h := NewHub(nil, topics, 1, nil, time.Second, nil)
	seen := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	h.Restore(models.DashboardState{Power: true, Color: "red", Mode: "manual", LatestIdentity: "bob", LatestSeenAt: seen})

	s := h.Snapshot()
	assert.False(t, s.Power)
	assert.Equal(t, "none", s.Color)
	assert.Equal(t, "manual", s.Mode)
	assert.Equal(t, "bob", s.LatestIdentity)
	assert.Equal(t, seen, s.LatestSeenAt)
}

func TestHub_SyncPublishesRetainedAndPersists(t *testing.T) {
	tr := &fakeTransport{}
	repo := &fakeRepo{}
	h := NewHub(tr, topics, 1, repo, time.Second, nil)
	h.UpdateLight(true, "green")

	h.Sync(context.Background())

	pubs := tr.published()
	require.Len(t, pubs, 1)
	assert.Equal(t, "test/dashboard/state", pubs[0].topic)
	assert.True(t, pubs[0].retained)
	assert.Equal(t, byte(1), pubs[0].qos)

	var got map[string]any
	require.NoError(t, json.Unmarshal(pubs[0].payload, &got))
	assert.Equal(t, true, got["power"])
	assert.Equal(t, "green", got["color"])
	assert.Equal(t, "No user detected", got["latest_text"])

	require.Equal(t, 1, repo.count())
	assert.Equal(t, "green", repo.saved[0].Color)
}

func TestHub_SyncOfflineStillPersists(t *testing.T) {
	tr := &fakeTransport{connectErr: errors.New("down")}
	repo := &fakeRepo{}
	h := NewHub(tr, topics, 1, repo, time.Second, nil)

	h.Sync(context.Background())

	assert.Empty(t, tr.published())
	assert.Equal(t, 1, repo.count())
}

func TestHub_RunPushesOnChange(t *testing.T) {
	tr := &fakeTransport{}
	h := NewHub(tr, topics, 0, nil, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(tr.published()) >= 1 }, time.Second, 5*time.Millisecond)
	h.UpdateLight(true, "red")
	require.Eventually(t, func() bool {
		pubs := tr.published()
		var s models.DashboardState
		_ = json.Unmarshal(pubs[len(pubs)-1].payload, &s)
		return s.Color == "red"
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestHub_SubscribeModeCommands(t *testing.T) {
	tr := &fakeTransport{}
	h := NewHub(tr, topics, 1, nil, time.Second, nil)

	var got string
	require.NoError(t, h.SubscribeModeCommands(func(p string) { got = p }))

	handler := tr.subs["test/dashboard/mode/set"]
	require.NotNil(t, handler)
	require.NoError(t, handler("test/dashboard/mode/set", []byte(" 0\n")))
	assert.Equal(t, "0", got)
}

func TestHub_SubscribeWithoutTransport(t *testing.T) {
	h := NewHub(nil, topics, 1, nil, time.Second, nil)
	assert.NoError(t, h.SubscribeModeCommands(func(string) {}))
}
