package camera

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"motion_security/internal/config"
	"motion_security/internal/models"
	"motion_security/internal/service"
)

const maxSnapshotBytes = 8 << 20

// SnapshotSource polls a still-image endpoint (an IP camera or a capture
// sidecar) once per frame interval.
type SnapshotSource struct {
	url      string
	interval time.Duration
	client   *http.Client
}

func NewSnapshotSource(cfg config.CameraConfig) *SnapshotSource {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &SnapshotSource{
		url:      cfg.SnapshotURL,
		interval: cfg.FrameInterval,
		client:   &http.Client{Timeout: timeout},
	}
}

func (s *SnapshotSource) Open(ctx context.Context) (service.FrameStream, error) {
	if s.url == "" {
		return nil, ErrNoSource
	}
	return &snapshotStream{src: s}, nil
}

type snapshotStream struct {
	src  *SnapshotSource
	seq  uint64
	last time.Time
}

func (st *snapshotStream) Next(ctx context.Context) (models.Frame, error) {
	if err := pace(ctx, st.last, st.src.interval); err != nil {
		return models.Frame{}, err
	}
	st.last = time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, st.src.url, nil)
	if err != nil {
		return models.Frame{}, err
	}
	resp, err := st.src.client.Do(req)
	if err != nil {
		return models.Frame{}, fmt.Errorf("fetch snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Frame{}, fmt.Errorf("fetch snapshot: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSnapshotBytes))
	if err != nil {
		return models.Frame{}, fmt.Errorf("read snapshot: %w", err)
	}
	if len(data) == 0 {
		return models.Frame{}, fmt.Errorf("read snapshot: empty body")
	}

	st.seq++
	return describe(data, st.seq, st.last), nil
}

func (st *snapshotStream) Close() error {
	st.src.client.CloseIdleConnections()
	return nil
}
