// Package camera produces frame streams for recognition sessions.
package camera

import (
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"time"

	"motion_security/internal/models"
)

var ErrNoSource = errors.New("camera: neither snapshot_url nor dir configured")

// describe fills the frame dimensions when the image header is readable.
func describe(data []byte, seq uint64, at time.Time) models.Frame {
	f := models.Frame{Data: data, Seq: seq, Timestamp: at.UTC()}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		f.Width, f.Height = cfg.Width, cfg.Height
	}
	return f
}

// pace sleeps until interval has passed since last, or ctx is done.
func pace(ctx context.Context, last time.Time, interval time.Duration) error {
	if last.IsZero() || interval <= 0 {
		return ctx.Err()
	}
	wait := interval - time.Since(last)
	if wait <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
