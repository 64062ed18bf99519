package service

import (
	"context"
	"errors"
	"time"

	"motion_security/internal/logger"
	"motion_security/internal/models"
)

type OutcomeKind int

const (
	OutcomeRecognized OutcomeKind = iota
	OutcomeTimedOut
	OutcomeCanceled
	OutcomeStreamError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeRecognized:
		return "recognized"
	case OutcomeTimedOut:
		return "timed_out"
	case OutcomeCanceled:
		return "canceled"
	case OutcomeStreamError:
		return "stream_error"
	default:
		return "unknown"
	}
}

// Outcome is the single result of one recognition window.
type Outcome struct {
	Kind     OutcomeKind
	Identity *models.RegisteredIdentity
	Distance float64
	Frames   int
	Err      error
}

// Color is the matched identity's preferred colour, or "" when nothing matched.
func (o Outcome) Color() string {
	if o.Identity == nil {
		return ""
	}
	return o.Identity.PreferredColor
}

const defaultFramePause = 100 * time.Millisecond

// RecognitionWindow pulls frames until a strong match, a timer expiry,
// cancellation or a stream failure.
type RecognitionWindow struct {
	recognizer Recognizer
	indicator  Indicator
	threshold  float64
	pause      time.Duration
	log        *logger.Logger
}

func NewRecognitionWindow(r Recognizer, ind Indicator, threshold float64, pause time.Duration, log *logger.Logger) *RecognitionWindow {
	if ind == nil {
		ind = nopIndicator{}
	}
	if pause <= 0 {
		pause = defaultFramePause
	}
	return &RecognitionWindow{
		recognizer: r,
		indicator:  ind,
		threshold:  threshold,
		pause:      pause,
		log:        logger.OrNop(log),
	}
}

// Run drives the window. The indicator is on for the whole run and switched
// off on every exit path.
func (w *RecognitionWindow) Run(ctx context.Context, stream FrameStream, set *models.FaceSet, faceTimer, actTimer *Timer) (out Outcome) {
	if err := w.indicator.On(); err != nil {
		w.log.Warnw("indicator_on_failed", "err", err)
	}
	defer func() {
		if err := w.indicator.Off(); err != nil {
			w.log.Warnw("indicator_off_failed", "err", err)
		}
	}()
	return w.watch(ctx, stream, set, faceTimer, actTimer)
}

// watch is Run without indicator handling.
func (w *RecognitionWindow) watch(ctx context.Context, stream FrameStream, set *models.FaceSet, faceTimer, actTimer *Timer) Outcome {
	frames := 0
	for {
		if ctx.Err() != nil {
			return Outcome{Kind: OutcomeCanceled, Frames: frames}
		}
		if faceTimer.HasExpired() || actTimer.HasExpired() {
			return Outcome{Kind: OutcomeTimedOut, Frames: frames}
		}

		frame, err := stream.Next(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return Outcome{Kind: OutcomeCanceled, Frames: frames}
			}
			return Outcome{Kind: OutcomeStreamError, Frames: frames, Err: err}
		}
		frames++

		results, err := w.recognizer.Recognize(ctx, frame, set)
		if err != nil {
			if ctx.Err() != nil {
				return Outcome{Kind: OutcomeCanceled, Frames: frames}
			}
			w.log.Warnw("recognize_frame_failed", "err", err, "seq", frame.Seq)
		}

		if best, ok := selectStrongest(results, w.threshold); ok {
			return Outcome{
				Kind:     OutcomeRecognized,
				Identity: best.Identity,
				Distance: best.Distance,
				Frames:   frames,
			}
		}

		select {
		case <-ctx.Done():
			return Outcome{Kind: OutcomeCanceled, Frames: frames}
		case <-time.After(w.pause):
		}
	}
}

// selectStrongest returns the lowest-distance result among those with an
// identity and distance strictly below threshold. Ties keep the first.
func selectStrongest(results []models.RecognitionResult, threshold float64) (models.RecognitionResult, bool) {
	var (
		best  models.RecognitionResult
		found bool
	)
	for _, r := range results {
		if r.Identity == nil || !(r.Distance < threshold) {
			continue
		}
		if !found || r.Distance < best.Distance {
			best = r
			found = true
		}
	}
	return best, found
}
