package service

import (
	"context"

	"motion_security/internal/models"
)

// LightSensor reports the ambient light level; lower is darker.
type LightSensor interface {
	ReadLevel() (int, error)
}

// Actuator is the security light. Each call is independent and may fail;
// implementations reconnect on demand.
type Actuator interface {
	Connect() error
	TurnOn() error
	TurnOff() error
	SetColor(r, g, b uint8) error
}

// Indicator signals that the camera is being watched.
type Indicator interface {
	On() error
	Off() error
}

// FrameStream is a lazy sequence of frames for one session.
type FrameStream interface {
	Next(ctx context.Context) (models.Frame, error)
	Close() error
}

// StreamSource opens a fresh frame stream per session.
type StreamSource interface {
	Open(ctx context.Context) (FrameStream, error)
}

// Recognizer locates faces in a frame and matches them against set.
type Recognizer interface {
	Recognize(ctx context.Context, frame models.Frame, set *models.FaceSet) ([]models.RecognitionResult, error)
}

// IdentitySource loads the full registered identity batch.
type IdentitySource interface {
	LoadRegistered(ctx context.Context) ([]models.RegisteredIdentity, error)
}

// Dashboard receives best-effort display updates.
type Dashboard interface {
	UpdateLight(power bool, color string)
	RecordRecognition(name string)
}

// SessionObserver is told about every finished session.
type SessionObserver interface {
	SessionFinished(ctx context.Context, s models.SessionSummary)
}

type nopIndicator struct{}

func (nopIndicator) On() error { return nil }
func (nopIndicator) Off() error { return nil }

type nopDashboard struct{}

func (nopDashboard) UpdateLight(bool, string) {}
func (nopDashboard) RecordRecognition(string) {}
