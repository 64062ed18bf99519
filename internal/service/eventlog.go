package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"motion_security/internal/models"
	"motion_security/internal/repository"
)

// EventLogService is the read side of the security event log.
type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

var (
	ErrInvalidTimeRange = errors.New("invalid time range: from must be <= to")
	ErrUnknownEventType = errors.New("unknown event type")
)

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalize converts the bounds to UTC, canonicalizes the type and rejects
// inverted ranges and types the log never records.
func (f LogFilter) normalize() (LogFilter, error) {
	out := LogFilter{
		From: normalizeToUTC(f.From),
		To:   normalizeToUTC(f.To),
		Type: normalizeEventType(f.Type),
	}
	if !out.From.IsZero() && !out.To.IsZero() && out.From.After(out.To) {
		return LogFilter{}, ErrInvalidTimeRange
	}
	if out.Type != "" && !models.IsEventType(out.Type) {
		return LogFilter{}, fmt.Errorf("%w %q", ErrUnknownEventType, out.Type)
	}
	return out, nil
}

// List returns security events matching f, oldest first.
func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.SecurityEvent, error) {
	nf, err := f.normalize()
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, nf.From, nf.To, nf.Type)
}
