package sensors

import "context"

// Disabled stands in for the board when no serial port is configured.
// Light reads fail, so motion responses abort; the indicator is a no-op.
type Disabled struct{}

func (Disabled) ReadLevel() (int, error) { return 0, ErrNoPort }

func (Disabled) OnMotion(func()) {}

func (Disabled) Monitor(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (Disabled) On() error { return nil }

func (Disabled) Off() error { return nil }

func (Disabled) Close() error { return nil }
