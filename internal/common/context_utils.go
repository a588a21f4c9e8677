package common

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ContextErr returns ctx.Err(), logging operation once the context is done.
func ContextErr(ctx context.Context, logger zerolog.Logger, operation string) error {
	err := ctx.Err()
	if err != nil {
		logger.Debug().Err(err).Str("operation", operation).Msg("Context done, aborting")
	}
	return err
}

// WaitWithCancellation sleeps for duration unless ctx ends first, in which
// case ctx.Err() is returned.
func WaitWithCancellation(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
